package ghapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v68/github"
)

// Response は上流GitHub APIからの応答。
// Bodyは受信したバイト列そのものであり、デシリアライズは行わない。
type Response struct {
	// StatusCode は上流が返したHTTPステータスコード。
	StatusCode int
	// Body は上流が返したレスポンスボディ。
	Body []byte
}

// Caller は上流GitHub APIへの1回の呼び出しを表す狭いインターフェース。
// errorは呼び出し自体が完了しなかった場合（接続失敗・タイムアウト等）のみ
// 返し、上流の4xx/5xxはResponseとして返す。
type Caller interface {
	Do(ctx context.Context, token, method, path string, query url.Values, body any) (*Response, error)
}

// Client はGitHub REST APIを呼び出すCallerの実装。
// 認証・Acceptヘッダー・URL解決はgo-githubの規約に従う。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL は上流APIのベースURL。nilの場合はapi.github.comを使用する。
	baseURL *url.URL
}

// インターフェースの実装漏れをコンパイル時に検出する。
var _ Caller = (*Client)(nil)

// New は新しいGitHub APIクライアントを生成する。
// baseURLが空文字の場合はapi.github.comに接続する。テストでは
// httptest.ServerのURLを指定して上流をモックできる。
func New(baseURL string) (*Client, error) {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if baseURL != "" {
		// go-githubのBaseURLは末尾スラッシュ必須
		u, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("ベースURLの解析に失敗: %w", err)
		}
		c.baseURL = u
	}

	return c, nil
}

// Do は上流GitHub APIへのリクエストを1回発行する。
// pathは "repos/{owner}/{repo}/..." 形式の相対パス（先頭スラッシュは除去される）。
// bodyがnilでない場合はJSONとしてシリアライズして送信する。
func (c *Client) Do(ctx context.Context, token, method, path string, query url.Values, body any) (*Response, error) {
	gc := gh.NewClient(c.httpClient).WithAuthToken(token)
	if c.baseURL != nil {
		gc.BaseURL = c.baseURL
	}

	urlStr := strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		urlStr += "?" + query.Encode()
	}

	req, err := gc.NewRequest(method, urlStr, body)
	if err != nil {
		return nil, fmt.Errorf("上流リクエストの作成に失敗: %w", err)
	}

	resp, err := gc.Client().Do(req.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("上流APIへのリクエスト送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("上流レスポンスの読み取りに失敗: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       data,
	}, nil
}
