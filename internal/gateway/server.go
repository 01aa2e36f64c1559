package gateway

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	gatewaydb "github.com/amitsingh7668/github-mcpserver/internal/gateway/db"
	"github.com/amitsingh7668/github-mcpserver/pkg/ghapi"
	"github.com/amitsingh7668/github-mcpserver/pkg/middleware"
)

// Config はgatewayサービスの設定。
// 認証情報を含めすべて起動時に明示的に注入し、ハンドラ内では環境変数を参照しない。
type Config struct {
	// Port はサーバーのリッスンポート。
	Port string
	// Token はリクエストにAuthorizationヘッダーが無い場合に使用する
	// プロセス共通のGitHubトークン（GITHUB_TOKEN由来）。空でもよい。
	Token string
	// UpstreamURL は上流GitHub APIのベースURL。空の場合はapi.github.com。
	UpstreamURL string
	// DefaultBranch はブランチ作成時にbase_branch省略時に使用するブランチ名。
	DefaultBranch string
	// DBPath は監査ログ用SQLiteデータベースのパス。
	DBPath string
	// AllowedOrigins はCORSで許可するオリジン。"*"で全許可。
	AllowedOrigins []string
}

// Server はGitHub MCP GatewayサービスのHTTPサーバー。
// 固定ルートへのリクエストを上流GitHub APIへの呼び出しに変換する。
// リクエスト間で共有する可変状態を持たないため、並行リクエストは安全。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// cfg はサーバーの設定。
	cfg Config
	// queries は監査ログへのクエリ実行オブジェクト。
	queries *gatewaydb.Queries
	// db はSQLiteデータベース接続。
	db *sql.DB
	// upstream は上流GitHub APIへのクライアント。
	upstream ghapi.Caller
}

// NewServer は新しいGatewayサーバーを生成する。
func NewServer(cfg Config) (*Server, error) {
	if cfg.DefaultBranch == "" {
		cfg.DefaultBranch = "main"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "/data/gateway.db"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	sqlDB, err := sql.Open("sqlite", cfg.DBPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	upstream, err := ghapi.New(cfg.UpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("上流APIクライアントの生成に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	s := &Server{
		router:   router,
		cfg:      cfg,
		queries:  gatewaydb.New(sqlDB),
		db:       sqlDB,
		upstream: upstream,
	}
	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.cfg.Port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// ランディングページ（認証不要）
	s.router.GET("/", s.handleRoot())

	// MCPマニフェスト（認証不要）
	s.router.GET("/mcp", s.handleManifest())

	// ヘルスチェック（認証不要）
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// リポジトリ操作（要GitHubトークン）
	repos := s.router.Group("/repos/:owner/:repo")
	repos.Use(middleware.TokenAuth(s.cfg.Token))
	{
		// ブランチ
		repos.GET("/branches", s.handleListBranches())
		repos.POST("/branches", s.handleCreateBranch())

		// プルリクエスト
		repos.GET("/prs", s.handleListPullRequests())
		repos.POST("/prs", s.handleCreatePullRequest())
		repos.GET("/prs/:pr_number", s.handleGetPullRequest())
		repos.POST("/prs/:pr_number/reviews", s.handleReviewPullRequest())
		repos.POST("/prs/:pr_number/merge", s.handleMergePullRequest())

		// ファイル内容
		repos.GET("/contents/*path", s.handleGetContents())
	}

	// 操作監査ログ（要GitHubトークン）
	audit := s.router.Group("/audit")
	audit.Use(middleware.TokenAuth(s.cfg.Token))
	audit.GET("", s.handleListAudit())
}

// handleRoot はランディングページを返すハンドラを返す。
func (s *Server) handleRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":      "GitHub MCP Gateway",
			"mcp_manifest": "/mcp",
			"health":       "/health",
		})
	}
}

// errorResponse は正規化されたエラーレスポンスのJSON構造。
type errorResponse struct {
	// Error はエラーメッセージ。
	Error string `json:"error"`
	// Status はクライアントに返すHTTPステータスコード。
	Status int `json:"status"`
}

// callUpstream は現在のリクエストのトークンとコンテキストで上流APIを1回呼び出す。
func (s *Server) callUpstream(c *gin.Context, method, path string, query url.Values, body any) (*ghapi.Response, error) {
	return s.upstream.Do(c.Request.Context(), middleware.GetToken(c), method, path, query, body)
}

// relayUpstream は上流呼び出しの結果をクライアントに返す共通処理。
// 成功時は上流のボディをそのまま転送し、失敗時は正規化エラーを返す。
func (s *Server) relayUpstream(c *gin.Context, op string, resp *ghapi.Response, err error) {
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		log.Printf("上流API呼び出しエラー: operation=%s, error=%v", op, err)
		s.writeError(c, op, status, "上流APIとの通信に失敗しました")
		return
	}

	status := mapStatus(resp.StatusCode)
	if status >= 400 {
		s.writeError(c, op, status, upstreamErrorMessage(resp.Body, resp.StatusCode))
		return
	}

	s.recordAudit(c, op, status)
	c.Data(status, "application/json; charset=utf-8", resp.Body)
}

// writeError は正規化エラーレスポンスを返し、監査ログに記録する。
func (s *Server) writeError(c *gin.Context, op string, status int, message string) {
	s.recordAudit(c, op, status)
	c.JSON(status, errorResponse{Error: message, Status: status})
}

// mapStatus は上流のステータスコードをローカルのステータスコードに変換する。
// 405は上流がマージ不能・マージ済みPRに対して返すため409に寄せる。
func mapStatus(upstream int) int {
	switch upstream {
	case http.StatusUnauthorized, http.StatusForbidden:
		return http.StatusUnauthorized
	case http.StatusNotFound:
		return http.StatusNotFound
	case http.StatusMethodNotAllowed, http.StatusConflict, http.StatusUnprocessableEntity:
		return http.StatusConflict
	default:
		return upstream
	}
}

// upstreamErrorMessage は上流のエラーボディからメッセージを抽出する。
// GitHubのエラーボディは {"message": "..."} 形式。パースできない場合は
// ボディをそのまま、空の場合はステータスの定型文を返す。
func upstreamErrorMessage(body []byte, status int) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return http.StatusText(status)
}

// auditTimeLayout は監査ログの記録日時の形式。
// 固定幅にすることで文字列比較がそのまま時刻順になる。
const auditTimeLayout = "2006-01-02T15:04:05.000000000Z"

// recordAudit は中継した操作を監査ログに記録する。
// 記録の失敗は操作自体の結果に影響させず、ログ出力のみ行う。
func (s *Server) recordAudit(c *gin.Context, op string, status int) {
	err := s.queries.InsertAuditEntry(c.Request.Context(), gatewaydb.InsertAuditEntryParams{
		ID:        uuid.New().String(),
		RequestID: middleware.GetRequestID(c),
		Operation: op,
		Owner:     c.Param("owner"),
		Repo:      c.Param("repo"),
		Status:    int64(status),
		CreatedAt: time.Now().UTC().Format(auditTimeLayout),
	})
	if err != nil {
		log.Printf("監査レコードの記録に失敗: operation=%s, error=%v", op, err)
	}
}

// auditResponse は監査レコードのJSONレスポンス構造。
type auditResponse struct {
	// ID は監査レコードの一意識別子。
	ID string `json:"id"`
	// RequestID はリクエストに割り当てられたX-Request-ID。
	RequestID string `json:"request_id"`
	// Operation は操作名。
	Operation string `json:"operation"`
	// Owner は対象リポジトリのオーナー。
	Owner string `json:"owner"`
	// Repo は対象リポジトリ名。
	Repo string `json:"repo"`
	// Status はクライアントに返したHTTPステータスコード。
	Status int64 `json:"status"`
	// CreatedAt は記録日時。
	CreatedAt string `json:"created_at"`
}

// handleListAudit は監査ログの一覧取得を処理するハンドラを返す。
func (s *Server) handleListAudit() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := int64(50)
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || n <= 0 || n > 500 {
				c.JSON(http.StatusBadRequest, errorResponse{
					Error:  "limitは1〜500の整数で指定してください",
					Status: http.StatusBadRequest,
				})
				return
			}
			limit = n
		}

		entries, err := s.queries.ListAuditEntries(c.Request.Context(), limit)
		if err != nil {
			log.Printf("監査ログ取得エラー: %v", err)
			c.JSON(http.StatusInternalServerError, errorResponse{
				Error:  "監査ログの取得に失敗しました",
				Status: http.StatusInternalServerError,
			})
			return
		}

		responses := make([]auditResponse, 0, len(entries))
		for _, e := range entries {
			responses = append(responses, auditResponse{
				ID:        e.ID,
				RequestID: e.RequestID,
				Operation: e.Operation,
				Owner:     e.Owner,
				Repo:      e.Repo,
				Status:    e.Status,
				CreatedAt: e.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, responses)
	}
}
