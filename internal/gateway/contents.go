package gateway

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// handleGetContents はリポジトリのファイル内容取得を処理するハンドラを返す。
//
// 上流はファイルに対してはメタデータ＋base64エンコードされた内容を、
// ディレクトリに対してはエントリの配列を返す。どちらの形状も解釈せず
// そのまま中継する。refクエリパラメータでブランチやコミットを指定できる。
func (s *Server) handleGetContents() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "get_contents"

		// ワイルドカードパラメータは先頭スラッシュ付きで渡される
		filePath := strings.TrimPrefix(c.Param("path"), "/")
		if filePath == "" {
			s.writeError(c, op, http.StatusBadRequest, "pathを指定してください")
			return
		}

		var query url.Values
		if ref := c.Query("ref"); ref != "" {
			query = url.Values{"ref": []string{ref}}
		}

		path := fmt.Sprintf("repos/%s/%s/contents/%s", c.Param("owner"), c.Param("repo"), filePath)
		resp, err := s.callUpstream(c, http.MethodGet, path, query, nil)
		s.relayUpstream(c, op, resp, err)
	}
}
