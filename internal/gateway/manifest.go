package gateway

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// operationSpec はMCPマニフェストに掲載する操作1件の定義。
type operationSpec struct {
	// Name は操作名。監査ログのoperationと同じ値。
	Name string `json:"name"`
	// Method は操作のHTTPメソッド。
	Method string `json:"method"`
	// Route は操作のルートパターン。
	Route string `json:"route"`
	// Description は操作の説明。
	Description string `json:"description"`
	// Parameters はパラメータ名から受け渡し方法（path/query/body）へのマップ。
	Parameters map[string]string `json:"parameters"`
}

// manifest は/mcpが返す静的マニフェストのJSON構造。
type manifest struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	Description   string          `json:"description"`
	Modes         []string        `json:"modes"`
	SchemaVersion string          `json:"schemaVersion"`
	Operations    []operationSpec `json:"operations"`
}

// mcpManifest はMCP登録用のマニフェスト。提供する8操作をすべて列挙する。
var mcpManifest = manifest{
	Name:          "local-github-mcp",
	Version:       "0.1.0",
	Description:   "Copilot / VS Code向けにリポジトリ操作を提供するローカルGitHub MCP",
	Modes:         []string{"completion", "chat"},
	SchemaVersion: "1.0.0",
	Operations: []operationSpec{
		{
			Name:        "list_branches",
			Method:      http.MethodGet,
			Route:       "/repos/{owner}/{repo}/branches",
			Description: "ブランチ一覧を取得する",
			Parameters: map[string]string{
				"owner": "path",
				"repo":  "path",
			},
		},
		{
			Name:        "create_branch",
			Method:      http.MethodPost,
			Route:       "/repos/{owner}/{repo}/branches",
			Description: "base branchから新しいブランチを作成する",
			Parameters: map[string]string{
				"owner":       "path",
				"repo":        "path",
				"new_branch":  "body (required)",
				"base_branch": "body",
			},
		},
		{
			Name:        "list_pull_requests",
			Method:      http.MethodGet,
			Route:       "/repos/{owner}/{repo}/prs",
			Description: "プルリクエスト一覧を取得する",
			Parameters: map[string]string{
				"owner": "path",
				"repo":  "path",
				"state": "query",
			},
		},
		{
			Name:        "create_pull_request",
			Method:      http.MethodPost,
			Route:       "/repos/{owner}/{repo}/prs",
			Description: "プルリクエストを作成する",
			Parameters: map[string]string{
				"owner": "path",
				"repo":  "path",
				"title": "body (required)",
				"head":  "body (required)",
				"base":  "body (required)",
				"body":  "body",
				"draft": "body",
			},
		},
		{
			Name:        "get_pull_request",
			Method:      http.MethodGet,
			Route:       "/repos/{owner}/{repo}/prs/{pr_number}",
			Description: "プルリクエスト詳細を取得する",
			Parameters: map[string]string{
				"owner":     "path",
				"repo":      "path",
				"pr_number": "path",
			},
		},
		{
			Name:        "review_pull_request",
			Method:      http.MethodPost,
			Route:       "/repos/{owner}/{repo}/prs/{pr_number}/reviews",
			Description: "プルリクエストにレビューを投稿する",
			Parameters: map[string]string{
				"owner":     "path",
				"repo":      "path",
				"pr_number": "path",
				"body":      "body",
				"event":     "body (APPROVE/REQUEST_CHANGES/COMMENT)",
			},
		},
		{
			Name:        "merge_pull_request",
			Method:      http.MethodPost,
			Route:       "/repos/{owner}/{repo}/prs/{pr_number}/merge",
			Description: "プルリクエストをマージする",
			Parameters: map[string]string{
				"owner":          "path",
				"repo":           "path",
				"pr_number":      "path",
				"commit_title":   "body",
				"commit_message": "body",
				"merge_method":   "body (merge/squash/rebase)",
			},
		},
		{
			Name:        "get_contents",
			Method:      http.MethodGet,
			Route:       "/repos/{owner}/{repo}/contents/{path}",
			Description: "ファイル内容またはディレクトリ一覧を取得する",
			Parameters: map[string]string{
				"owner": "path",
				"repo":  "path",
				"path":  "path",
				"ref":   "query",
			},
		},
	},
}

// handleManifest はMCPマニフェストを返すハンドラを返す。
func (s *Server) handleManifest() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, mcpManifest)
	}
}
