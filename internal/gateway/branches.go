package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// createBranchRequest はブランチ作成リクエストのJSON構造。
type createBranchRequest struct {
	// NewBranch は作成するブランチ名。
	NewBranch string `json:"new_branch" binding:"required"`
	// BaseBranch は分岐元のブランチ名。省略時は設定のデフォルトブランチ。
	BaseBranch string `json:"base_branch"`
}

// handleListBranches はブランチ一覧取得を処理するハンドラを返す。
func (s *Server) handleListBranches() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "list_branches"
		path := fmt.Sprintf("repos/%s/%s/branches", c.Param("owner"), c.Param("repo"))
		resp, err := s.callUpstream(c, http.MethodGet, path, nil, nil)
		s.relayUpstream(c, op, resp, err)
	}
}

// handleCreateBranch はブランチ作成を処理するハンドラを返す。
//
// 上流への呼び出しは2回必要となる:
//  1. base branchのrefからコミットSHAを解決する
//  2. そのSHAを指す新しいrefを作成する
//
// 1回目は読み取りのみのため、2回目が失敗しても巻き戻しは不要。
func (s *Server) handleCreateBranch() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "create_branch"

		var req createBranchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, op, http.StatusBadRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}

		base := req.BaseBranch
		if base == "" {
			base = s.cfg.DefaultBranch
		}

		owner, repo := c.Param("owner"), c.Param("repo")

		// 1) base branchのコミットSHAを解決する
		refPath := fmt.Sprintf("repos/%s/%s/git/ref/heads/%s", owner, repo, base)
		refResp, err := s.callUpstream(c, http.MethodGet, refPath, nil, nil)
		if err != nil || mapStatus(refResp.StatusCode) >= 400 {
			s.relayUpstream(c, op, refResp, err)
			return
		}

		var ref struct {
			Object struct {
				SHA string `json:"sha"`
			} `json:"object"`
		}
		if uerr := json.Unmarshal(refResp.Body, &ref); uerr != nil || ref.Object.SHA == "" {
			s.writeError(c, op, http.StatusInternalServerError, "base branchのSHAを解決できませんでした")
			return
		}

		// 2) 新しいrefを作成する
		newRef := map[string]string{
			"ref": "refs/heads/" + req.NewBranch,
			"sha": ref.Object.SHA,
		}
		refsPath := fmt.Sprintf("repos/%s/%s/git/refs", owner, repo)
		resp, err := s.callUpstream(c, http.MethodPost, refsPath, nil, newRef)
		s.relayUpstream(c, op, resp, err)
	}
}
