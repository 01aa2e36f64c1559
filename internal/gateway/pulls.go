package gateway

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

// createPullRequestRequest はプルリクエスト作成リクエストのJSON構造。
type createPullRequestRequest struct {
	// Title はプルリクエストのタイトル。
	Title string `json:"title" binding:"required"`
	// Head はマージ元のブランチ名（"owner:branch" 形式も可）。
	Head string `json:"head" binding:"required"`
	// Base はマージ先のブランチ名。
	Base string `json:"base" binding:"required"`
	// Body はプルリクエストの説明文。
	Body string `json:"body"`
	// Draft はドラフトとして作成するかどうか。
	Draft bool `json:"draft"`
}

// reviewPullRequestRequest はレビュー投稿リクエストのJSON構造。
type reviewPullRequestRequest struct {
	// Body はレビューコメント本文。
	Body string `json:"body"`
	// Event はレビュー種別。省略時はCOMMENT。
	Event string `json:"event" binding:"omitempty,oneof=APPROVE REQUEST_CHANGES COMMENT"`
}

// mergePullRequestRequest はマージリクエストのJSON構造。
type mergePullRequestRequest struct {
	// CommitTitle はマージコミットのタイトル。
	CommitTitle string `json:"commit_title"`
	// CommitMessage はマージコミットのメッセージ。
	CommitMessage string `json:"commit_message"`
	// MergeMethod はマージ方法。省略時はmerge。
	MergeMethod string `json:"merge_method" binding:"omitempty,oneof=merge squash rebase"`
}

// prNumber はパスパラメータのPR番号を検証して返す。
func prNumber(c *gin.Context) (int, error) {
	n, err := strconv.Atoi(c.Param("pr_number"))
	if err != nil || n <= 0 {
		return 0, errors.New("pr_numberは正の整数で指定してください")
	}
	return n, nil
}

// handleListPullRequests はプルリクエスト一覧取得を処理するハンドラを返す。
// stateクエリパラメータ（open/closed/all、省略時open）を上流に引き継ぐ。
func (s *Server) handleListPullRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "list_pull_requests"
		path := fmt.Sprintf("repos/%s/%s/pulls", c.Param("owner"), c.Param("repo"))
		query := url.Values{"state": []string{c.DefaultQuery("state", "open")}}
		resp, err := s.callUpstream(c, http.MethodGet, path, query, nil)
		s.relayUpstream(c, op, resp, err)
	}
}

// handleCreatePullRequest はプルリクエスト作成を処理するハンドラを返す。
func (s *Server) handleCreatePullRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "create_pull_request"

		var req createPullRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			s.writeError(c, op, http.StatusBadRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}

		path := fmt.Sprintf("repos/%s/%s/pulls", c.Param("owner"), c.Param("repo"))
		body := map[string]any{
			"title": req.Title,
			"head":  req.Head,
			"base":  req.Base,
			"body":  req.Body,
			"draft": req.Draft,
		}
		resp, err := s.callUpstream(c, http.MethodPost, path, nil, body)
		s.relayUpstream(c, op, resp, err)
	}
}

// handleGetPullRequest はプルリクエスト詳細取得を処理するハンドラを返す。
func (s *Server) handleGetPullRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "get_pull_request"

		number, err := prNumber(c)
		if err != nil {
			s.writeError(c, op, http.StatusBadRequest, err.Error())
			return
		}

		path := fmt.Sprintf("repos/%s/%s/pulls/%d", c.Param("owner"), c.Param("repo"), number)
		resp, err := s.callUpstream(c, http.MethodGet, path, nil, nil)
		s.relayUpstream(c, op, resp, err)
	}
}

// handleReviewPullRequest はプルリクエストへのレビュー投稿を処理するハンドラを返す。
func (s *Server) handleReviewPullRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "review_pull_request"

		number, err := prNumber(c)
		if err != nil {
			s.writeError(c, op, http.StatusBadRequest, err.Error())
			return
		}

		// ボディ省略はデフォルト値（COMMENT）として扱う
		var req reviewPullRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(c, op, http.StatusBadRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}
		if req.Event == "" {
			req.Event = "COMMENT"
		}

		path := fmt.Sprintf("repos/%s/%s/pulls/%d/reviews", c.Param("owner"), c.Param("repo"), number)
		body := map[string]string{
			"body":  req.Body,
			"event": req.Event,
		}
		resp, err := s.callUpstream(c, http.MethodPost, path, nil, body)
		s.relayUpstream(c, op, resp, err)
	}
}

// handleMergePullRequest はプルリクエストのマージを処理するハンドラを返す。
func (s *Server) handleMergePullRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		const op = "merge_pull_request"

		number, err := prNumber(c)
		if err != nil {
			s.writeError(c, op, http.StatusBadRequest, err.Error())
			return
		}

		// ボディ省略はデフォルト値（merge）として扱う
		var req mergePullRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(c, op, http.StatusBadRequest, fmt.Sprintf("リクエストが不正です: %v", err))
			return
		}
		if req.MergeMethod == "" {
			req.MergeMethod = "merge"
		}

		body := map[string]any{"merge_method": req.MergeMethod}
		if req.CommitTitle != "" {
			body["commit_title"] = req.CommitTitle
		}
		if req.CommitMessage != "" {
			body["commit_message"] = req.CommitMessage
		}

		path := fmt.Sprintf("repos/%s/%s/pulls/%d/merge", c.Param("owner"), c.Param("repo"), number)
		resp, err := s.callUpstream(c, http.MethodPut, path, nil, body)
		s.relayUpstream(c, op, resp, err)
	}
}
