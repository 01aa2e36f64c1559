package gateway

import (
	"encoding/json"
	"net/http"
	"testing"
)

// TestHandleListBranches はブランチ一覧取得ハンドラのテスト。
func TestHandleListBranches(t *testing.T) {
	t.Parallel()

	t.Run("上流のブランチ一覧をそのまま中継すること", func(t *testing.T) {
		t.Parallel()

		upstreamBody := `[{"name":"main","protected":true},{"name":"develop","protected":false}]`
		upstream := &fakeUpstream{results: []fakeResult{respond(http.StatusOK, upstreamBody)}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodGet, "/repos/octocat/hello/branches", testToken, "")

		if w.Code != http.StatusOK {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusOK)
		}
		if w.Body.String() != upstreamBody {
			t.Errorf("ボディ: got %q, 上流のボディがそのまま中継されていない", w.Body.String())
		}

		call := upstream.call(t, 0)
		if call.Method != http.MethodGet {
			t.Errorf("上流メソッド: got %q, want %q", call.Method, http.MethodGet)
		}
		if call.Path != "repos/octocat/hello/branches" {
			t.Errorf("上流パス: got %q, want %q", call.Path, "repos/octocat/hello/branches")
		}
		if call.Token != testToken {
			t.Errorf("上流トークン: got %q, want %q", call.Token, testToken)
		}
	})

	t.Run("上流の404はnot-foundとして返ること", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusNotFound, `{"message":"Not Found"}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodGet, "/repos/octocat/missing/branches", testToken, "")

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}

		message, status := parseErrorBody(t, w)
		if message != "Not Found" {
			t.Errorf("error: got %q, want %q", message, "Not Found")
		}
		if status != float64(http.StatusNotFound) {
			t.Errorf("status: got %v, want %d", status, http.StatusNotFound)
		}
	})
}

// TestHandleCreateBranch はブランチ作成ハンドラのテスト。
func TestHandleCreateBranch(t *testing.T) {
	t.Parallel()

	t.Run("base branchのSHA解決後にrefを作成すること", func(t *testing.T) {
		t.Parallel()

		createdBody := `{"ref":"refs/heads/feature-x","object":{"sha":"abc123"}}`
		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusOK, `{"ref":"refs/heads/main","object":{"sha":"abc123","type":"commit"}}`),
			respond(http.StatusCreated, createdBody),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"feature-x","base_branch":"develop"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusCreated)
		}
		if w.Body.String() != createdBody {
			t.Errorf("ボディ: got %q, 上流のボディがそのまま中継されていない", w.Body.String())
		}

		if upstream.callCount() != 2 {
			t.Fatalf("上流呼び出し件数: got %d, want 2", upstream.callCount())
		}

		// 1回目: base branchのref解決
		first := upstream.call(t, 0)
		if first.Method != http.MethodGet {
			t.Errorf("1回目のメソッド: got %q, want %q", first.Method, http.MethodGet)
		}
		if first.Path != "repos/octocat/hello/git/ref/heads/develop" {
			t.Errorf("1回目のパス: got %q, want %q", first.Path, "repos/octocat/hello/git/ref/heads/develop")
		}

		// 2回目: ref作成
		second := upstream.call(t, 1)
		if second.Method != http.MethodPost {
			t.Errorf("2回目のメソッド: got %q, want %q", second.Method, http.MethodPost)
		}
		if second.Path != "repos/octocat/hello/git/refs" {
			t.Errorf("2回目のパス: got %q, want %q", second.Path, "repos/octocat/hello/git/refs")
		}
		body, ok := second.Body.(map[string]string)
		if !ok {
			t.Fatalf("2回目のボディの型が不正: %T", second.Body)
		}
		if body["ref"] != "refs/heads/feature-x" {
			t.Errorf("ref: got %q, want %q", body["ref"], "refs/heads/feature-x")
		}
		if body["sha"] != "abc123" {
			t.Errorf("sha: got %q, want %q", body["sha"], "abc123")
		}
	})

	t.Run("base_branch省略時はデフォルトブランチを使用すること", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusOK, `{"object":{"sha":"def456"}}`),
			respond(http.StatusCreated, `{"ref":"refs/heads/feature-y"}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"feature-y"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusCreated)
		}
		if got := upstream.call(t, 0).Path; got != "repos/octocat/hello/git/ref/heads/main" {
			t.Errorf("1回目のパス: got %q, want %q", got, "repos/octocat/hello/git/ref/heads/main")
		}
	})

	t.Run("new_branchが無い場合は400で上流は呼ばれないこと", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken, `{}`)

		if w.Code != http.StatusBadRequest {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusBadRequest)
		}
		if upstream.callCount() != 0 {
			t.Errorf("上流呼び出し件数: got %d, want 0", upstream.callCount())
		}
	})

	t.Run("base branchが存在しない場合は404を返すこと", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusNotFound, `{"message":"Not Found"}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"feature-z","base_branch":"no-such-branch"}`)

		if w.Code != http.StatusNotFound {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusNotFound)
		}
		if upstream.callCount() != 1 {
			t.Errorf("上流呼び出し件数: got %d, want 1", upstream.callCount())
		}
	})

	t.Run("同名ブランチが既に存在する場合は409を返すこと", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusOK, `{"object":{"sha":"abc123"}}`),
			respond(http.StatusUnprocessableEntity, `{"message":"Reference already exists"}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"main"}`)

		if w.Code != http.StatusConflict {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusConflict)
		}

		message, _ := parseErrorBody(t, w)
		if message != "Reference already exists" {
			t.Errorf("error: got %q, want %q", message, "Reference already exists")
		}
	})

	t.Run("SHAを解決できない場合は500を返すこと", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusOK, `{"ref":"refs/heads/main"}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"feature-w"}`)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("ステータスコード: got %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if upstream.callCount() != 1 {
			t.Errorf("上流呼び出し件数: got %d, want 1", upstream.callCount())
		}
	})

	t.Run("作成されたブランチ名がリクエストと一致すること", func(t *testing.T) {
		t.Parallel()

		upstream := &fakeUpstream{results: []fakeResult{
			respond(http.StatusOK, `{"object":{"sha":"abc123"}}`),
			respond(http.StatusCreated, `{"ref":"refs/heads/release-1.0","object":{"sha":"abc123"}}`),
		}}
		s := newTestServer(t, upstream)

		w := doRequest(t, s, http.MethodPost, "/repos/octocat/hello/branches", testToken,
			`{"new_branch":"release-1.0"}`)

		if w.Code != http.StatusCreated {
			t.Fatalf("ステータスコード: got %d, want %d", w.Code, http.StatusCreated)
		}

		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスのパースに失敗: %v", err)
		}
		if body["ref"] != "refs/heads/release-1.0" {
			t.Errorf("ref: got %v, want %q", body["ref"], "refs/heads/release-1.0")
		}
	})
}
