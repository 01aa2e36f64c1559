package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TestRequestID はリクエストID付与ミドルウェアを検証する。
func TestRequestID(t *testing.T) {
	t.Parallel()

	t.Run("ヘッダー未指定の場合にUUIDが生成されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		header := w.Header().Get("X-Request-ID")
		if header == "" {
			t.Fatal("X-Request-IDレスポンスヘッダーが空")
		}
		if _, err := uuid.Parse(header); err != nil {
			t.Errorf("X-Request-ID %q がUUIDではない: %v", header, err)
		}

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["request_id"] != header {
			t.Errorf("コンテキストのrequest_id = %q, ヘッダー = %q で不一致", body["request_id"], header)
		}
	})

	t.Run("クライアント指定のX-Request-IDが保持されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
		})

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Request-ID", "client-supplied-id")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if got := w.Header().Get("X-Request-ID"); got != "client-supplied-id" {
			t.Errorf("X-Request-ID = %q, want %q", got, "client-supplied-id")
		}
	})

	t.Run("リクエストごとに異なるIDが生成されること", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w1 := httptest.NewRecorder()
		router.ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/test", nil))
		w2 := httptest.NewRecorder()
		router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/test", nil))

		id1, id2 := w1.Header().Get("X-Request-ID"), w2.Header().Get("X-Request-ID")
		if id1 == "" || id2 == "" {
			t.Fatal("X-Request-IDが空")
		}
		if id1 == id2 {
			t.Errorf("リクエストIDが重複: %q", id1)
		}
	})

	t.Run("ミドルウェア未適用の場合GetRequestIDは空文字を返すこと", func(t *testing.T) {
		t.Parallel()

		router := gin.New()
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"request_id": GetRequestID(c)})
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("レスポンスボディのパースに失敗: %v", err)
		}
		if body["request_id"] != "" {
			t.Errorf("request_id = %q, want 空文字", body["request_id"])
		}
	})
}
