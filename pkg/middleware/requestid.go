package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// headerKeyRequestID はリクエストIDを伝播するためのHTTPヘッダーキー。
const headerKeyRequestID = "X-Request-ID"

// contextKeyRequestID はGinコンテキストにリクエストIDを格納するためのキー。
const contextKeyRequestID = "request_id"

// RequestID はリクエストごとに一意なIDを割り当てるGinミドルウェアを返す。
// クライアントがX-Request-IDヘッダーを指定した場合はその値を使用し、
// 未指定の場合はUUIDを生成する。IDはレスポンスヘッダーにも設定される。
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(headerKeyRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(contextKeyRequestID, requestID)
		c.Header(headerKeyRequestID, requestID)
		c.Next()
	}
}

// GetRequestID はGinコンテキストからリクエストIDを取得する。
// RequestIDミドルウェアが事前に適用されている必要がある。
func GetRequestID(c *gin.Context) string {
	requestID, _ := c.Get(contextKeyRequestID)
	if id, ok := requestID.(string); ok {
		return id
	}
	return ""
}
