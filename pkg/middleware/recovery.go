package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にリクエストIDとともにログへ出力し、500エラーを返す。
// 1リクエストの失敗が他のリクエストに影響しないようにするための最後の砦。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s request_id=%s: %v",
					c.Request.Method, c.Request.URL.Path, GetRequestID(c), r)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":  "内部サーバーエラーが発生しました",
					"status": http.StatusInternalServerError,
				})
			}
		}()
		c.Next()
	}
}
