package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// contextKeyToken はGinコンテキストにGitHubトークンを格納するためのキー。
const contextKeyToken = "github_token"

// TokenAuth はGitHubトークンを解決するGinミドルウェアを返す。
//
// トークンの解決順序:
//  1. Authorizationヘッダーの "Bearer <token>" 形式
//  2. Authorizationヘッダーの値そのもの（Bearer接頭辞なしも許可する）
//  3. 起動時に注入されたフォールバックトークン（GITHUB_TOKEN由来）
//
// いずれも存在しない場合は401を返し、後続のハンドラ（上流API呼び出し）は
// 実行されない。トークンの検証は行わず、不透明な値として上流に転送する。
func TokenAuth(fallbackToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := resolveToken(c.GetHeader("Authorization"), fallbackToken)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":  "GitHubトークンがAuthorizationヘッダーまたはGITHUB_TOKENで指定されていません",
				"status": http.StatusUnauthorized,
			})
			return
		}

		c.Set(contextKeyToken, token)
		c.Next()
	}
}

// resolveToken はAuthorizationヘッダーとフォールバックトークンから
// 使用するトークンを決定する。見つからない場合は空文字を返す。
func resolveToken(authHeader, fallbackToken string) string {
	if authHeader != "" {
		if token, found := strings.CutPrefix(authHeader, "Bearer "); found {
			return strings.TrimSpace(token)
		}
		return authHeader
	}
	return fallbackToken
}

// GetToken はGinコンテキストからGitHubトークンを取得する。
// TokenAuthミドルウェアが事前に適用されている必要がある。
func GetToken(c *gin.Context) string {
	token, _ := c.Get(contextKeyToken)
	if t, ok := token.(string); ok {
		return t
	}
	return ""
}
