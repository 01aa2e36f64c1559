// GitHub MCP Gatewayサービスのエントリポイント。
// ローカルのツール呼び出しクライアントからのリポジトリ操作リクエストを
// 上流GitHub APIに中継する。設定はすべて環境変数から読み込み、
// 明示的な設定値としてサーバーに注入する。
package main

import (
	"log"
	"os"

	"github.com/amitsingh7668/github-mcpserver/internal/gateway"
)

func main() {
	cfg := gateway.Config{
		Port:           getEnvOr("PORT", "8000"),
		Token:          os.Getenv("GITHUB_TOKEN"),
		UpstreamURL:    os.Getenv("GITHUB_API_URL"),
		DefaultBranch:  getEnvOr("GITHUB_DEFAULT_BRANCH", "main"),
		DBPath:         getEnvOr("GATEWAY_DB_PATH", "/data/gateway.db"),
		AllowedOrigins: []string{getEnvOr("ALLOWED_ORIGIN", "*")},
	}

	server, err := gateway.NewServer(cfg)
	if err != nil {
		log.Fatalf("Gatewayサーバーの初期化に失敗: %v", err)
	}

	log.Printf("GitHub MCP Gatewayを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("Gatewayサービスの起動に失敗: %v", err)
	}
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
