// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// GitHubトークンの解決（Bearerヘッダーまたは環境変数由来のフォールバック）、
// リクエストID付与、パニックリカバリ、CORS設定など、
// gatewayサービスで共通して使用するミドルウェアを含む。
package middleware
