// Package gateway はGitHub MCP Gatewayサービスの内部実装を提供する。
//
// 固定されたリポジトリ操作ルートへのJSONリクエストを、認証付きの
// 上流GitHub API呼び出しに変換して結果を中継する。gateway自体は
// リポジトリの状態を一切保持せず、各リクエストは独立したステートレスな
// 変換として処理される。
package gateway
