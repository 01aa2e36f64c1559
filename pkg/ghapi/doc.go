// Package ghapi はGitHub REST APIへの薄いクライアントを提供する。
//
// 1回の呼び出しにつき1回の上流APIリクエストを発行し、ステータスコードと
// 生のレスポンスボディをそのまま返す。レスポンスの解釈（ステータスコードの
// 変換やエラーボディの正規化）は呼び出し側の責務とする。
// gatewayサービスはCallerインターフェース経由で本パッケージを使用するため、
// テストではネットワークアクセスなしの偽実装に差し替えられる。
package ghapi
