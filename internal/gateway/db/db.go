// Package db はgatewayサービスの操作監査ログに対するクエリを提供する。
package db

import (
	"context"
	"database/sql"
)

// DBTX はクエリ実行に必要なデータベース操作のインターフェース。
// *sql.DB と *sql.Tx の両方が満たす。
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries は監査ログへのクエリ実行オブジェクト。
type Queries struct {
	db DBTX
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
