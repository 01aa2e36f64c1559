package db

import (
	"context"
	"fmt"
)

// AuditEntry は中継した操作1件の監査レコード。
// リポジトリの状態は保持せず、gatewayの活動記録のみを持つ。
type AuditEntry struct {
	// ID は監査レコードの一意識別子。
	ID string
	// RequestID はリクエストに割り当てられたX-Request-ID。
	RequestID string
	// Operation は操作名（例: "list_branches"）。
	Operation string
	// Owner は対象リポジトリのオーナー。
	Owner string
	// Repo は対象リポジトリ名。
	Repo string
	// Status はクライアントに返したHTTPステータスコード。
	Status int64
	// CreatedAt は記録日時（RFC3339形式のUTC）。
	CreatedAt string
}

// InsertAuditEntryParams は監査レコード挿入のパラメータ。
type InsertAuditEntryParams struct {
	ID        string
	RequestID string
	Operation string
	Owner     string
	Repo      string
	Status    int64
	CreatedAt string
}

const insertAuditEntry = `
INSERT INTO audit_entries (id, request_id, operation, owner, repo, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// InsertAuditEntry は監査レコードを1件挿入する。
func (q *Queries) InsertAuditEntry(ctx context.Context, arg InsertAuditEntryParams) error {
	_, err := q.db.ExecContext(ctx, insertAuditEntry,
		arg.ID, arg.RequestID, arg.Operation, arg.Owner, arg.Repo, arg.Status, arg.CreatedAt)
	if err != nil {
		return fmt.Errorf("監査レコードの挿入に失敗: %w", err)
	}
	return nil
}

const listAuditEntries = `
SELECT id, request_id, operation, owner, repo, status, created_at
FROM audit_entries
ORDER BY created_at DESC, id DESC
LIMIT ?
`

// ListAuditEntries は新しい順に最大limit件の監査レコードを取得する。
func (q *Queries) ListAuditEntries(ctx context.Context, limit int64) ([]AuditEntry, error) {
	rows, err := q.db.QueryContext(ctx, listAuditEntries, limit)
	if err != nil {
		return nil, fmt.Errorf("監査レコードの取得に失敗: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Operation, &e.Owner, &e.Repo, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("監査レコードの読み取りに失敗: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("監査レコードの走査に失敗: %w", err)
	}
	return entries, nil
}
