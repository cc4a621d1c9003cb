package journal

import (
	"context"
	"fmt"
	"time"
)

// Entry is one journal row, as written.
type Entry struct {
	Seq       int64
	RunToken  string
	Kind      string // "commit" | "merge"
	Author    string
	Payload   string // canonical JSON diff
	CreatedAt time.Time
}

// Entries returns journal rows in append order. A limit of 0 returns all.
func (j *Journal) Entries(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT seq, run_token, kind, author, payload, created_at
		FROM entries
		ORDER BY id ASC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.Seq, &e.RunToken, &e.Kind, &e.Author, &e.Payload, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}
	return entries, nil
}

// RunEntries returns all rows for one run token in append order.
func (j *Journal) RunEntries(ctx context.Context, runToken string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, run_token, kind, author, payload, created_at
		FROM entries
		WHERE run_token = ?
		ORDER BY id ASC
	`, runToken)
	if err != nil {
		return nil, fmt.Errorf("read run entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.Seq, &e.RunToken, &e.Kind, &e.Author, &e.Payload, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read run entries: %w", err)
	}
	return entries, nil
}

// Count returns the number of journal rows.
func (j *Journal) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}
