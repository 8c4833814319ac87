package complaintdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kavyashar.org/intake/internal/logging"
)

// FeedImport records the outcome of the most recent load of one feed table.
type FeedImport struct {
	Table       string    `json:"table"`
	State       string    `json:"state"`
	Rows        int       `json:"rows"`
	Dropped     int       `json:"dropped"`
	ContentHash string    `json:"contentHash,omitempty"`
	Error       string    `json:"error,omitempty"`
	Source      string    `json:"source,omitempty"`
	ImportedAt  time.Time `json:"importedAt"`
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (c *Client) UpsertFeedImport(ctx context.Context, imp FeedImport) error {
	return upsertFeedImport(ctx, c.DB, imp)
}

// RecordFeedImports upserts the outcome of one reload, all tables or none.
func (c *Client) RecordFeedImports(ctx context.Context, imports []FeedImport) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting feed import transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, c.logger, "record_feed_imports")

	for _, imp := range imports {
		if err := upsertFeedImport(ctx, tx, imp); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing feed imports: %w", err)
	}
	return nil
}

func upsertFeedImport(ctx context.Context, db execer, imp FeedImport) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO feed_imports (table_name, state, rows_loaded, rows_dropped, content_hash, error, source, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(table_name) DO UPDATE SET
			state = excluded.state,
			rows_loaded = excluded.rows_loaded,
			rows_dropped = excluded.rows_dropped,
			content_hash = excluded.content_hash,
			error = excluded.error,
			source = excluded.source,
			imported_at = excluded.imported_at`,
		imp.Table,
		imp.State,
		imp.Rows,
		imp.Dropped,
		toNullString(imp.ContentHash),
		toNullString(imp.Error),
		toNullString(imp.Source),
		imp.ImportedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("error recording import of %s: %w", imp.Table, err)
	}
	return nil
}

func (c *Client) ListFeedImports(ctx context.Context) ([]FeedImport, error) {
	rows, err := c.DB.QueryContext(ctx, `
		SELECT table_name, state, rows_loaded, rows_dropped, content_hash, error, source, imported_at
		FROM feed_imports ORDER BY table_name`)
	if err != nil {
		return nil, fmt.Errorf("error listing feed imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := []FeedImport{}
	for rows.Next() {
		var (
			imp                  FeedImport
			hash, errMsg, source sql.NullString
			at                   int64
		)
		if err := rows.Scan(&imp.Table, &imp.State, &imp.Rows, &imp.Dropped, &hash, &errMsg, &source, &at); err != nil {
			return nil, err
		}
		imp.ContentHash = hash.String
		imp.Error = errMsg.String
		imp.Source = source.String
		imp.ImportedAt = time.UnixMilli(at).UTC()
		out = append(out, imp)
	}
	return out, rows.Err()
}
