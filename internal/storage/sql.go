package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const schema = `
CREATE TABLE IF NOT EXISTS local_storage (
	namespace  TEXT NOT NULL,
	item_key   TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at BIGINT NOT NULL,
	PRIMARY KEY (namespace, item_key)
)`

// SQL keeps items in the local_storage table. Queries are written with '?'
// placeholders and rebound for the driver, so the same code runs on
// Postgres (pgx) and SQLite.
type SQL struct {
	DB *sqlx.DB
}

func NewSQL(ctx context.Context, db *sqlx.DB) (*SQL, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("storage: create schema: %w", err)
	}
	return &SQL{DB: db}, nil
}

func (s *SQL) GetItem(ctx context.Context, namespace, key string) (string, bool, error) {
	var value string
	err := s.DB.GetContext(ctx, &value, s.DB.Rebind(`
		SELECT value FROM local_storage
		WHERE namespace = ? AND item_key = ?`), namespace, key)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) SetItem(ctx context.Context, namespace, key, value string) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		INSERT INTO local_storage (namespace, item_key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (namespace, item_key) DO UPDATE
		SET value = excluded.value, updated_at = excluded.updated_at`),
		namespace, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("storage: set %q: %w", key, err)
	}
	return nil
}

func (s *SQL) RemoveItem(ctx context.Context, namespace, key string) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		DELETE FROM local_storage WHERE namespace = ? AND item_key = ?`), namespace, key)
	if err != nil {
		return fmt.Errorf("storage: remove %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Clear(ctx context.Context, namespace string) error {
	_, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		DELETE FROM local_storage WHERE namespace = ?`), namespace)
	if err != nil {
		return fmt.Errorf("storage: clear: %w", err)
	}
	return nil
}

// PurgeIdle removes namespaces untouched since before cutoff.
func (s *SQL) PurgeIdle(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, s.DB.Rebind(`
		DELETE FROM local_storage WHERE namespace IN (
			SELECT namespace FROM local_storage
			GROUP BY namespace
			HAVING MAX(updated_at) < ?
		)`), cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("storage: purge idle: %w", err)
	}
	return res.RowsAffected()
}
