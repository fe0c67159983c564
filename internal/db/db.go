package db

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know.
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type PoolOptions struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

func (o PoolOptions) apply(db *sqlx.DB) {
	if o.MaxOpen > 0 {
		db.SetMaxOpenConns(o.MaxOpen)
	}
	if o.MaxIdle > 0 {
		db.SetMaxIdleConns(o.MaxIdle)
	}
	if o.MaxLifetime > 0 {
		db.SetConnMaxLifetime(o.MaxLifetime)
	}
}

// ConnectPostgres opens a pooled Postgres connection through pgx's stdlib
// adapter.
func ConnectPostgres(dsn string, pool PoolOptions) (*sqlx.DB, error) {
	// Parse DSN → pgx config struct
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("db: failed to parse DSN: %w", err)
	}

	// Fail fast on startup if PG is unreachable
	cfg.ConnectTimeout = 5 * time.Second

	sqlDB := stdlib.OpenDB(*cfg)
	db := sqlx.NewDb(sqlDB, "pgx")
	pool.apply(db)

	if err := check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: postgres: %w", err)
	}
	return db, nil
}

// ConnectSQLite opens a SQLite database file. ":memory:" is allowed; the
// pool is then pinned to a single connection so every query sees the same
// database.
func ConnectSQLite(path string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite %q: %w", path, err)
	}

	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := check(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: sqlite: %w", err)
	}
	return db, nil
}

func check(db *sqlx.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	var tmp int
	if err := db.QueryRow("SELECT 1").Scan(&tmp); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}
