package db

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConnectSQLiteMemory(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("ConnectSQLite() error: %v", err)
	}
	defer db.Close()

	if got := db.Rebind("SELECT ? + ?"); got != "SELECT ? + ?" {
		t.Errorf("Rebind() = %q, want question placeholders", got)
	}
}

func TestConnectSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.db")

	db, err := ConnectSQLite(path)
	if err != nil {
		t.Fatalf("ConnectSQLite() error: %v", err)
	}
	db.Close()

	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
}

func TestConnectPostgresBadDSN(t *testing.T) {
	if _, err := ConnectPostgres("postgres://user:pw@localhost:notaport/blog", PoolOptions{}); err == nil {
		t.Error("expected error for malformed DSN")
	}
}

func TestConnectPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := ConnectPostgres(dsn, PoolOptions{MaxOpen: 2, MaxIdle: 2, MaxLifetime: time.Minute})
	if err != nil {
		t.Fatalf("ConnectPostgres() error: %v", err)
	}
	defer db.Close()

	if got := db.Rebind("SELECT ?"); got != "SELECT $1" {
		t.Errorf("Rebind() = %q, want dollar placeholders", got)
	}
}
