package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/vaughan-dsouza/educatech-blog/internal/db"
)

func newSQLiteStore(t *testing.T) *SQL {
	t.Helper()
	conn, err := db.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	s, err := NewSQL(context.Background(), conn)
	if err != nil {
		t.Fatalf("NewSQL() error: %v", err)
	}
	return s
}

func newRedisStore(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := NewRedis(context.Background(), RedisOptions{Addr: mr.Addr(), IdleTTL: time.Hour})
	if err != nil {
		t.Fatalf("NewRedis() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, mr
}

func TestBackends(t *testing.T) {
	backends := map[string]func(t *testing.T) Storage{
		"memory": func(t *testing.T) Storage { return NewMemory() },
		"sqlite": func(t *testing.T) Storage { return newSQLiteStore(t) },
		"redis": func(t *testing.T) Storage {
			s, _ := newRedisStore(t)
			return s
		},
	}

	for name, newStore := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("missing key", func(t *testing.T) {
				s := newStore(t)
				v, ok, err := s.GetItem(context.Background(), "a", "token")
				if err != nil || ok || v != "" {
					t.Errorf("GetItem() = %q, %v, %v; want empty, false, nil", v, ok, err)
				}
			})

			t.Run("set get overwrite", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()
				if err := s.SetItem(ctx, "a", "token", "one"); err != nil {
					t.Fatalf("SetItem() error: %v", err)
				}
				if err := s.SetItem(ctx, "a", "token", "two"); err != nil {
					t.Fatalf("SetItem() error: %v", err)
				}
				v, ok, err := s.GetItem(ctx, "a", "token")
				if err != nil || !ok || v != "two" {
					t.Errorf("GetItem() = %q, %v, %v; want two, true, nil", v, ok, err)
				}
			})

			t.Run("remove", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()
				s.SetItem(ctx, "a", "token", "x")
				if err := s.RemoveItem(ctx, "a", "token"); err != nil {
					t.Fatalf("RemoveItem() error: %v", err)
				}
				if err := s.RemoveItem(ctx, "a", "token"); err != nil {
					t.Errorf("RemoveItem() on missing key error: %v", err)
				}
				if _, ok, _ := s.GetItem(ctx, "a", "token"); ok {
					t.Error("expected key to be removed")
				}
			})

			t.Run("namespaces are isolated", func(t *testing.T) {
				s := newStore(t)
				ctx := context.Background()
				s.SetItem(ctx, "a", "token", "ta")
				s.SetItem(ctx, "b", "token", "tb")
				s.SetItem(ctx, "b", "userData", "{}")

				if err := s.Clear(ctx, "b"); err != nil {
					t.Fatalf("Clear() error: %v", err)
				}
				if v, ok, _ := s.GetItem(ctx, "a", "token"); !ok || v != "ta" {
					t.Errorf("namespace a was affected: %q %v", v, ok)
				}
				if _, ok, _ := s.GetItem(ctx, "b", "userData"); ok {
					t.Error("expected namespace b to be cleared")
				}
			})
		})
	}
}

func TestLocal(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	l := NewLocal(mem, "visitor-1")

	l.Set(ctx, "token", "t")
	l.Set(ctx, "userData", "u")
	if err := l.Remove(ctx, "token", "userData"); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := l.Get(ctx, "token"); ok {
		t.Error("token still present")
	}
	if _, ok, _ := l.Get(ctx, "userData"); ok {
		t.Error("userData still present")
	}
	if l.Namespace() != "visitor-1" {
		t.Errorf("Namespace() = %q", l.Namespace())
	}
}

func TestSQLPurgeIdle(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	s.SetItem(ctx, "old", "token", "x")
	s.SetItem(ctx, "old", "userData", "y")
	s.DB.MustExec(`UPDATE local_storage SET updated_at = ? WHERE namespace = ?`,
		time.Now().Add(-48*time.Hour).Unix(), "old")
	s.SetItem(ctx, "fresh", "token", "z")

	n, err := s.PurgeIdle(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeIdle() error: %v", err)
	}
	if n != 2 {
		t.Errorf("PurgeIdle() removed %d rows, want 2", n)
	}
	if _, ok, _ := s.GetItem(ctx, "fresh", "token"); !ok {
		t.Error("fresh namespace was purged")
	}
}

func TestRedisIdleTTL(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	s.SetItem(ctx, "v", "token", "x")
	if ttl := mr.TTL("localstorage:v"); ttl != time.Hour {
		t.Errorf("TTL = %v, want 1h", ttl)
	}

	mr.FastForward(2 * time.Hour)
	if _, ok, _ := s.GetItem(ctx, "v", "token"); ok {
		t.Error("expected namespace to expire")
	}
}
