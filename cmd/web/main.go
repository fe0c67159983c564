package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/config"
	"github.com/vaughan-dsouza/educatech-blog/internal/db"
	"github.com/vaughan-dsouza/educatech-blog/internal/handlers"
	"github.com/vaughan-dsouza/educatech-blog/internal/middleware"
	"github.com/vaughan-dsouza/educatech-blog/internal/posts"
	"github.com/vaughan-dsouza/educatech-blog/internal/professors"
	"github.com/vaughan-dsouza/educatech-blog/internal/session"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

// Visitors that have not written to local storage for this long are purged.
const idleVisitor = 30 * 24 * time.Hour

func main() {
	configPath := flag.String("config", "", "path to a config file (yaml, toml or json)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer closeStore.Close()
	log.Printf("local storage: %s", cfg.SessionStore)

	api := backend.New(cfg.ServerURL, cfg.HTTPTimeout)
	h := handlers.NewHandler(
		api,
		posts.NewService(cfg.SearchMode == config.SearchRemote, cfg.PageSize),
		professors.NewDirectory(api, store),
	)

	sessions := &middleware.Sessions{
		Store:         store,
		Decoder:       session.Decoder{Secret: cfg.TokenSecret},
		SecureCookies: cfg.SecureCookies,
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h.Routes(sessions),
	}

	go func() {
		log.Printf("listening on %s (backend %s)", srv.Addr, api.BaseURL())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the local storage backend named by SESSION_STORE. The
// returned closer releases its connections.
func openStore(cfg *config.Config) (storage.Storage, io.Closer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.SessionStore {
	case config.StoreRedis:
		r, err := storage.NewRedis(ctx, storage.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			IdleTTL:  idleVisitor,
		})
		if err != nil {
			return nil, nil, err
		}
		return r, r, nil

	case config.StorePostgres, config.StoreSQLite:
		var (
			conn *sqlx.DB
			err  error
		)
		if cfg.SessionStore == config.StorePostgres {
			conn, err = db.ConnectPostgres(cfg.DatabaseURL, db.PoolOptions{
				MaxOpen:     cfg.DBMaxOpen,
				MaxIdle:     cfg.DBMaxIdle,
				MaxLifetime: time.Duration(cfg.DBMaxLifetime) * time.Second,
			})
		} else {
			conn, err = db.ConnectSQLite(cfg.SQLitePath)
		}
		if err != nil {
			return nil, nil, err
		}

		s, err := storage.NewSQL(ctx, conn)
		if err != nil {
			conn.Close()
			return nil, nil, err
		}

		purgeIdle(s)
		go func() {
			ticker := time.NewTicker(1 * time.Hour)
			for range ticker.C {
				purgeIdle(s)
			}
		}()
		return s, conn, nil
	}

	return storage.NewMemory(), nopCloser{}, nil
}

func purgeIdle(s *storage.SQL) {
	n, err := s.PurgeIdle(context.Background(), time.Now().Add(-idleVisitor))
	if err != nil {
		log.Printf("purging idle visitors: %v", err)
		return
	}
	if n > 0 {
		log.Printf("purged %d idle local storage entries", n)
	}
}
