package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/config"
	"github.com/vaughan-dsouza/educatech-blog/internal/db"
	"github.com/vaughan-dsouza/educatech-blog/internal/posts"
	"github.com/vaughan-dsouza/educatech-blog/internal/professors"
	"github.com/vaughan-dsouza/educatech-blog/internal/session"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

// Local storage namespace used by the terminal client.
const namespace = "cli"

const usage = `usage: blogctl [-config file] [-db file] <command> [flags]

commands:
  login      sign in and keep the token locally
  signup     create an account
  logout     forget the local session
  whoami     show the signed-in user (-check asks the backend)
  list       list posts (-q search, -sort newest|oldest|title|updated, -page n)
  show       show one post
  create     publish a post (professors only)
  edit       change a post you own
  delete     remove a post you own
  diagnose   check connectivity with the backend
`

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "educatech-cli.db"
	}
	return filepath.Join(home, ".educatech", "storage.db")
}

func main() {
	log.SetFlags(0)

	fs := flag.NewFlagSet("blogctl", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a config file")
	dbPath := fs.String("db", defaultDBPath(), "local storage file")
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if dir := filepath.Dir(*dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.Fatalf("storage: %v", err)
		}
	}
	conn, err := db.ConnectSQLite(*dbPath)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := storage.NewSQL(ctx, conn)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	a := newApp(cfg, store, os.Stdin, os.Stdout)
	if err := a.run(ctx, fs.Arg(0), fs.Args()[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		log.Printf("blogctl: %v", err)
		os.Exit(1)
	}
}

type app struct {
	api        *backend.Client
	session    *session.Manager
	posts      *posts.Service
	professors *professors.Directory

	in  *bufio.Reader
	out io.Writer
}

func newApp(cfg *config.Config, store storage.Storage, in io.Reader, out io.Writer) *app {
	mgr := session.NewManager(storage.NewLocal(store, namespace), session.Decoder{Secret: cfg.TokenSecret})
	api := backend.New(cfg.ServerURL, cfg.HTTPTimeout).WithTokens(mgr)

	return &app{
		api:        api,
		session:    mgr,
		posts:      posts.NewService(cfg.SearchMode == config.SearchRemote, cfg.PageSize),
		professors: professors.NewDirectory(api, store),
		in:         bufio.NewReader(in),
		out:        out,
	}
}
