package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vaughan-dsouza/educatech-blog/internal/config"
	"github.com/vaughan-dsouza/educatech-blog/internal/db"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func newBackend(t *testing.T) (*httptest.Server, *[]map[string]any) {
	t.Helper()
	created := &[]map[string]any{}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /user/signin", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		json.NewDecoder(r.Body).Decode(&creds)
		if creds["senha"] != "123456" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"token": signedToken(t, jwt.MapClaims{
			"sub": "u1", "email": creds["email"], "isProfessor": true, "professorId": 9,
			"exp": time.Now().Add(time.Hour).Unix(),
		})})
	})
	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":1,"titulo":"Átomos","conteudo":"Modelo de Bohr","professor_id":9,"created_at":"2024-03-01T00:00:00Z"},
			{"id":2,"titulo":"Células","conteudo":"Mitocôndria","professor_id":5,"created_at":"2024-03-02T00:00:00Z"}
		]`))
	})
	mux.HandleFunc("GET /posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			w.Write([]byte(`{"id":1,"titulo":"Átomos","conteudo":"Modelo de Bohr","professor_id":9,"created_at":"2024-03-01T00:00:00Z"}`))
		case "2":
			w.Write([]byte(`{"id":2,"titulo":"Células","conteudo":"Mitocôndria","professor_id":5}`))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		*created = append(*created, body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":3}`))
	})
	mux.HandleFunc("GET /teacher/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":` + r.PathValue("id") + `,"name":"Prof ` + r.PathValue("id") + `"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, created
}

func newTestApp(t *testing.T, serverURL, input string) (*app, *bytes.Buffer) {
	t.Helper()

	conn, err := db.ConnectSQLite(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	store, err := storage.NewSQL(context.Background(), conn)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &config.Config{
		ServerURL:   serverURL,
		HTTPTimeout: time.Second,
		SearchMode:  config.SearchLocal,
		PageSize:    6,
	}
	out := &bytes.Buffer{}
	return newApp(cfg, store, strings.NewReader(input), out), out
}

func TestLoginPromptsAndPersists(t *testing.T) {
	srv, _ := newBackend(t)
	a, out := newTestApp(t, srv.URL, "curie@fiap.com\n123456\n")
	ctx := context.Background()

	if err := a.run(ctx, "login", nil); err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out.String(), "Signed in as curie@fiap.com (professor)") {
		t.Errorf("output = %q", out.String())
	}

	// A fresh run restores the session from storage.
	out.Reset()
	if err := a.run(ctx, "whoami", nil); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out.String(), "professor id: 9") {
		t.Errorf("whoami output = %q", out.String())
	}

	if err := a.run(ctx, "logout", nil); err != nil {
		t.Fatal(err)
	}
	if err := a.run(ctx, "whoami", nil); !errors.Is(err, errNotSignedIn) {
		t.Errorf("whoami after logout = %v", err)
	}
}

func TestLoginRejected(t *testing.T) {
	srv, _ := newBackend(t)
	a, _ := newTestApp(t, srv.URL, "")

	err := a.run(context.Background(), "login", []string{"-email", "a@b.c", "-password", "nope"})
	if err == nil || !strings.Contains(err.Error(), "invalid email or password") {
		t.Errorf("err = %v", err)
	}
	if a.session.IsAuthenticated() {
		t.Error("session must stay anonymous")
	}
}

func TestListAndShow(t *testing.T) {
	srv, _ := newBackend(t)
	a, out := newTestApp(t, srv.URL, "")
	ctx := context.Background()

	if err := a.run(ctx, "list", []string{"-sort", "title"}); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if strings.Index(got, "Átomos") > strings.Index(got, "Células") {
		t.Errorf("expected title order, got %q", got)
	}
	if !strings.Contains(got, "Prof 9") || !strings.Contains(got, "Page 1 of 1 (2 posts)") {
		t.Errorf("list output = %q", got)
	}

	out.Reset()
	if err := a.run(ctx, "list", []string{"-q", "BOHR"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Átomos") || strings.Contains(out.String(), "Células") {
		t.Errorf("search output = %q", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "list", []string{"-q", "quântica"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No posts match") {
		t.Errorf("empty search output = %q", out.String())
	}

	out.Reset()
	if err := a.run(ctx, "show", []string{"1"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "By Prof 9 · Published on 01 March 2024") {
		t.Errorf("show output = %q", out.String())
	}

	if err := a.run(ctx, "show", []string{"99"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("show missing = %v", err)
	}
	if err := a.run(ctx, "show", nil); !errors.Is(err, errUsage) {
		t.Errorf("show without id = %v", err)
	}
}

func TestCreateRequiresProfessor(t *testing.T) {
	srv, created := newBackend(t)
	a, out := newTestApp(t, srv.URL, "")
	ctx := context.Background()

	if err := a.run(ctx, "create", []string{"-title", "x", "-body", "y"}); !errors.Is(err, errNotSignedIn) {
		t.Fatalf("anonymous create = %v", err)
	}

	if err := a.run(ctx, "login", []string{"-email", "curie@fiap.com", "-password", "123456"}); err != nil {
		t.Fatal(err)
	}
	if err := a.run(ctx, "create", []string{"-title", "Radioatividade", "-body", "Polônio"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(*created) != 1 || (*created)[0]["professor_id"] != float64(9) {
		t.Errorf("created = %v", *created)
	}
	if !strings.Contains(out.String(), "id: 3") {
		t.Errorf("create output = %q", out.String())
	}
}

func TestEditForeignPost(t *testing.T) {
	srv, _ := newBackend(t)
	a, _ := newTestApp(t, srv.URL, "")
	ctx := context.Background()

	if err := a.run(ctx, "login", []string{"-email", "curie@fiap.com", "-password", "123456"}); err != nil {
		t.Fatal(err)
	}
	if err := a.run(ctx, "edit", []string{"2", "-title", "x"}); !errors.Is(err, errNotAuthor) {
		t.Errorf("edit foreign post = %v", err)
	}
	if err := a.run(ctx, "delete", []string{"2"}); !errors.Is(err, errNotAuthor) {
		t.Errorf("delete foreign post = %v", err)
	}
}

func TestUnknownCommand(t *testing.T) {
	srv, _ := newBackend(t)
	a, _ := newTestApp(t, srv.URL, "")
	if err := a.run(context.Background(), "publish", nil); !errors.Is(err, errUsage) {
		t.Errorf("err = %v", err)
	}
}
