package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/vaughan-dsouza/educatech-blog/internal/session"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
	"github.com/vaughan-dsouza/educatech-blog/internal/utils"
)

const (
	VisitorCookie   = "visitor"
	visitorLifetime = 30 * 24 * time.Hour
)

// Visitor is one browser: its local storage namespace and the session
// restored from it.
type Visitor struct {
	ID      string
	Local   storage.Local
	Session *session.Manager
}

type Sessions struct {
	Store         storage.Storage
	Decoder       session.Decoder
	SecureCookies bool
}

// Middleware binds every request to a visitor. Browsers without a valid
// visitor cookie get a fresh id.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(VisitorCookie); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     VisitorCookie,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				Secure:   s.SecureCookies,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(visitorLifetime.Seconds()),
			})
		}

		local := storage.NewLocal(s.Store, id)
		mgr := session.NewManager(local, s.Decoder)
		if _, err := mgr.Restore(r.Context()); err != nil {
			log.Printf("session: restore %s: %v", id, err)
		}

		v := &Visitor{ID: id, Local: local, Session: mgr}
		ctx := context.WithValue(r.Context(), utils.CtxVisitorKey, v)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// VisitorFrom returns the request's visitor, or nil outside Sessions.
func VisitorFrom(ctx context.Context) *Visitor {
	v, _ := ctx.Value(utils.CtxVisitorKey).(*Visitor)
	return v
}

// RequireProfessor serves denied unless the visitor is a signed-in
// professor.
func RequireProfessor(denied http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			v := VisitorFrom(r.Context())
			if v == nil || !v.Session.IsProfessor() {
				denied.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
