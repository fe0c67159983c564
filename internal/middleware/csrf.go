package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/vaughan-dsouza/educatech-blog/internal/utils"
)

const (
	CSRFCookie    = "csrf"
	CSRFFieldName = "csrf_token"
	csrfLifetime  = 24 * time.Hour
)

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// CSRF makes sure every visitor holds a CSRF cookie and rejects unsafe
// requests whose form token does not match it (double-submit cookie).
func CSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(CSRFCookie); err == nil {
				token = c.Value
			}

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if err := r.ParseForm(); err != nil {
					http.Error(w, "Bad request", http.StatusBadRequest)
					return
				}
				form := r.PostFormValue(CSRFFieldName)
				if token == "" || form == "" || subtle.ConstantTimeCompare([]byte(token), []byte(form)) != 1 {
					http.Error(w, "Invalid CSRF token", http.StatusForbidden)
					return
				}
			}

			if token == "" {
				var err error
				if token, err = generateToken(); err != nil {
					http.Error(w, "Internal server error", http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookie,
					Value:    token,
					Path:     "/",
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
					MaxAge:   int(csrfLifetime.Seconds()),
				})
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), utils.CtxCSRFKey, token)))
		})
	}
}

// CSRFToken returns the token forms must echo back.
func CSRFToken(ctx context.Context) string {
	t, _ := ctx.Value(utils.CtxCSRFKey).(string)
	return t
}
