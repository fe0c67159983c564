package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/middleware"
	"github.com/vaughan-dsouza/educatech-blog/internal/posts"
	"github.com/vaughan-dsouza/educatech-blog/internal/professors"
	"github.com/vaughan-dsouza/educatech-blog/internal/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashKey = "flash"

type Handler struct {
	Backend    *backend.Client
	Posts      *posts.Service
	Professors *professors.Directory

	templates map[string]*template.Template
}

func NewHandler(api *backend.Client, svc *posts.Service, dir *professors.Directory) *Handler {
	return &Handler{
		Backend:    api,
		Posts:      svc,
		Professors: dir,
		templates:  loadTemplates(),
	}
}

func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)
	pages := []string{"posts.html", "detail.html", "form.html", "login.html", "restricted.html"}

	funcs := template.FuncMap{
		"linebreaks": utils.Linebreaks,
		"excerpt":    utils.Excerpt,
		"longDate":   utils.LongDate,
		"shortDate":  utils.ShortDate,
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFS(templateFS,
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}

// api returns a backend client authenticated as the request's visitor.
func (h *Handler) api(r *http.Request) *backend.Client {
	if v := middleware.VisitorFrom(r.Context()); v != nil {
		return h.Backend.WithTokens(v.Session)
	}
	return h.Backend
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	data["CSRFToken"] = middleware.CSRFToken(r.Context())

	if v := middleware.VisitorFrom(r.Context()); v != nil {
		data["User"] = v.Session.User()
		data["IsAuthenticated"] = v.Session.IsAuthenticated()
		data["IsProfessor"] = v.Session.IsProfessor()
		if _, ok := data["Flash"]; !ok {
			data["Flash"] = takeFlash(r.Context(), v)
		}
	}

	var buf bytes.Buffer
	if err := h.templates[page].ExecuteTemplate(&buf, "base", data); err != nil {
		log.Printf("render %s: %v", page, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Restricted is served to visitors who may not author posts.
func (h *Handler) Restricted(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusForbidden, "restricted.html", map[string]any{
		"Title": "Restricted access",
		"Next":  r.URL.Path,
	})
}

// unauthorized handles a 401 from the backend. The session is already
// cleared by then; send the visitor back to the start page.
func (h *Handler) unauthorized(w http.ResponseWriter, r *http.Request) {
	if v := middleware.VisitorFrom(r.Context()); v != nil {
		setFlash(r.Context(), v, "Your session has expired. Please sign in again.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func setFlash(ctx context.Context, v *middleware.Visitor, msg string) {
	if err := v.Local.Set(ctx, flashKey, msg); err != nil {
		log.Printf("flash: %v", err)
	}
}

func takeFlash(ctx context.Context, v *middleware.Visitor) string {
	msg, ok, err := v.Local.Get(ctx, flashKey)
	if err != nil || !ok {
		return ""
	}
	if err := v.Local.Remove(ctx, flashKey); err != nil {
		log.Printf("flash: %v", err)
	}
	return msg
}
