package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/vaughan-dsouza/educatech-blog/internal/middleware"
)

func (h *Handler) Routes(sessions *middleware.Sessions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))

	r.Get("/healthz", h.Healthz)

	r.Group(func(r chi.Router) {
		r.Use(sessions.Middleware)
		r.Use(middleware.CSRF(sessions.SecureCookies))

		// Public
		r.Get("/", h.Home)
		r.Get("/posts", h.ListPosts)
		r.Get("/user/signin", h.LoginForm)
		r.Post("/user/signin", h.Login)
		r.Post("/logout", h.Logout)

		// Professors only
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireProfessor(http.HandlerFunc(h.Restricted)))

			r.Get("/posts/create", h.NewPost)
			r.Post("/posts/create", h.CreatePost)
			r.Get("/posts/{id}/edit", h.EditPost)
			r.Post("/posts/{id}/edit", h.UpdatePost)
			r.Post("/posts/{id}/delete", h.DeletePost)
		})

		r.Get("/posts/{id}", h.ShowPost)
	})

	return r
}
