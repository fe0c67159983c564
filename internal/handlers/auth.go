package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/middleware"
	"github.com/vaughan-dsouza/educatech-blog/internal/utils"
)

// -------------- LOGIN ------------------------

func (h *Handler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if v := middleware.VisitorFrom(r.Context()); v != nil && v.Session.IsAuthenticated() {
		http.Redirect(w, r, "/posts", http.StatusSeeOther)
		return
	}

	h.render(w, r, http.StatusOK, "login.html", map[string]any{
		"Title": "Sign in",
		"Email": "",
		"Next":  utils.SafeRedirect(r.URL.Query().Get("next"), "/posts"),
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	password := r.PostFormValue("senha")
	next := utils.SafeRedirect(r.PostFormValue("next"), "/posts")

	data := map[string]any{
		"Title": "Sign in",
		"Email": email,
		"Next":  next,
	}
	if email == "" || password == "" {
		data["Error"] = "Email and password are required."
		h.render(w, r, http.StatusBadRequest, "login.html", data)
		return
	}

	v := middleware.VisitorFrom(r.Context())
	if _, err := v.Session.Login(r.Context(), h.api(r), email, password); err != nil {
		status := http.StatusUnauthorized
		var apiErr *backend.APIError
		if !errors.As(err, &apiErr) {
			log.Printf("login: %v", err)
			status = http.StatusBadGateway
		}
		data["Error"] = "Invalid email or password."
		h.render(w, r, status, "login.html", data)
		return
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

// -------------- LOGOUT -----------------------

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if v := middleware.VisitorFrom(r.Context()); v != nil {
		if err := v.Session.Logout(r.Context()); err != nil {
			log.Printf("logout: %v", err)
		}
	}
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
