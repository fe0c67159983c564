package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/middleware"
	"github.com/vaughan-dsouza/educatech-blog/internal/models"
	"github.com/vaughan-dsouza/educatech-blog/internal/posts"
)

type postView struct {
	models.Post
	Author    string
	CanAuthor bool
}

type postForm struct {
	Title   string
	Summary string
	Body    string
}

func (f postForm) input() models.PostInput {
	return models.PostInput{Title: f.Title, Summary: f.Summary, Body: f.Body}
}

func readPostForm(r *http.Request) (postForm, map[string]string) {
	f := postForm{
		Title:   strings.TrimSpace(r.PostFormValue("titulo")),
		Summary: strings.TrimSpace(r.PostFormValue("resumo")),
		Body:    strings.TrimSpace(r.PostFormValue("conteudo")),
	}

	errs := map[string]string{}
	if f.Title == "" {
		errs["titulo"] = "Title is required."
	}
	if f.Body == "" {
		errs["conteudo"] = "Content is required."
	}
	return f, errs
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/posts", http.StatusFound)
}

// ---------------------- LIST ----------------------

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := posts.QueryFromValues(r.URL.Query(), 0)
	v := middleware.VisitorFrom(r.Context())

	page, err := h.Posts.Browse(r.Context(), h.api(r), q)
	if errors.Is(err, backend.ErrUnauthorized) {
		h.unauthorized(w, r)
		return
	}
	if err != nil {
		log.Printf("list posts: %v", err)
		h.render(w, r, http.StatusBadGateway, "posts.html", map[string]any{
			"Title": "Posts",
			"Query": q,
			"Error": "Could not load posts. Check your connection.",
		})
		return
	}

	names := h.Professors.Names(r.Context(), page.Items)
	views := make([]postView, len(page.Items))
	for i, p := range page.Items {
		views[i] = postView{
			Post:      p,
			Author:    names[p.ProfessorID],
			CanAuthor: v != nil && v.Session.CanAuthor(p),
		}
	}

	data := map[string]any{
		"Title": "Posts",
		"Query": q,
		"Page":  page,
		"Posts": views,
	}
	if page.HasPrev() {
		data["PrevURL"] = "/posts?" + q.WithPage(page.PrevPage()).Values().Encode()
	}
	if page.HasNext() {
		data["NextURL"] = "/posts?" + q.WithPage(page.NextPage()).Values().Encode()
	}

	h.render(w, r, http.StatusOK, "posts.html", data)
}

// ---------------------- GET ONE ----------------------

func (h *Handler) ShowPost(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.api(r).GetPost(r.Context(), id)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.unauthorized(w, r)
		return
	case errors.Is(err, backend.ErrNotFound) || (err == nil && post == nil):
		h.render(w, r, http.StatusNotFound, "detail.html", map[string]any{
			"Title": "Post not found",
			"Error": "Post not found.",
		})
		return
	case err != nil:
		log.Printf("get post %s: %v", id, err)
		h.render(w, r, http.StatusBadGateway, "detail.html", map[string]any{
			"Title": "Post",
			"Error": "Could not load the post. It may not exist or the connection failed.",
		})
		return
	}

	v := middleware.VisitorFrom(r.Context())
	h.render(w, r, http.StatusOK, "detail.html", map[string]any{
		"Title": post.Title,
		"Post": postView{
			Post:      *post,
			Author:    h.Professors.Name(r.Context(), post.ProfessorID),
			CanAuthor: v != nil && v.Session.CanAuthor(*post),
		},
	})
}

// ---------------------- CREATE ----------------------

func (h *Handler) NewPost(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "form.html", map[string]any{
		"Title":  "Create new post",
		"Action": "/posts/create",
		"Form":   postForm{},
	})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	form, errs := readPostForm(r)
	data := map[string]any{
		"Title":  "Create new post",
		"Action": "/posts/create",
		"Form":   form,
		"Errors": errs,
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "form.html", data)
		return
	}

	v := middleware.VisitorFrom(r.Context())
	user := v.Session.User()
	if user == nil || user.ProfessorID.IsZero() {
		data["Error"] = "Professor id not found. Please sign in again."
		h.render(w, r, http.StatusForbidden, "form.html", data)
		return
	}

	in := form.input()
	in.ProfessorID = user.ProfessorID

	_, err := h.api(r).CreatePost(r.Context(), in)
	if errors.Is(err, backend.ErrUnauthorized) {
		h.unauthorized(w, r)
		return
	}
	if err != nil {
		log.Printf("create post: %v", err)
		data["Error"] = "Failed to create the post: " + err.Error()
		h.render(w, r, http.StatusBadGateway, "form.html", data)
		return
	}

	setFlash(r.Context(), v, "Post created successfully!")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// ---------------------- UPDATE ----------------------

// ownedPost loads the post behind {id} and checks the visitor owns it.
// It writes the response itself and returns nil when the caller must stop.
func (h *Handler) ownedPost(w http.ResponseWriter, r *http.Request) *models.Post {
	id := chi.URLParam(r, "id")

	post, err := h.api(r).GetPost(r.Context(), id)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.unauthorized(w, r)
		return nil
	case errors.Is(err, backend.ErrNotFound) || (err == nil && post == nil):
		h.render(w, r, http.StatusNotFound, "detail.html", map[string]any{
			"Title": "Post not found",
			"Error": "Post not found.",
		})
		return nil
	case err != nil:
		log.Printf("get post %s: %v", id, err)
		h.render(w, r, http.StatusBadGateway, "form.html", map[string]any{
			"Title": "Edit post",
			"Error": "Could not load the post for editing.",
		})
		return nil
	}

	if v := middleware.VisitorFrom(r.Context()); v == nil || !v.Session.CanAuthor(*post) {
		h.Restricted(w, r)
		return nil
	}
	return post
}

func (h *Handler) EditPost(w http.ResponseWriter, r *http.Request) {
	post := h.ownedPost(w, r)
	if post == nil {
		return
	}

	h.render(w, r, http.StatusOK, "form.html", map[string]any{
		"Title":  "Edit post",
		"Action": "/posts/" + post.ID.String() + "/edit",
		"Edit":   true,
		"Form":   postForm{Title: post.Title, Summary: post.Summary, Body: post.Body},
	})
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	post := h.ownedPost(w, r)
	if post == nil {
		return
	}

	form, errs := readPostForm(r)
	data := map[string]any{
		"Title":  "Edit post",
		"Action": "/posts/" + post.ID.String() + "/edit",
		"Edit":   true,
		"Form":   form,
		"Errors": errs,
	}
	if len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "form.html", data)
		return
	}

	_, err := h.api(r).UpdatePost(r.Context(), post.ID.String(), form.input())
	if errors.Is(err, backend.ErrUnauthorized) {
		h.unauthorized(w, r)
		return
	}
	if err != nil {
		log.Printf("update post %s: %v", post.ID, err)
		data["Error"] = "Failed to update the post: " + err.Error()
		h.render(w, r, http.StatusBadGateway, "form.html", data)
		return
	}

	setFlash(r.Context(), middleware.VisitorFrom(r.Context()), "Post updated successfully!")
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}

// ---------------------- DELETE ----------------------

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	post := h.ownedPost(w, r)
	if post == nil {
		return
	}

	v := middleware.VisitorFrom(r.Context())
	err := h.api(r).DeletePost(r.Context(), post.ID.String())
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		h.unauthorized(w, r)
		return
	case err != nil:
		log.Printf("delete post %s: %v", post.ID, err)
		setFlash(r.Context(), v, "Failed to delete the post.")
	default:
		setFlash(r.Context(), v, "Post deleted.")
	}
	http.Redirect(w, r, "/posts", http.StatusSeeOther)
}
