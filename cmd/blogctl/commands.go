package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/models"
	"github.com/vaughan-dsouza/educatech-blog/internal/posts"
	"github.com/vaughan-dsouza/educatech-blog/internal/professors"
	"github.com/vaughan-dsouza/educatech-blog/internal/utils"
)

var (
	errUsage       = errors.New("usage")
	errNotSignedIn = errors.New("not signed in; run blogctl login")
	errNotAuthor   = errors.New("only the professor who wrote this post can change it")
)

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	if _, err := a.session.Restore(ctx); err != nil {
		return err
	}

	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "signup":
		return a.signup(ctx, args)
	case "logout":
		if err := a.session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Signed out.")
		return nil
	case "whoami":
		return a.whoami(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "show":
		return a.show(ctx, args)
	case "create":
		return a.create(ctx, args)
	case "edit":
		return a.edit(ctx, args)
	case "delete":
		return a.remove(ctx, args)
	case "diagnose":
		return a.diagnose(ctx, args)
	}
	return errUsage
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptIfEmpty asks for a value the user did not pass as a flag.
func (a *app) promptIfEmpty(v *string, label string) error {
	if *v != "" {
		return nil
	}
	s, err := a.prompt(label)
	if err != nil {
		return err
	}
	*v = s
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// ---------------- AUTH ----------------

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.promptIfEmpty(email, "Email: "); err != nil {
		return err
	}
	if err := a.promptIfEmpty(password, "Password: "); err != nil {
		return err
	}

	u, err := a.session.Login(ctx, a.api, *email, *password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return errors.New("invalid email or password")
		}
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s", u.Email)
	if u.IsProfessor {
		fmt.Fprint(a.out, " (professor)")
	}
	fmt.Fprintln(a.out)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := newFlagSet("signup")
	req := backend.SignUpRequest{}
	fs.StringVar(&req.Email, "email", "", "account email")
	fs.StringVar(&req.Password, "password", "", "account password")
	fs.StringVar(&req.ProfessorName, "name", "", "professor name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.promptIfEmpty(&req.Email, "Email: "); err != nil {
		return err
	}
	if err := a.promptIfEmpty(&req.Password, "Password: "); err != nil {
		return err
	}

	if err := a.api.SignUp(ctx, req); err != nil {
		return fmt.Errorf("sign up: %w", err)
	}
	fmt.Fprintln(a.out, "Account created. Run blogctl login to sign in.")
	return nil
}

func (a *app) whoami(ctx context.Context, args []string) error {
	fs := newFlagSet("whoami")
	check := fs.Bool("check", false, "validate the token with the backend")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !a.session.IsAuthenticated() {
		return errNotSignedIn
	}
	u := a.session.User()
	if *check {
		var err error
		if u, err = a.session.Validate(ctx, a.api); err != nil {
			return fmt.Errorf("session rejected by backend: %w", err)
		}
	}

	fmt.Fprintf(a.out, "email:     %s\n", u.Email)
	if u.ProfessorName != "" {
		fmt.Fprintf(a.out, "name:      %s\n", u.ProfessorName)
	}
	fmt.Fprintf(a.out, "professor: %t\n", u.IsProfessor)
	if !u.ProfessorID.IsZero() {
		fmt.Fprintf(a.out, "professor id: %s\n", u.ProfessorID)
	}
	return nil
}

// ---------------- POSTS ----------------

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	search := fs.String("q", "", "search terms")
	sortBy := fs.String("sort", string(posts.SortNewest), "newest, oldest, title or updated")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}

	q := posts.Query{
		Search: strings.TrimSpace(*search),
		Sort:   posts.ParseSort(*sortBy),
		Page:   *page,
	}
	p, err := a.posts.Browse(ctx, a.api, q)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return fmt.Errorf("session expired, sign in again: %w", err)
		}
		return err
	}

	if len(p.Items) == 0 {
		if q.Search != "" {
			fmt.Fprintf(a.out, "No posts match %q.\n", q.Search)
		} else {
			fmt.Fprintln(a.out, "No posts yet.")
		}
		return nil
	}

	names := a.professors.Names(ctx, p.Items)
	for _, post := range p.Items {
		author := names[post.ProfessorID]
		if author == "" {
			author = professors.Fallback(post.ProfessorID)
		}
		fmt.Fprintf(a.out, "[%s] %s\n", post.ID, post.Title)
		fmt.Fprintf(a.out, "    %s · %s\n", author, utils.ShortDate(post.CreatedAt))
		if ex := utils.Excerpt(post.Body, 120); ex != "" {
			fmt.Fprintf(a.out, "    %s\n", ex)
		}
	}
	fmt.Fprintf(a.out, "Page %d of %d (%d posts)\n", p.Page, p.TotalPages, p.TotalItems)
	return nil
}

func (a *app) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}

	post, err := a.api.GetPost(ctx, args[0])
	if errors.Is(err, backend.ErrNotFound) || (err == nil && post == nil) {
		return fmt.Errorf("post %s not found", args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, post.Title)
	if post.Summary != "" {
		fmt.Fprintln(a.out, post.Summary)
	}
	fmt.Fprintf(a.out, "By %s · Published on %s\n\n", a.professors.Name(ctx, post.ProfessorID), utils.LongDate(post.CreatedAt))
	fmt.Fprintln(a.out, post.Body)
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	in := models.PostInput{}
	fs.StringVar(&in.Title, "title", "", "post title")
	fs.StringVar(&in.Summary, "summary", "", "optional summary")
	fs.StringVar(&in.Body, "body", "", "post content")
	if err := fs.Parse(args); err != nil {
		return err
	}

	u := a.session.User()
	if u == nil {
		return errNotSignedIn
	}
	if !u.IsProfessor {
		return errors.New("only professors can publish posts")
	}
	if u.ProfessorID.IsZero() {
		return errors.New("professor id not found; sign in again")
	}

	if err := a.promptIfEmpty(&in.Title, "Title: "); err != nil {
		return err
	}
	if err := a.promptIfEmpty(&in.Body, "Content: "); err != nil {
		return err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return errors.New("title and content are required")
	}
	in.ProfessorID = u.ProfessorID

	post, err := a.api.CreatePost(ctx, in)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	fmt.Fprintln(a.out, "Post created successfully!")
	if post != nil && !post.ID.IsZero() {
		fmt.Fprintf(a.out, "id: %s\n", post.ID)
	}
	return nil
}

// ownedPost loads the post and checks the signed-in professor wrote it.
func (a *app) ownedPost(ctx context.Context, id string) (*models.Post, error) {
	if !a.session.IsAuthenticated() {
		return nil, errNotSignedIn
	}
	post, err := a.api.GetPost(ctx, id)
	if errors.Is(err, backend.ErrNotFound) || (err == nil && post == nil) {
		return nil, fmt.Errorf("post %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	if !a.session.CanAuthor(*post) {
		return nil, errNotAuthor
	}
	return post, nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	id := args[0]

	fs := newFlagSet("edit")
	title := fs.String("title", "", "new title")
	summary := fs.String("summary", "", "new summary")
	body := fs.String("body", "", "new content")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	post, err := a.ownedPost(ctx, id)
	if err != nil {
		return err
	}

	in := models.PostInput{Title: post.Title, Summary: post.Summary, Body: post.Body}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			in.Title = *title
		case "summary":
			in.Summary = *summary
		case "body":
			in.Body = *body
		}
	})
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return errors.New("title and content are required")
	}

	if _, err := a.api.UpdatePost(ctx, id, in); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	fmt.Fprintln(a.out, "Post updated successfully!")
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if _, err := a.ownedPost(ctx, args[0]); err != nil {
		return err
	}
	if err := a.api.DeletePost(ctx, args[0]); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	fmt.Fprintln(a.out, "Post deleted.")
	return nil
}

// ---------------- DIAGNOSE ----------------

func (a *app) diagnose(ctx context.Context, args []string) error {
	fs := newFlagSet("diagnose")
	email := fs.String("email", "teste@fiap.com", "email used for the sign-in check")
	password := fs.String("password", "123456", "password used for the sign-in check")
	pause := fs.Duration("pause", 500*time.Millisecond, "wait between checks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Backend: %s\n", a.api.BaseURL())
	failed := 0
	for _, r := range a.api.Diagnose(ctx, backend.Credentials{Email: *email, Password: *password}, *pause) {
		mark := "ok  "
		if !r.Success {
			mark = "FAIL"
			failed++
		}
		fmt.Fprintf(a.out, "%s %-30s %s\n", mark, r.Name, r.Message)
	}
	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}
