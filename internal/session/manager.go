// Package session holds the visitor's authentication state: the bearer
// token and the cached user, both kept in local storage. All checks here
// are advisory; the backend enforces authorization.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vaughan-dsouza/educatech-blog/internal/backend"
	"github.com/vaughan-dsouza/educatech-blog/internal/models"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

// Local storage keys.
const (
	TokenKey    = "token"
	UserDataKey = "userData"
)

var ErrInvalidLoginResponse = errors.New("session: invalid login response")

type State int

const (
	StateLoading State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Authenticator is the part of the backend the session talks to.
type Authenticator interface {
	SignIn(ctx context.Context, creds backend.Credentials) (*backend.SignInResponse, error)
	Me(ctx context.Context) (*models.User, error)
}

type Manager struct {
	local   storage.Local
	decoder Decoder
	now     func() time.Time

	mu    sync.RWMutex
	state State
	user  *models.User
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(local storage.Local, decoder Decoder, opts ...Option) *Manager {
	m := &Manager{
		local:   local,
		decoder: decoder,
		now:     time.Now,
		state:   StateLoading,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Restore loads the session from local storage. An expired or unreadable
// token clears storage and leaves the session anonymous. A cached user that
// does not parse, or parses to an empty user, is rebuilt from the token.
func (m *Manager) Restore(ctx context.Context) (*models.User, error) {
	token, ok, err := m.local.Get(ctx, TokenKey)
	if err != nil {
		m.set(StateAnonymous, nil)
		return nil, fmt.Errorf("session: read token: %w", err)
	}
	if !ok || token == "" {
		m.set(StateAnonymous, nil)
		return nil, nil
	}

	claims, err := m.decoder.Check(token, m.now())
	if err != nil {
		return nil, m.reset(ctx)
	}

	if saved, ok, err := m.local.Get(ctx, UserDataKey); err == nil && ok {
		var u models.User
		if json.Unmarshal([]byte(saved), &u) == nil && (u.ID != "" || u.Email != "") {
			m.set(StateAuthenticated, &u)
			return &u, nil
		}
	}

	u := UserFromClaims(claims, "")
	if err := m.saveUser(ctx, u); err != nil {
		return nil, err
	}
	m.set(StateAuthenticated, u)
	return u, nil
}

// Login signs in with the backend and persists token and user. The user
// comes from the response when present, otherwise from the token claims.
// On any failure local storage is cleared.
func (m *Manager) Login(ctx context.Context, auth Authenticator, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	resp, err := auth.SignIn(ctx, backend.Credentials{Email: email, Password: password})
	if err != nil {
		m.reset(ctx)
		return nil, err
	}
	if resp == nil || resp.Token == "" {
		m.reset(ctx)
		return nil, ErrInvalidLoginResponse
	}

	var u *models.User
	if resp.User != nil {
		u = resp.User.ToUser(email)
	} else {
		claims, err := m.decoder.Decode(resp.Token)
		if err != nil {
			m.reset(ctx)
			return nil, fmt.Errorf("%w: %v", ErrInvalidLoginResponse, err)
		}
		u = UserFromClaims(claims, email)
	}

	if err := m.local.Set(ctx, TokenKey, resp.Token); err != nil {
		m.reset(ctx)
		return nil, fmt.Errorf("session: save token: %w", err)
	}
	if err := m.saveUser(ctx, u); err != nil {
		m.reset(ctx)
		return nil, err
	}

	m.set(StateAuthenticated, u)
	return u, nil
}

func (m *Manager) Logout(ctx context.Context) error {
	return m.reset(ctx)
}

// Invalidate drops the session after the backend rejected the token.
func (m *Manager) Invalidate(ctx context.Context) error {
	return m.reset(ctx)
}

// Validate asks the backend who the token belongs to. Any failure clears
// the session.
func (m *Manager) Validate(ctx context.Context, auth Authenticator) (*models.User, error) {
	u, err := auth.Me(ctx)
	if err != nil {
		m.reset(ctx)
		return nil, err
	}
	return u, nil
}

// Token returns the stored bearer token, or "" when there is none.
func (m *Manager) Token(ctx context.Context) (string, error) {
	token, _, err := m.local.Get(ctx, TokenKey)
	if err != nil {
		return "", fmt.Errorf("session: read token: %w", err)
	}
	return token, nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Manager) User() *models.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

func (m *Manager) IsProfessor() bool {
	u := m.User()
	return u != nil && u.IsProfessor
}

// CanAuthor reports whether the signed-in professor owns post.
func (m *Manager) CanAuthor(post models.Post) bool {
	u := m.User()
	if u == nil || !u.IsProfessor || u.ProfessorID.IsZero() {
		return false
	}
	return post.ProfessorID == u.ProfessorID
}

func (m *Manager) saveUser(ctx context.Context, u *models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := m.local.Set(ctx, UserDataKey, string(data)); err != nil {
		return fmt.Errorf("session: save user: %w", err)
	}
	return nil
}

func (m *Manager) reset(ctx context.Context) error {
	m.set(StateAnonymous, nil)
	if err := m.local.Remove(ctx, TokenKey, UserDataKey); err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

func (m *Manager) set(state State, u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = u
}
