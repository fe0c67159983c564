package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
)

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type SignUpRequest struct {
	Email         string `json:"email"`
	Password      string `json:"senha"`
	ProfessorName string `json:"professorName,omitempty"`
}

// AccountUser is the user object returned by sign-in and /user/me.
type AccountUser struct {
	ID            models.ID `json:"id"`
	Sub           models.ID `json:"sub"`
	Email         string    `json:"email"`
	ProfessorName string    `json:"professorName"`
	IsProfessor   bool      `json:"isProfessor"`
	ProfessorID   models.ID `json:"professorId"`
}

// ToUser converts to the session user. fallbackEmail fills a missing email.
func (a *AccountUser) ToUser(fallbackEmail string) *models.User {
	id := a.ID
	if id.IsZero() {
		id = a.Sub
	}
	email := a.Email
	if email == "" {
		email = fallbackEmail
	}
	return &models.User{
		ID:            id.String(),
		Email:         email,
		ProfessorName: a.ProfessorName,
		IsProfessor:   a.IsProfessor,
		ProfessorID:   a.ProfessorID,
	}
}

type SignInResponse struct {
	Token string       `json:"token"`
	User  *AccountUser `json:"user"`
}

func (c *Client) SignIn(ctx context.Context, creds Credentials) (*SignInResponse, error) {
	var resp SignInResponse
	if err := c.do(ctx, http.MethodPost, "/user/signin", nil, creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) SignUp(ctx context.Context, req SignUpRequest) error {
	return c.do(ctx, http.MethodPost, "/user", nil, req, nil)
}

// Me returns the user the current token belongs to. It doubles as token
// validation.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/user/me", nil, nil, &raw); err != nil {
		return nil, err
	}
	acc, err := unwrap[AccountUser](raw, "user", "data")
	if err != nil {
		return nil, err
	}
	return acc.ToUser(""), nil
}
