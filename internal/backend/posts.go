package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
)

func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	return c.listPosts(ctx, "/posts", nil)
}

func (c *Client) SearchPosts(ctx context.Context, q string) ([]models.Post, error) {
	return c.listPosts(ctx, "/posts/search", url.Values{"q": {q}})
}

func (c *Client) listPosts(ctx context.Context, path string, query url.Values) ([]models.Post, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	posts, err := unwrap[[]models.Post](raw, "posts", "data")
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

func (c *Client) GetPost(ctx context.Context, id string) (*models.Post, error) {
	return c.postCall(ctx, http.MethodGet, "/posts/"+pathID(id), nil)
}

func (c *Client) CreatePost(ctx context.Context, in models.PostInput) (*models.Post, error) {
	return c.postCall(ctx, http.MethodPost, "/posts", in)
}

// UpdatePost sends title, summary and body only; ownership is not
// transferable.
func (c *Client) UpdatePost(ctx context.Context, id string, in models.PostInput) (*models.Post, error) {
	in.ProfessorID = ""
	return c.postCall(ctx, http.MethodPut, "/posts/"+pathID(id), in)
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+pathID(id), nil, nil, nil)
}

func (c *Client) postCall(ctx context.Context, method, path string, body any) (*models.Post, error) {
	var raw json.RawMessage
	if err := c.do(ctx, method, path, nil, body, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}
	post, err := unwrap[models.Post](raw, "post", "data")
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) GetProfessor(ctx context.Context, id string) (*models.Professor, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/teacher/"+pathID(id), nil, nil, &raw); err != nil {
		return nil, err
	}
	p, err := unwrap[models.Professor](raw, "teacher", "professor", "data")
	if err != nil {
		return nil, err
	}
	return &p, nil
}
