package posts

import (
	"context"
	"fmt"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
)

// Source is where posts come from; *backend.Client satisfies it.
type Source interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	SearchPosts(ctx context.Context, q string) ([]models.Post, error)
}

type Service struct {
	// RemoteSearch sends searches to GET /posts/search and trusts its
	// matches. Otherwise all posts are fetched and filtered here.
	RemoteSearch bool
	PageSize     int
}

func NewService(remoteSearch bool, pageSize int) *Service {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return &Service{RemoteSearch: remoteSearch, PageSize: pageSize}
}

func (s *Service) Browse(ctx context.Context, src Source, q Query) (Page, error) {
	if q.PageSize < 1 {
		q.PageSize = s.PageSize
	}

	var (
		list []models.Post
		err  error
	)
	if q.Search != "" && s.RemoteSearch {
		list, err = src.SearchPosts(ctx, q.Search)
	} else {
		list, err = src.ListPosts(ctx)
	}
	if err != nil {
		return Page{}, fmt.Errorf("posts: load: %w", err)
	}

	if !s.RemoteSearch {
		list = Filter(list, q.Search)
	}

	Sort(list, q.Sort)
	return Paginate(list, q.Page, q.PageSize), nil
}
