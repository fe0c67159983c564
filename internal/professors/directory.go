// Package professors resolves professor ids to display names for post
// bylines.
package professors

import (
	"context"
	"log"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

const cacheNamespace = "professors"

type Fetcher interface {
	GetProfessor(ctx context.Context, id string) (*models.Professor, error)
}

type Directory struct {
	fetcher Fetcher
	cache   storage.Local
}

func NewDirectory(f Fetcher, cache storage.Storage) *Directory {
	return &Directory{fetcher: f, cache: storage.NewLocal(cache, cacheNamespace)}
}

// Name returns the display name for id. Lookup failures give a generic
// label and are not cached, so the next page view retries.
func (d *Directory) Name(ctx context.Context, id models.ID) string {
	if id.IsZero() {
		return ""
	}

	if name, ok, err := d.cache.Get(ctx, id.String()); err == nil && ok {
		return name
	}

	p, err := d.fetcher.GetProfessor(ctx, id.String())
	if err != nil || p == nil || p.Name == "" {
		if err != nil {
			log.Printf("professors: lookup %s: %v", id, err)
		}
		return Fallback(id)
	}

	if err := d.cache.Set(ctx, id.String(), p.Name); err != nil {
		log.Printf("professors: cache %s: %v", id, err)
	}
	return p.Name
}

// Names resolves every distinct professor of posts.
func (d *Directory) Names(ctx context.Context, posts []models.Post) map[models.ID]string {
	names := make(map[models.ID]string, len(posts))
	for _, p := range posts {
		if _, ok := names[p.ProfessorID]; ok {
			continue
		}
		names[p.ProfessorID] = d.Name(ctx, p.ProfessorID)
	}
	return names
}

func Fallback(id models.ID) string {
	return "Professor " + id.String()
}
