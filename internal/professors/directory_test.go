package professors

import (
	"context"
	"errors"
	"testing"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
	"github.com/vaughan-dsouza/educatech-blog/internal/storage"
)

type fakeFetcher struct {
	names map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) GetProfessor(_ context.Context, id string) (*models.Professor, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Professor{ID: models.ID(id), Name: f.names[id]}, nil
}

func TestNameIsCached(t *testing.T) {
	f := &fakeFetcher{names: map[string]string{"3": "Ada Lovelace"}}
	d := NewDirectory(f, storage.NewMemory())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if got := d.Name(ctx, "3"); got != "Ada Lovelace" {
			t.Fatalf("Name() = %q", got)
		}
	}
	if f.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", f.calls)
	}
}

func TestNameFailureNotCached(t *testing.T) {
	f := &fakeFetcher{err: errors.New("offline")}
	d := NewDirectory(f, storage.NewMemory())
	ctx := context.Background()

	if got := d.Name(ctx, "8"); got != "Professor 8" {
		t.Errorf("Name() = %q, want fallback", got)
	}

	f.err = nil
	f.names = map[string]string{"8": "Alan Turing"}
	if got := d.Name(ctx, "8"); got != "Alan Turing" {
		t.Errorf("Name() after recovery = %q", got)
	}
}

func TestNameEmptyID(t *testing.T) {
	f := &fakeFetcher{}
	d := NewDirectory(f, storage.NewMemory())
	if got := d.Name(context.Background(), ""); got != "" || f.calls != 0 {
		t.Errorf("Name(\"\") = %q with %d calls", got, f.calls)
	}
}

func TestNames(t *testing.T) {
	f := &fakeFetcher{names: map[string]string{"1": "A", "2": "B"}}
	d := NewDirectory(f, storage.NewMemory())

	got := d.Names(context.Background(), []models.Post{{ProfessorID: "1"}, {ProfessorID: "2"}, {ProfessorID: "1"}})
	if got["1"] != "A" || got["2"] != "B" || len(got) != 2 {
		t.Errorf("Names() = %v", got)
	}
	if f.calls != 2 {
		t.Errorf("fetcher called %d times, want 2", f.calls)
	}
}
