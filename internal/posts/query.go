// Package posts implements the post listing flow: fetch, filter, sort and
// page through posts in memory.
package posts

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/vaughan-dsouza/educatech-blog/internal/models"
)

const DefaultPageSize = 6

type SortOrder string

const (
	SortNewest  SortOrder = "newest"
	SortOldest  SortOrder = "oldest"
	SortTitle   SortOrder = "title"
	SortUpdated SortOrder = "updated"
)

func ParseSort(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOldest:
		return SortOldest
	case SortTitle:
		return SortTitle
	case SortUpdated:
		return SortUpdated
	default:
		return SortNewest
	}
}

type Query struct {
	Search   string
	Sort     SortOrder
	Page     int
	PageSize int
}

// QueryFromValues reads ?q=&sort=&page= . Bad page numbers become 1.
func QueryFromValues(v url.Values, pageSize int) Query {
	page, err := strconv.Atoi(v.Get("page"))
	if err != nil {
		page = 1
	}
	return Query{
		Search:   strings.TrimSpace(v.Get("q")),
		Sort:     ParseSort(v.Get("sort")),
		Page:     page,
		PageSize: pageSize,
	}
}

// Values encodes q back to URL parameters, leaving out defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("q", q.Search)
	}
	if q.Sort != "" && q.Sort != SortNewest {
		v.Set("sort", string(q.Sort))
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	return v
}

// WithPage returns a copy of q on page n.
func (q Query) WithPage(n int) Query {
	q.Page = n
	return q
}

// Filter keeps posts where every whitespace-separated term of search
// appears, case-insensitively, in the title, summary or body.
func Filter(posts []models.Post, search string) []models.Post {
	terms := strings.Fields(strings.ToLower(search))
	if len(terms) == 0 {
		return posts
	}

	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		text := strings.ToLower(p.Title + "\n" + p.Summary + "\n" + p.Body)
		match := true
		for _, t := range terms {
			if !strings.Contains(text, t) {
				match = false
				break
			}
		}
		if match {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders posts in place. Ties fall back to id, descending.
func Sort(posts []models.Post, order SortOrder) {
	less := func(a, b models.Post) bool {
		switch order {
		case SortOldest:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		case SortTitle:
			ta, tb := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if ta != tb {
				return ta < tb
			}
		case SortUpdated:
			if !a.UpdatedAt.Equal(b.UpdatedAt) {
				return a.UpdatedAt.After(b.UpdatedAt)
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return idGreater(a.ID, b.ID)
	}

	sort.SliceStable(posts, func(i, j int) bool { return less(posts[i], posts[j]) })
}

// idGreater compares numerically when both ids are numbers.
func idGreater(a, b models.ID) bool {
	na, errA := strconv.ParseInt(string(a), 10, 64)
	nb, errB := strconv.ParseInt(string(b), 10, 64)
	if errA == nil && errB == nil {
		return na > nb
	}
	return a > b
}

type Page struct {
	Items      []models.Post
	Page       int
	PageSize   int
	TotalPages int
	TotalItems int
}

func (p Page) HasPrev() bool { return p.Page > 1 }

func (p Page) HasNext() bool { return p.Page < p.TotalPages }

func (p Page) PrevPage() int { return p.Page - 1 }

func (p Page) NextPage() int { return p.Page + 1 }

// Paginate slices posts to the requested page. There is always at least
// one page, and out-of-range pages are clamped.
func Paginate(posts []models.Post, page, size int) Page {
	if size < 1 {
		size = DefaultPageSize
	}

	total := len(posts)
	pages := (total + size - 1) / size
	if pages < 1 {
		pages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	return Page{
		Items:      posts[start:end],
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		TotalItems: total,
	}
}
