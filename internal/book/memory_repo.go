package book

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"libraryapi/internal/platform/ident"
)

// MemoryRepo keeps books in process memory. Its mutex plays the role of the
// database row lock: match and write happen under one critical section.
type MemoryRepo struct {
	mu    sync.RWMutex
	books map[string]Book
	now   func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		books: make(map[string]Book),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func clone(b Book) Book {
	if b.BorrowedBy != nil {
		id := *b.BorrowedBy
		b.BorrowedBy = &id
	}
	return b
}

func sortBooks(books []Book) {
	sort.Slice(books, func(i, j int) bool {
		if books[i].Title != books[j].Title {
			return books[i].Title < books[j].Title
		}
		return books[i].ID < books[j].ID
	})
}

func (q Query) matches(b Book) bool {
	if !(Filter{Available: q.Available}).Matches(b) {
		return false
	}
	if q.Genre != "" && b.Genre != q.Genre {
		return false
	}
	if q.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(q.Author)) {
		return false
	}
	return true
}

func (r *MemoryRepo) List(_ context.Context, q Query) ([]Book, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := []Book{}
	for _, b := range r.books {
		if q.matches(b) {
			matched = append(matched, clone(b))
		}
	}
	sortBooks(matched)

	total := len(matched)
	start := min(max(q.Offset, 0), total)
	end := total
	if q.Limit > 0 {
		end = min(start+q.Limit, total)
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepo) GetByID(_ context.Context, id string) (Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	return clone(b), nil
}

func (r *MemoryRepo) duplicate(id string, d Draft) bool {
	for _, b := range r.books {
		if b.ID != id && b.Title == d.Title && b.Author == d.Author {
			return true
		}
	}
	return false
}

func (r *MemoryRepo) Create(_ context.Context, d Draft) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.duplicate("", d) {
		return Book{}, ErrAlreadyExists
	}
	now := r.now()
	b := Book{
		ID:            ident.New(),
		Title:         d.Title,
		Author:        d.Author,
		Genre:         d.Genre,
		PublishedYear: d.PublishedYear,
		IsAvailable:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	r.books[b.ID] = b
	return clone(b), nil
}

func (r *MemoryRepo) Update(_ context.Context, id string, d Draft) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	if r.duplicate(id, d) {
		return Book{}, ErrAlreadyExists
	}
	b.Title = d.Title
	b.Author = d.Author
	b.Genre = d.Genre
	b.PublishedYear = d.PublishedYear
	b.UpdatedAt = r.now()
	r.books[id] = b
	return clone(b), nil
}

func (r *MemoryRepo) Delete(_ context.Context, id string) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return Book{}, ErrNotFound
	}
	delete(r.books, id)
	return b, nil
}

func (r *MemoryRepo) ConditionalUpdate(_ context.Context, id string, match Filter, state BorrowState) (Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok || !match.Matches(b) {
		return Book{}, ErrNotMatched
	}
	b.IsAvailable = state.IsAvailable()
	b.BorrowedBy = state.BorrowedBy()
	b.UpdatedAt = r.now()
	r.books[id] = b
	return clone(b), nil
}

func (r *MemoryRepo) CountWhere(_ context.Context, match Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, b := range r.books {
		if match.Matches(b) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) ListWhere(_ context.Context, match Filter) ([]Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []Book{}
	for _, b := range r.books {
		if match.Matches(b) {
			out = append(out, clone(b))
		}
	}
	sortBooks(out)
	return out, nil
}
