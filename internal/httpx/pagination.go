package httpx

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// maxOffset bounds (page-1)*size so the offset fits every backend.
	maxOffset = 1<<31 - 1
)

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

func (p Page) TotalPages(total int) int {
	return (total + p.Size - 1) / p.Size
}

// ParsePage reads page and page_size from the query string. A missing or
// non-positive page means 1 and an out-of-range page_size means the default.
// A page that is not a number, or whose offset would overflow, is rejected.
func ParsePage(r *http.Request) (Page, *ErrorDetail) {
	query := r.URL.Query()

	p := Page{Number: 1, Size: DefaultPageSize}
	if size, err := strconv.Atoi(query.Get("page_size")); err == nil && size > 0 && size <= MaxPageSize {
		p.Size = size
	}

	if raw := query.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Page{}, &ErrorDetail{Field: "page", Message: "page must be an integer"}
		}
		if n > 1 {
			p.Number = n
		}
	}
	if p.Number-1 > maxOffset/p.Size {
		return Page{}, &ErrorDetail{Field: "page", Message: fmt.Sprintf("page must be at most %d", maxOffset/p.Size+1)}
	}
	return p, nil
}

// WritePageError writes the 400 response for a ParsePage failure.
func WritePageError(w http.ResponseWriter, r *http.Request, detail *ErrorDetail) {
	JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid pagination", []ErrorDetail{*detail})
}
