package book

import (
	"errors"
	"net/http"
	"strconv"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type draftRequest struct {
	Title         string `json:"title" validate:"required,notblank,max=255"`
	Author        string `json:"author" validate:"required,notblank,max=255"`
	Genre         string `json:"genre" validate:"omitempty,max=100"`
	PublishedYear *int   `json:"published_year" validate:"required,gte=0,lte=9999"`
}

func (req draftRequest) draft() Draft {
	return Draft{
		Title:         req.Title,
		Author:        req.Author,
		Genre:         req.Genre,
		PublishedYear: *req.PublishedYear,
	}
}

// List godoc
// @Summary List books
// @Description Get a paginated list of books with optional filters
// @Tags books
// @Produce json
// @Param genre query string false "Filter by genre"
// @Param author query string false "Filter by author (substring, case-insensitive)"
// @Param available query bool false "Filter by availability"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} httpx.SuccessResponse{data=[]Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Genre:  query.Get("genre"),
		Author: query.Get("author"),
	}

	if availableStr := query.Get("available"); availableStr != "" {
		val, err := strconv.ParseBool(availableStr)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "available must be true or false", nil)
			return
		}
		params.Available = &val
	}

	page, detail := httpx.ParsePage(r)
	if detail != nil {
		httpx.WritePageError(w, r, detail)
		return
	}
	params.Limit = page.Size
	params.Offset = page.Offset()

	books, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":        page.Number,
		"page_size":   page.Size,
		"total":       total,
		"total_pages": page.TotalPages(total),
	})
}

// Get godoc
// @Summary Get a book
// @Tags books
// @Produce json
// @Param bookId path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse{data=Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{bookId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.Get(r.Context(), r.PathValue("bookId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// Create godoc
// @Summary Add a book to the catalog
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body draftRequest true "Book"
// @Success 201 {object} httpx.SuccessResponse{data=Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !decodeDraft(w, r, &req) {
		return
	}

	book, err := h.service.Create(r.Context(), req.draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, book)
}

// Update godoc
// @Summary Update a book's catalog fields
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookId path string true "Book ID"
// @Param body body draftRequest true "Book"
// @Success 200 {object} httpx.SuccessResponse{data=Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{bookId} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("bookId")
	if !ValidID(id) {
		h.writeError(w, r, ErrInvalidID)
		return
	}

	var req draftRequest
	if !decodeDraft(w, r, &req) {
		return
	}

	book, err := h.service.Update(r.Context(), id, req.draft())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// Delete godoc
// @Summary Remove a book from the catalog
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookId path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse{data=Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{bookId} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	book, err := h.service.Delete(r.Context(), r.PathValue("bookId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, book, nil)
}

// ListHeldBy godoc
// @Summary List books currently borrowed by a user
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} httpx.SuccessResponse{data=[]Book}
// @Failure 400 {object} httpx.ErrorResponse
// @Router /v1/users/{userId}/books [get]
func (h *HTTPHandler) ListHeldBy(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.HeldBy(r.Context(), r.PathValue("userId"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

func decodeDraft(w http.ResponseWriter, r *http.Request, req *draftRequest) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return false
	}
	if errs := httpx.ValidateStruct(req); len(errs) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", errs)
		return false
	}
	return true
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidID):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid identifier", nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Book not found", nil)
	case errors.Is(err, ErrAlreadyExists):
		httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "A book with this title and author already exists", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
