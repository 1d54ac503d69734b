package borrow

import (
	"net/http"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	coordinator *Coordinator
}

func NewHTTPHandler(coordinator *Coordinator) *HTTPHandler {
	return &HTTPHandler{coordinator: coordinator}
}

// Borrow godoc
// @Summary Borrow a book
// @Description Lend an available book to a user who holds fewer than the borrow limit
// @Tags borrowing
// @Produce json
// @Param bookId path string true "Book ID"
// @Param userId path string true "User ID"
// @Success 200 {object} httpx.SuccessResponse{data=Outcome}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/books/{bookId}/borrow/{userId} [post]
func (h *HTTPHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	out, err := h.coordinator.Borrow(r.Context(), BorrowInput{
		BookID: r.PathValue("bookId"),
		UserID: r.PathValue("userId"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, out, nil)
}

// Return godoc
// @Summary Return a book
// @Tags borrowing
// @Produce json
// @Param bookId path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse{data=Outcome}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 503 {object} httpx.ErrorResponse
// @Router /v1/books/{bookId}/return [post]
func (h *HTTPHandler) Return(w http.ResponseWriter, r *http.Request) {
	out, err := h.coordinator.Return(r.Context(), ReturnInput{BookID: r.PathValue("bookId")})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, out, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch KindOf(err) {
	case KindInvalidIdentifier:
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid bookId or userId", nil)
	case KindUserNotFound:
		httpx.JSONError(w, r, http.StatusBadRequest, "USER_NOT_FOUND", "User not found", nil)
	case KindQuotaExceeded:
		httpx.JSONError(w, r, http.StatusConflict, "QUOTA_EXCEEDED", "User has reached the borrow limit", nil)
	case KindBookUnavailable:
		httpx.JSONError(w, r, http.StatusConflict, "BOOK_UNAVAILABLE", "Book is already borrowed or does not exist", nil)
	case KindNotCurrentlyBorrowed:
		httpx.JSONError(w, r, http.StatusConflict, "NOT_BORROWED", "Book is not currently borrowed or does not exist", nil)
	case KindStoreUnavailable:
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Storage is temporarily unavailable", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
