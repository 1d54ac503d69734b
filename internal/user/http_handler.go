package user

import (
	"errors"
	"net/http"

	"libraryapi/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type createReq struct {
	Name  string `json:"name" validate:"required,notblank,max=100"`
	Email string `json:"email" validate:"required,email,max=254"`
}

// Create handles POST /users
// @Summary Create a user
// @Description Register a library member who can borrow books
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body createReq true "User"
// @Success 201 {object} httpx.SuccessResponse{data=User}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /v1/users [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid input", validationErrors)
		return
	}

	newUser, err := h.service.Create(r.Context(), req.Name, req.Email)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, "ALREADY_EXISTS", "Email already exists", nil)
			return
		}
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccessCreated(w, r, newUser)
}

// Get handles GET /users/{userId}
// @Summary Get a user
// @Tags users
// @Produce json
// @Param userId path string true "User ID"
// @Success 200 {object} httpx.SuccessResponse{data=User}
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/users/{userId} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.GetByID(r.Context(), r.PathValue("userId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidID):
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ID", "Invalid identifier", nil)
		case errors.Is(err, ErrNotFound):
			httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "User not found", nil)
		default:
			httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		}
		return
	}
	httpx.JSONSuccess(w, r, u, nil)
}

// List handles GET /users
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} httpx.SuccessResponse{data=[]User}
// @Router /v1/users [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	page, detail := httpx.ParsePage(r)
	if detail != nil {
		httpx.WritePageError(w, r, detail)
		return
	}

	users, total, err := h.service.List(r.Context(), page.Size, page.Offset())
	if err != nil {
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, users, map[string]any{
		"page":      page.Number,
		"page_size": page.Size,
		"total":     total,
	})
}
