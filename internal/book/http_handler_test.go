package book

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

const (
	testBookID = "0b6f2a52-4f1c-4a52-9d1c-6f0f4b3c9a11"
	testUserID = "5f1d0c3e-8a7b-4c2d-9e6f-1a2b3c4d5e6f"
)

func TestHTTPHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	service := NewService(mockRepo)
	handler := NewHTTPHandler(service)

	testBook := Book{
		ID:          testBookID,
		Title:       "Dune",
		Author:      "Frank Herbert",
		IsAvailable: true,
	}

	t.Run("success", func(t *testing.T) {
		available := true
		want := Query{Genre: "sf", Author: "herbert", Available: &available, Limit: 10, Offset: 10}
		mockRepo.EXPECT().List(gomock.Any(), want).Return([]Book{testBook}, 11, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?genre=sf&author=herbert&available=true&page=2&page_size=10", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_pages":2`)
	})

	t.Run("defaults", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), Query{Limit: 20}).Return([]Book{}, 0, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?page_size=500", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad available", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?available=maybe", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error", func(t *testing.T) {
		mockRepo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, context.DeadlineExceeded)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books", nil)

		handler.List(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "deadline")
	})
}

func TestHTTPHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBookID).Return(Book{ID: testBookID, Title: "Dune"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil)
		r.SetPathValue("bookId", testBookID)

		handler.Get(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().GetByID(gomock.Any(), testBookID).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/"+testBookID, nil)
		r.SetPathValue("bookId", testBookID)

		handler.Get(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/123", nil)
		r.SetPathValue("bookId", "123")

		handler.Get(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_ID")
	})
}

func TestHTTPHandler_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("created", func(t *testing.T) {
		draft := Draft{Title: "Dune", Author: "Frank Herbert", Genre: "sf", PublishedYear: 1965}
		mockRepo.EXPECT().Create(gomock.Any(), draft).Return(Book{ID: testBookID, Title: "Dune", IsAvailable: true}, nil)

		body := `{"title":"Dune","author":"Frank Herbert","genre":"sf","published_year":1965}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))

		handler.Create(w, r)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate", func(t *testing.T) {
		mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(Book{}, ErrAlreadyExists)

		body := `{"title":"Dune","author":"Frank Herbert","published_year":1965}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))

		handler.Create(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("borrow fields rejected", func(t *testing.T) {
		body := `{"title":"Dune","author":"Frank Herbert","published_year":1965,"is_available":false}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		body := `{"title":"  ","author":"Frank Herbert"}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(body))

		handler.Create(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"title"`)
		assert.Contains(t, w.Body.String(), `"field":"publishedYear"`)
	})
}

func TestHTTPHandler_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("success", func(t *testing.T) {
		draft := Draft{Title: "Dune Messiah", Author: "Frank Herbert", PublishedYear: 1969}
		mockRepo.EXPECT().Update(gomock.Any(), testBookID, draft).Return(Book{ID: testBookID, Title: "Dune Messiah"}, nil)

		body := `{"title":"Dune Messiah","author":"Frank Herbert","published_year":1969}`
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/books/"+testBookID, strings.NewReader(body))
		r.SetPathValue("bookId", testBookID)

		handler.Update(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/books/nope", strings.NewReader(`{}`))
		r.SetPathValue("bookId", "nope")

		handler.Update(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_ID")
	})
}

func TestHTTPHandler_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	t.Run("echoes removed book", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testBookID).Return(Book{ID: testBookID, Title: "Dune"}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/books/"+testBookID, nil)
		r.SetPathValue("bookId", testBookID)

		handler.Delete(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Dune")
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo.EXPECT().Delete(gomock.Any(), testBookID).Return(Book{}, ErrNotFound)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/books/"+testBookID, nil)
		r.SetPathValue("bookId", testBookID)

		handler.Delete(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHTTPHandler_ListHeldBy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	mockRepo := NewMockRepository(ctrl)
	handler := NewHTTPHandler(NewService(mockRepo))

	borrower := testUserID
	mockRepo.EXPECT().ListWhere(gomock.Any(), HeldBy(testUserID)).Return([]Book{{ID: testBookID, BorrowedBy: &borrower}}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/users/"+testUserID+"/books", nil)
	r.SetPathValue("userId", testUserID)

	handler.ListHeldBy(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestHTTPHandler_List_PageOutOfRange(t *testing.T) {
	handler := NewHTTPHandler(NewService(NewMemoryRepo()))

	for _, page := range []string{"9223372036854775807", "99999999999999999999", "two"} {
		t.Run(page, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/books?page="+page, nil)

			handler.List(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
			assert.Contains(t, w.Body.String(), `"field":"page"`)
		})
	}
}
