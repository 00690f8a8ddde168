package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lending-library/internal/domain/entity"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"isbn": "123-456-789-0"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"isbn":"123-456-789-0"}`, w.Body.String())

	w = httptest.NewRecorder()
	JSON(w, http.StatusNoContent, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestJSON_EncodingError(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, make(chan int))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"missing field", entity.Errors{entity.NewError(entity.CodeMissing, "title", "title is required")}, http.StatusBadRequest},
		{"bad request", entity.NewError(entity.CodeBadReq, "", "request must be an object"), http.StatusBadRequest},
		{"bad isbn shape", entity.Errors{entity.NewError(entity.CodeBadType, "isbn", "isbn must be ...")}, http.StatusBadRequest},
		{"mismatch", entity.ConflictError(entity.ErrBookMismatch, "invalid book/data mismatch"), http.StatusConflict},
		{"unknown book", entity.ConflictError(entity.ErrUnknownBook, "invalid isbn"), http.StatusConflict},
		{"no copies", entity.ConflictError(entity.ErrNoCopiesAvailable, "no copies available"), http.StatusConflict},
		{"already out", entity.ConflictError(entity.ErrAlreadyCheckedOut, "x"), http.StatusConflict},
		{"not out", entity.ConflictError(entity.ErrNotCheckedOut, "x"), http.StatusConflict},
		{"not found", entity.ConflictError(entity.ErrNotFound, "unknown isbn"), http.StatusNotFound},
		{"db", entity.DBError(errors.New("conn reset")), http.StatusInternalServerError},
		{"breaker open", entity.DBError(fmt.Errorf("Get: %w", gobreaker.ErrOpenState)), http.StatusServiceUnavailable},
		{"config", entity.NewError(entity.CodeConfig, "", "no validator for command x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Status(tt.err))
		})
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestErrors_FieldList(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/books", nil)
	Errors(w, r, entity.Errors{
		entity.NewError(entity.CodeMissing, "title", "title is required"),
		entity.NewError(entity.CodeBadType, "authors.1", "must be non-empty"),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorBody{Errors: []ErrorItem{
		{Code: entity.CodeMissing, Message: "title is required", Path: "title"},
		{Code: entity.CodeBadType, Message: "must be non-empty", Path: "authors.1"},
	}}, decode(t, w))
}

func TestErrors_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	Errors(w, r, entity.DBError(errors.New("dial postgres://lib:s3cret@db/library: refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, strings.Contains(w.Body.String(), "s3cret"))
	body := decode(t, w)
	require.Len(t, body.Errors, 1)
	assert.Equal(t, entity.CodeDB, body.Errors[0].Code)
	assert.Equal(t, "internal server error", body.Errors[0].Message)
}

func TestErrors_Unavailable(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/books", nil)
	Errors(w, r, entity.DBError(gobreaker.ErrTooManyRequests))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service temporarily unavailable", decode(t, w).Errors[0].Message)
}

func TestErrors_Nil(t *testing.T) {
	w := httptest.NewRecorder()
	Errors(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestBadRequest(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, httptest.NewRequest(http.MethodPost, "/books", nil), "invalid JSON body")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrorBody{Errors: []ErrorItem{
		{Code: entity.CodeBadReq, Message: "invalid JSON body"},
	}}, decode(t, w))
}
