package responsewriter

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := Wrap(rec)

	require.NotNil(t, wrapped)
	assert.Equal(t, http.StatusOK, wrapped.StatusCode())
	assert.Zero(t, wrapped.BytesWritten())
	assert.False(t, wrapped.wrote)
}

func TestWrap_Idempotent(t *testing.T) {
	inner := Wrap(httptest.NewRecorder())
	assert.Same(t, inner, Wrap(inner))
}

func TestRecorder_WriteHeader(t *testing.T) {
	for _, code := range []int{http.StatusCreated, http.StatusNoContent, http.StatusConflict, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(code), func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := Wrap(rec)

			w.WriteHeader(code)
			w.WriteHeader(http.StatusTeapot)

			assert.Equal(t, code, w.StatusCode())
			assert.Equal(t, code, rec.Code)
		})
	}
}

func TestRecorder_Write(t *testing.T) {
	rec := httptest.NewRecorder()
	w := Wrap(rec)

	n, err := w.Write([]byte(`{"errors":`))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	_, err = w.Write([]byte(`[]}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, w.StatusCode())
	assert.True(t, w.wrote)
	assert.Equal(t, 13, w.BytesWritten())
	assert.Equal(t, `{"errors":[]}`, rec.Body.String())
}

func TestRecorder_Unwrap(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.Equal(t, rec, Wrap(rec).Unwrap())
}
