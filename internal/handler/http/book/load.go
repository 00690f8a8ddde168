package book

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"lending-library/internal/domain/entity"
	"lending-library/internal/handler/http/respond"
	"lending-library/internal/infra/loader"
	"lending-library/internal/observability/logging"
	"lending-library/internal/usecase/library"
)

type LoadHandler struct{ Svc *library.Service }

// LoadResult reports how many books a bulk load added before it stopped.
type LoadResult struct {
	Loaded int                 `json:"loaded"`
	Errors []respond.ErrorItem `json:"errors,omitempty"`
}

// ServeHTTP adds every book of a JSON array in order. Validation or state
// failures stop the load and answer with the error status; the body still
// carries the number of books already added.
func (h LoadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.BadRequest(w, r, "request body too large")
			return
		}
		respond.BadRequest(w, r, "cannot read request body")
		return
	}
	books, err := loader.DecodeJSON("body", data)
	if err != nil {
		respond.Errors(w, r, err)
		return
	}

	n, err := h.Svc.LoadBooks(r.Context(), books)
	if err != nil {
		code := respond.Status(err)
		if code >= http.StatusInternalServerError {
			respond.Errors(w, r, err)
			return
		}
		out := LoadResult{Loaded: n}
		for _, e := range entity.AsErrors(err) {
			out.Errors = append(out.Errors, respond.ErrorItem{Code: e.Code, Message: e.Message, Path: e.Path})
		}
		respond.JSON(w, code, out)
		return
	}
	logging.FromContext(r.Context()).Info("books loaded", slog.Int("count", n))
	respond.JSON(w, http.StatusCreated, LoadResult{Loaded: n})
}
