// Package respond writes JSON responses and maps library errors to HTTP
// status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"lending-library/internal/domain/entity"
	"lending-library/internal/observability/logging"
	"lending-library/internal/resilience/circuitbreaker"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Errors []ErrorItem `json:"errors"`
}

type ErrorItem struct {
	Code    entity.Code `json:"code"`
	Message string      `json:"message"`
	Path    string      `json:"path,omitempty"`
}

// conflicts are state violations reported against isbn. They answer 409
// rather than 400 because the request itself was well formed.
var conflicts = []error{
	entity.ErrBookMismatch,
	entity.ErrUnknownBook,
	entity.ErrNoCopiesAvailable,
	entity.ErrAlreadyCheckedOut,
	entity.ErrNotCheckedOut,
}

// JSON writes v with the given status. A nil v writes only the header.
func JSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			// headers are already sent
			slog.Default().Error("failed to encode JSON response",
				slog.Int("status_code", code),
				slog.Any("error", err))
		}
	}
}

// Status picks the HTTP status for err.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case entity.HasCode(err, entity.CodeDB):
		if circuitbreaker.IsRejection(err) {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	case entity.HasCode(err, entity.CodeConfig):
		return http.StatusInternalServerError
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	}
	for _, c := range conflicts {
		if errors.Is(err, c) {
			return http.StatusConflict
		}
	}
	return http.StatusBadRequest
}

// Errors writes err as an error list. Internal failures are logged with
// credentials masked and reach the client only as a generic message.
func Errors(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	code := Status(err)
	list := entity.AsErrors(err)
	body := ErrorBody{Errors: make([]ErrorItem, 0, len(list))}

	if code >= 500 {
		logging.FromContext(r.Context()).Error("internal server error",
			slog.Int("code", code),
			slog.String("error", SanitizeError(err)))
		msg := "internal server error"
		if code == http.StatusServiceUnavailable {
			msg = "service temporarily unavailable"
		}
		for _, e := range list {
			body.Errors = append(body.Errors, ErrorItem{Code: e.Code, Message: msg, Path: e.Path})
		}
		JSON(w, code, body)
		return
	}

	for _, e := range list {
		body.Errors = append(body.Errors, ErrorItem{Code: e.Code, Message: e.Message, Path: e.Path})
	}
	JSON(w, code, body)
}

// BadRequest reports a malformed body or query string.
func BadRequest(w http.ResponseWriter, r *http.Request, msg string) {
	Errors(w, r, entity.NewError(entity.CodeBadReq, "", msg))
}
