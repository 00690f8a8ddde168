package book

import (
	"net/http"
	"strconv"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/usecase/library"
)

type FindHandler struct{ Svc *library.Service }

// ServeHTTP answers GET /books?search=...&index=...&count=...
func (h FindHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	books, err := h.Svc.FindBooks(r.Context(), findRequest(r))
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, books)
}

// findRequest turns query parameters into a raw find request. index and
// count become integers only when they parse as one; anything else is
// passed through as a string and rejected by validation.
func findRequest(r *http.Request) map[string]any {
	q := r.URL.Query()
	req := make(map[string]any, 3)
	if q.Has("search") {
		req["search"] = q.Get("search")
	}
	for _, key := range []string{"index", "count"} {
		if !q.Has(key) {
			continue
		}
		raw := q.Get(key)
		if n, err := strconv.Atoi(raw); err == nil {
			req[key] = n
		} else {
			req[key] = raw
		}
	}
	return req
}
