// Package book serves the catalog routes.
package book

import (
	"net/http"

	"lending-library/internal/usecase/library"
)

// Register mounts the catalog routes on mux. Authorization is applied by the
// middleware chain around the mux.
func Register(mux *http.ServeMux, svc *library.Service) {
	mux.Handle("GET /books", FindHandler{svc})
	mux.Handle("GET /books/{isbn}", GetHandler{svc})
	mux.Handle("POST /books", AddHandler{svc})
	mux.Handle("POST /books/load", LoadHandler{svc})
}
