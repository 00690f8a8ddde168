package book

import (
	"net/http"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/usecase/library"
)

type AddHandler struct{ Svc *library.Service }

// ServeHTTP adds a book, or merges its copies into the stored edition.
// It answers 201 with the stored book.
func (h AddHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req, err := respond.DecodeObject(r)
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	book, err := h.Svc.AddBook(r.Context(), req)
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	respond.JSON(w, http.StatusCreated, book)
}
