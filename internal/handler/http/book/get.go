package book

import (
	"net/http"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/usecase/library"
)

type GetHandler struct{ Svc *library.Service }

// ServeHTTP returns the book under {isbn} with its availability.
func (h GetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, err := h.Svc.GetBook(r.Context(), r.PathValue("isbn"))
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, status)
}
