// Package admin serves maintenance routes.
package admin

import (
	"net/http"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/usecase/library"
)

func Register(mux *http.ServeMux, svc *library.Service) {
	mux.Handle("DELETE /admin/state", ClearHandler{svc})
	mux.Handle("GET /admin/checkouts/{isbn}", LoansHandler{svc})
}

// LoansHandler lists the patrons holding a copy of the title.
type LoansHandler struct{ Svc *library.Service }

func (h LoansHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Svc.Loans(r.Context(), r.PathValue("isbn"))
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, loans)
}

// ClearHandler removes every book and checkout. 204 on success.
type ClearHandler struct{ Svc *library.Service }

func (h ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Clear(r.Context()); err != nil {
		respond.Errors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
