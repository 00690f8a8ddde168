// Package checkout serves the lending routes.
package checkout

import (
	"context"
	"net/http"

	"lending-library/internal/handler/http/respond"
	"lending-library/internal/usecase/library"
)

func Register(mux *http.ServeMux, svc *library.Service) {
	mux.Handle("POST /checkouts", CheckoutHandler{svc})
	mux.Handle("DELETE /checkouts", ReturnHandler{svc})
}

// CheckoutHandler lends one copy of a title to a patron. 204 on success.
type CheckoutHandler struct{ Svc *library.Service }

func (h CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveLend(w, r, h.Svc.CheckoutBook)
}

// ReturnHandler takes back the copy a patron holds. 204 on success.
type ReturnHandler struct{ Svc *library.Service }

func (h ReturnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveLend(w, r, h.Svc.ReturnBook)
}

func serveLend(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, req map[string]any) error) {
	req, err := respond.DecodeObject(r)
	if err != nil {
		respond.Errors(w, r, err)
		return
	}
	if err := op(r.Context(), req); err != nil {
		respond.Errors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
