package rest

import (
	"net/http"

	"huski/core"
	"huski/handler/render"
	"huski/pkg/address"

	"github.com/go-chi/chi"
)

func stronkHandler(s core.IStronkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		info, err := s.Info(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, info)
	}
}

func hodlerHandler(s core.IStronkService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := s.Hodler(r.Context(), address.Normalize(chi.URLParam(r, "addr")))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, h)
	}
}

func hodlHandler(s core.IStronkService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		account := caller(r)
		amount, err := s.Hodl(ctx, account)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeHodl, account, s.Symbol(), amount, nil)
		render.JSON(w, render.H{"amount": amount})
	}
}

func unhodlHandler(s core.IStronkService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		account := caller(r)
		amount, err := s.Unhodl(ctx, account)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeUnhodl, account, s.Symbol(), amount, nil)
		render.JSON(w, render.H{"amount": amount})
	}
}
