package rest

import (
	"net/http"
	"time"

	"huski/core"
	"huski/handler/param"
	"huski/handler/render"
	"huski/pkg/address"
)

type transactionsRequest struct {
	Offset time.Time `json:"offset"`
	Limit  int       `json:"limit"`
	Caller string    `json:"caller"`
}

func transactionsHandler(store core.TransactionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req transactionsRequest
		if err := param.Binding(r, &req); err != nil {
			render.BadRequest(w, err)
			return
		}

		if req.Limit <= 0 || req.Limit > 500 {
			req.Limit = 100
		}

		var (
			transactions []*core.Transaction
			err          error
		)

		if req.Caller != "" {
			transactions, err = store.ListByCaller(ctx, address.Normalize(req.Caller), req.Limit)
		} else {
			transactions, err = store.List(ctx, req.Offset, req.Limit)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, transactions)
	}
}
