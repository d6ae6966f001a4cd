package rest

import (
	"net/http"

	"huski/core"
	"huski/handler/render"
	"huski/handler/views"
	"huski/pkg/address"

	"github.com/go-chi/chi"
)

func tokenAccountHandler(bank core.ITokenBank) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := bank.Token(ctx, chi.URLParam(r, "symbol"))
		if err != nil {
			render.Error(w, err)
			return
		}

		holder := address.Normalize(chi.URLParam(r, "addr"))
		balance, err := token.BalanceOf(ctx, holder)
		if err != nil {
			render.Error(w, err)
			return
		}

		view := views.Account{
			Token:   token.Symbol(),
			Address: holder,
			Balance: balance,
		}

		if lockable, ok := token.(core.ILockableToken); ok {
			if view.Locked, err = lockable.LockOf(ctx, holder); err != nil {
				render.Error(w, err)
				return
			}

			if view.Unlockable, err = lockable.CanUnlockAmount(ctx, holder); err != nil {
				render.Error(w, err)
				return
			}
		}

		render.JSON(w, view)
	}
}

func unlockHandler(bank core.ITokenBank, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := bank.Token(ctx, chi.URLParam(r, "symbol"))
		if err != nil {
			render.Error(w, err)
			return
		}

		lockable, ok := token.(core.ILockableToken)
		if !ok {
			render.Error(w, core.ErrOperationForbidden)
			return
		}

		account := caller(r)
		amount, err := lockable.Unlock(ctx, account)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeUnlock, account, token.Symbol(), amount, nil)
		render.JSON(w, render.H{"amount": amount})
	}
}
