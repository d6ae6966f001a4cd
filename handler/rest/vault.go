package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"huski/core"
	"huski/handler/param"
	"huski/handler/render"
	"huski/handler/views"
	"huski/internal/huski"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func vaultView(ctx context.Context, v Vault) (*views.Vault, error) {
	vault, err := v.Service.Vault(ctx)
	if err != nil {
		return nil, err
	}

	total, err := v.Service.TotalToken(ctx)
	if err != nil {
		return nil, err
	}

	u, err := v.Service.Utilization(ctx)
	if err != nil {
		return nil, err
	}

	view := &views.Vault{
		Vault:       vault,
		TotalToken:  total,
		Utilization: u,
		BorrowRate:  v.Config.InterestRate(ctx, u),
		SharePrice:  decimal.New(1, 0),
	}

	if vault.TotalShares.IsPositive() {
		view.SharePrice = huski.AmountForShares(decimal.New(1, 0), vault.TotalShares, total)
	}

	return view, nil
}

func listVaultsHandler(vaults []Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		list := make([]*views.Vault, 0, len(vaults))
		for _, v := range vaults {
			view, err := vaultView(ctx, v)
			if err != nil {
				render.Error(w, err)
				return
			}

			list = append(list, view)
		}

		render.JSON(w, list)
	}
}

func vaultHandler(vaults map[string]Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		view, err := vaultView(r.Context(), v)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, view)
	}
}

func positionHandler(vaults map[string]Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		id, err := param.Uint64(r, "id")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		info, err := v.Service.PositionInfo(r.Context(), id)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.PositionView(info))
	}
}

func ownerPositionsHandler(vaults map[string]Vault) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		positions, err := v.Service.PositionsOf(ctx, chi.URLParam(r, "owner"))
		if err != nil {
			render.Error(w, err)
			return
		}

		list := make([]views.Position, 0, len(positions))
		for _, p := range positions {
			info, err := v.Service.PositionInfo(ctx, p.ID)
			if err != nil {
				render.Error(w, err)
				return
			}

			list = append(list, views.PositionView(info))
		}

		render.JSON(w, list)
	}
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func depositHandler(vaults map[string]Vault, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		var body amountRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		shares, err := v.Service.Deposit(ctx, account, body.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeDeposit, account, v.Service.Symbol(), body.Amount,
			core.NewTransactionExtra().Put(core.TransactionKeyShares, shares))

		render.JSON(w, render.H{"shares": shares})
	}
}

type withdrawRequest struct {
	Shares decimal.Decimal `json:"shares"`
}

func withdrawHandler(vaults map[string]Vault, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		var body withdrawRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		amount, err := v.Service.Withdraw(ctx, account, body.Shares)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeWithdraw, account, v.Service.Symbol(), amount,
			core.NewTransactionExtra().Put(core.TransactionKeyShares, body.Shares))

		render.JSON(w, render.H{"amount": amount})
	}
}

type workRequest struct {
	PositionID uint64          `json:"position_id"`
	Worker     string          `json:"worker" valid:"required"`
	Principal  decimal.Decimal `json:"principal"`
	Borrow     decimal.Decimal `json:"borrow"`
	MaxReturn  decimal.Decimal `json:"max_return"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

func workHandler(vaults map[string]Vault, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		var body workRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		result, err := v.Service.Work(ctx, account, core.WorkInput{
			PositionID: body.PositionID,
			Worker:     body.Worker,
			Principal:  body.Principal,
			Borrow:     body.Borrow,
			MaxReturn:  body.MaxReturn,
			Payload:    body.Payload,
		})
		if err != nil {
			render.Error(w, err)
			return
		}

		extra := extraOf(result)
		extra.Put(core.TransactionKeyPosition, result.Position.ID)
		a.record(ctx, core.ActionTypeWork, account, v.Service.Symbol(), body.Principal, extra)

		render.JSON(w, result)
	}
}

func killHandler(vaults map[string]Vault, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		v, err := findVault(vaults, r)
		if err != nil {
			render.Error(w, err)
			return
		}

		id, err := param.Uint64(r, "id")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		result, err := v.Service.Kill(ctx, account, id)
		if err != nil {
			render.Error(w, err)
			return
		}

		extra := extraOf(result)
		extra.Put(core.TransactionKeyPosition, id)
		a.record(ctx, core.ActionTypeKill, account, v.Service.Symbol(), result.Prize, extra)

		render.JSON(w, result)
	}
}
