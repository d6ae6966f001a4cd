package rest

import (
	"net/http"

	"huski/core"
	"huski/handler/param"
	"huski/handler/render"
	"huski/handler/views"
	"huski/pkg/address"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func listPoolsHandler(fl core.IFairLaunchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		settings, err := fl.Settings(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		pools, err := fl.Pools(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, render.H{
			"fairlaunch": settings,
			"pools":      pools,
		})
	}
}

func poolUserHandler(fl core.IFairLaunchService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pid, err := param.Int64(r, "pid")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		user := address.Normalize(chi.URLParam(r, "user"))
		info, err := fl.UserInfo(ctx, pid, user)
		if err != nil {
			render.Error(w, err)
			return
		}

		pending, err := fl.PendingReward(ctx, pid, user)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.PoolUser{PoolUser: info, Pending: pending})
	}
}

type stakeRequest struct {
	Amount decimal.Decimal `json:"amount"`
	// For beneficiary, the caller when empty
	For string `json:"for,omitempty"`
}

func (req stakeRequest) beneficiary(caller string) string {
	if b := address.Normalize(req.For); b != "" {
		return b
	}

	return caller
}

func stakeHandler(fl core.IFairLaunchService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pid, err := param.Int64(r, "pid")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		var body stakeRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		beneficiary := body.beneficiary(account)
		if err := fl.Deposit(ctx, account, beneficiary, pid, body.Amount); err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeStake, account, fl.Address(), body.Amount,
			core.NewTransactionExtra().Put(core.TransactionKeyBeneficiary, beneficiary).Put("pid", pid))

		render.JSON(w, views.DefaultSuccess)
	}
}

func unstakeHandler(fl core.IFairLaunchService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pid, err := param.Int64(r, "pid")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		var body stakeRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		beneficiary := body.beneficiary(account)
		if body.Amount.IsZero() {
			err = fl.WithdrawAll(ctx, account, beneficiary, pid)
		} else {
			err = fl.Withdraw(ctx, account, beneficiary, pid, body.Amount)
		}

		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeUnstake, account, fl.Address(), body.Amount,
			core.NewTransactionExtra().Put(core.TransactionKeyBeneficiary, beneficiary).Put("pid", pid))

		render.JSON(w, views.DefaultSuccess)
	}
}

func harvestHandler(fl core.IFairLaunchService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pid, err := param.Int64(r, "pid")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		result, err := fl.Harvest(ctx, account, pid)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeHarvest, account, fl.Address(), result.Reward,
			core.NewTransactionExtra().Put(core.TransactionKeyLocked, result.Locked).Put("pid", pid))

		render.JSON(w, result)
	}
}

func emergencyWithdrawHandler(fl core.IFairLaunchService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		pid, err := param.Int64(r, "pid")
		if err != nil {
			render.BadRequest(w, err)
			return
		}

		var body stakeRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		account := caller(r)
		beneficiary := body.beneficiary(account)
		if err := fl.EmergencyWithdraw(ctx, account, beneficiary, pid); err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeEmergencyWithdraw, account, fl.Address(), decimal.Zero,
			core.NewTransactionExtra().Put(core.TransactionKeyBeneficiary, beneficiary).Put("pid", pid))

		render.JSON(w, views.DefaultSuccess)
	}
}
