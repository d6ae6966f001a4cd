package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"huski/core"
	"huski/handler/param"
	"huski/handler/render"
	"huski/handler/views"

	"github.com/go-chi/chi"
	"github.com/shopspring/decimal"
)

func listProposalsHandler(tl core.ITimelockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		proposals, err := tl.List(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		list := make([]views.Proposal, 0, len(proposals))
		for _, p := range proposals {
			list = append(list, views.ProposalView(p))
		}

		render.JSON(w, list)
	}
}

func proposalHandler(tl core.ITimelockService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := tl.Find(r.Context(), chi.URLParam(r, "hash"))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.ProposalView(p))
	}
}

type queueRequest struct {
	Action  string          `json:"action" valid:"required"`
	Content json.RawMessage `json:"content"`
	ETA     time.Time       `json:"eta"`
}

func queueProposalHandler(tl core.ITimelockService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var body queueRequest
		if err := param.Binding(r, &body); err != nil {
			render.BadRequest(w, err)
			return
		}

		action, ok := core.ParseActionType(body.Action)
		if !ok || !action.IsProposal() {
			render.BadRequest(w, fmt.Errorf("unknown proposal action %q", body.Action))
			return
		}

		account := caller(r)
		p, err := tl.Queue(ctx, account, action, body.Content, body.ETA)
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeQueueProposal, account, tl.Address(), decimal.Zero,
			core.NewTransactionExtra().Put(core.TransactionKeyProposal, p.Hash).Put("action", action.String()))

		render.JSON(w, views.ProposalView(p))
	}
}

func executeProposalHandler(tl core.ITimelockService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		account := caller(r)
		p, err := tl.Execute(ctx, account, chi.URLParam(r, "hash"))
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeExecuteProposal, account, tl.Address(), decimal.Zero,
			core.NewTransactionExtra().Put(core.TransactionKeyProposal, p.Hash))

		render.JSON(w, views.ProposalView(p))
	}
}

func cancelProposalHandler(tl core.ITimelockService, a *auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		account := caller(r)
		p, err := tl.Cancel(ctx, account, chi.URLParam(r, "hash"))
		if err != nil {
			render.Error(w, err)
			return
		}

		a.record(ctx, core.ActionTypeCancelProposal, account, tl.Address(), decimal.Zero,
			core.NewTransactionExtra().Put(core.TransactionKeyProposal, p.Hash))

		render.JSON(w, views.ProposalView(p))
	}
}
