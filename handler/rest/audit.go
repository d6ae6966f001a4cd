package rest

import (
	"context"
	"net/http"
	"strings"

	"huski/core"
	"huski/pkg/id"

	"github.com/fatih/structs"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// headerRequestID retried requests carrying the same id are recorded once
const headerRequestID = "X-Request-Id"

type requestKey struct{}

func handleRequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if rid := r.Header.Get(headerRequestID); id.Valid(rid) {
			r = r.WithContext(context.WithValue(r.Context(), requestKey{}, rid))
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}

func traceID(ctx context.Context, action core.ActionType) string {
	if rid, ok := ctx.Value(requestKey{}).(string); ok {
		return id.SubTraceID(rid, action.String())
	}

	return id.GenTraceID()
}

// auditor appends committed operations to the transaction log
type auditor struct {
	store  core.TransactionStore
	blocks core.IBlockService
}

// extraOf top level fields of v keyed by their json names
func extraOf(v interface{}) core.TransactionExtraData {
	extra := core.NewTransactionExtra()
	for _, f := range structs.Fields(v) {
		if !f.IsExported() {
			continue
		}

		name := strings.Split(f.Tag("json"), ",")[0]
		if name == "" || name == "-" {
			name = f.Name()
		}

		extra.Put(name, f.Value())
	}

	return extra
}

func (a *auditor) record(ctx context.Context, action core.ActionType, caller, target string, amount decimal.Decimal, extra core.TransactionExtraData) {
	if a.store == nil {
		return
	}

	log := logger.FromContext(ctx)

	block, err := a.blocks.CurrentBlock(ctx)
	if err != nil {
		log.WithError(err).Errorln("blocks.CurrentBlock")
	}

	tx := &core.Transaction{
		TraceID: traceID(ctx, action),
		Action:  action,
		Caller:  caller,
		Target:  target,
		Amount:  amount,
		Block:   block,
	}
	tx.SetExtraData(extra)

	// the ledger already committed, a lost audit row is only logged
	if err := a.store.Create(ctx, tx); err != nil {
		log.WithError(err).Errorln("transactions.Create", action)
	}
}
