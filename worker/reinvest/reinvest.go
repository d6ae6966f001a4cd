package reinvest

import (
	"context"

	"huski/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Reinvester worker compounding its farm yield
type Reinvester interface {
	Name() string
	Reinvest(ctx context.Context, caller string) (decimal.Decimal, error)
}

// Worker reinvest keeper
type Worker struct {
	worker.BaseJob
	keeper  string
	workers []Reinvester
}

// New new reinvest keeper, bounties are paid to keeper
func New(location, spec, keeper string, workers ...Reinvester) (*Worker, error) {
	w := &Worker{
		keeper:  keeper,
		workers: workers,
	}

	if spec == "" {
		spec = "@every 5m"
	}

	if err := w.Init("reinvest", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var failed error
	for _, r := range w.workers {
		bounty, err := r.Reinvest(ctx, w.keeper)
		if err != nil {
			log.WithError(err).Errorln("reinvest", r.Name())
			failed = err
			continue
		}

		if bounty.IsPositive() {
			log.Infof("reinvest %s, bounty %s", r.Name(), bounty)
		}
	}

	return failed
}
