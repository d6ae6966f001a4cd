package liquidator

import (
	"context"
	"errors"

	"huski/core"
	"huski/worker"

	"github.com/fox-one/pkg/logger"
)

// Worker kills every killable position of the vaults, collecting the prize to keeper
type Worker struct {
	worker.BaseJob
	keeper string
	vaults []core.IVaultService
}

// New new liquidator
func New(location, spec, keeper string, vaults ...core.IVaultService) (*Worker, error) {
	w := &Worker{
		keeper: keeper,
		vaults: vaults,
	}

	if spec == "" {
		spec = "@every 10s"
	}

	if err := w.Init("liquidator", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	var failed error
	for _, v := range w.vaults {
		if err := w.liquidate(ctx, v); err != nil {
			failed = err
		}
	}

	return failed
}

func (w *Worker) liquidate(ctx context.Context, v core.IVaultService) error {
	log := logger.FromContext(ctx).WithField("vault", v.Symbol())

	positions, err := v.Killable(ctx)
	if err != nil {
		log.WithError(err).Errorln("vault.Killable")
		return err
	}

	for _, info := range positions {
		result, err := v.Kill(ctx, w.keeper, info.Position.ID)
		if err != nil {
			// raced by another keeper or healed in the meantime
			if errors.Is(err, core.ErrCannotLiquidate) {
				continue
			}

			// retried next round
			log.WithError(err).Errorln("vault.Kill", info.Position.ID)
			continue
		}

		log.Infof("killed position %d, prize %s, loss %s", info.Position.ID, result.Prize, result.Loss)
	}

	return nil
}
