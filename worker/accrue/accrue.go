package accrue

import (
	"context"

	"huski/core"
	"huski/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const checkpointKey = "huski_accrue_checkpoint"

// Worker accrues vault interest and mass updates reward pools
type Worker struct {
	worker.BaseJob
	blocks     core.IBlockService
	property   property.Store
	fairlaunch core.IFairLaunchService
	vaults     []core.IVaultService
}

// New new accrue worker
func New(
	location, spec string,
	blocks core.IBlockService,
	propertyStore property.Store,
	fairlaunch core.IFairLaunchService,
	vaults ...core.IVaultService,
) (*Worker, error) {
	w := &Worker{
		blocks:     blocks,
		property:   propertyStore,
		fairlaunch: fairlaunch,
		vaults:     vaults,
	}

	if spec == "" {
		spec = "@every 30s"
	}

	if err := w.Init("accrue", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	current, err := w.blocks.CurrentBlock(ctx)
	if err != nil {
		log.WithError(err).Errorln("blocks.CurrentBlock")
		return err
	}

	for _, v := range w.vaults {
		if err := v.Accrue(ctx); err != nil {
			log.WithError(err).Errorln("vault.Accrue", v.Symbol())
			return err
		}
	}

	if w.fairlaunch != nil {
		if err := w.fairlaunch.MassUpdatePools(ctx); err != nil {
			log.WithError(err).Errorln("fairlaunch.MassUpdatePools")
			return err
		}
	}

	if err := w.property.Save(ctx, checkpointKey, current); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
		return err
	}

	log.Debugf("accrued to block %d", current)
	return nil
}
