package cmd

import (
	"huski/worker"
	"huski/worker/accrue"
	"huski/worker/liquidator"
	"huski/worker/priceoracle"
	"huski/worker/reinvest"

	"github.com/fox-one/pkg/property"
)

func provideKeepers(n *node, propertyStore property.Store) ([]worker.IJob, error) {
	location := cfg.App.Location
	vaults := n.vaultServices()

	accrueJob, err := accrue.New(location, cfg.Keeper.AccrueSpec, n.blocks, propertyStore, n.fairlaunch, vaults...)
	if err != nil {
		return nil, err
	}

	jobs := []worker.IJob{accrueJob}

	if cfg.Keeper.Address == "" {
		return jobs, nil
	}

	liquidateJob, err := liquidator.New(location, cfg.Keeper.LiquidateSpec, cfg.Keeper.Address, vaults...)
	if err != nil {
		return nil, err
	}

	var reinvesters []reinvest.Reinvester
	for _, v := range n.vaults {
		for _, w := range v.workers {
			reinvesters = append(reinvesters, w)
		}
	}

	reinvestJob, err := reinvest.New(location, cfg.Keeper.ReinvestSpec, cfg.Keeper.Address, reinvesters...)
	if err != nil {
		return nil, err
	}

	jobs = append(jobs, liquidateJob, reinvestJob)

	if cfg.Oracle.EndPoint != "" && len(cfg.Oracle.Pairs) > 0 {
		priceJob, err := priceoracle.New(location, cfg.Keeper.PriceSpec, cfg.Keeper.Address, cfg.Oracle.Pairs, providePriceTickerService(), n.oracle)
		if err != nil {
			return nil, err
		}

		jobs = append(jobs, priceJob)
	}

	return jobs, nil
}
