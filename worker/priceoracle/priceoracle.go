package priceoracle

import (
	"context"
	"sync"

	"huski/core"
	"huski/pkg/concurrency"
	"huski/worker"

	"github.com/fox-one/pkg/logger"
)

// maxPulls concurrent ticker requests
const maxPulls = 8

// Worker pulls tickers of the configured pairs and feeds them to the oracle
type Worker struct {
	worker.BaseJob
	feeder  string
	pairs   []core.PricePair
	tickers core.IPriceTickerService
	oracle  core.IOracleService
}

// New new price feeder
func New(
	location, spec, feeder string,
	pairs []core.PricePair,
	tickers core.IPriceTickerService,
	oracle core.IOracleService,
) (*Worker, error) {
	w := &Worker{
		feeder:  feeder,
		pairs:   pairs,
		tickers: tickers,
		oracle:  oracle,
	}

	if spec == "" {
		spec = "@every 1m"
	}

	if err := w.Init("priceoracle", location, spec, w.onWork); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Worker) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if len(w.pairs) == 0 {
		log.Debugln("no price pair configured")
		return nil
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		limit  = concurrency.NewGoLimit(maxPulls)
		prices = make([]*core.PriceData, 0, len(w.pairs))
	)

	for _, pair := range w.pairs {
		wg.Add(1)
		limit.Add()
		go func(pair core.PricePair) {
			defer wg.Done()
			defer limit.Done()

			ticker, err := w.tickers.PullPriceTicker(ctx, pair.Token0, pair.Token1)
			if err != nil {
				log.WithError(err).Errorln("pull price ticker", pair.Token0, pair.Token1)
				return
			}

			if !ticker.Price.IsPositive() {
				log.Errorln("invalid ticker price:", ticker.Symbol, ":", ticker.Price)
				return
			}

			mu.Lock()
			prices = append(prices, &core.PriceData{
				Token0: pair.Token0,
				Token1: pair.Token1,
				Price:  ticker.Price,
			})
			mu.Unlock()
		}(pair)
	}

	wg.Wait()

	if len(prices) == 0 {
		return nil
	}

	if err := w.oracle.SetPrices(ctx, w.feeder, prices); err != nil {
		log.WithError(err).Errorln("oracle.SetPrices")
		return err
	}

	return nil
}
