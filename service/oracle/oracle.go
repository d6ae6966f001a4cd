package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/number"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

const (
	feedersKey  = "oracle/feeders"
	pricePrefix = "oracle/price/"
)

// Oracle feeder set prices
type Oracle struct {
	exec    *txn.Executor
	owner   string
	feeders map[string]bool
	prices  map[string]*core.PriceData
	now     func() time.Time
}

// New new oracle, owner manages feeders and may feed prices itself
func New(exec *txn.Executor, owner string, feeders ...string) *Oracle {
	o := &Oracle{
		exec:    exec,
		owner:   owner,
		feeders: map[string]bool{},
		prices:  map[string]*core.PriceData{},
		now:     time.Now,
	}

	for _, f := range feeders {
		o.feeders[f] = true
	}

	return o
}

// SetClock replace the wall clock stamping prices
func (o *Oracle) SetClock(now func() time.Time) {
	o.now = now
}

func priceKey(token0, token1 string) string {
	return fmt.Sprintf("%s%s/%s", pricePrefix, token0, token1)
}

// Load restore persisted feeders and prices
func (o *Oracle) Load(ctx context.Context) error {
	var feeders []string
	ok, err := o.exec.Load(ctx, feedersKey, &feeders)
	if err != nil {
		return err
	}

	if ok {
		o.feeders = map[string]bool{}
		for _, f := range feeders {
			o.feeders[f] = true
		}
	}

	return o.exec.Scan(ctx, pricePrefix, func(key string, data []byte) error {
		var p core.PriceData
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}

		o.prices[priceKey(p.Token0, p.Token1)] = &p
		return nil
	})
}

func (o *Oracle) GetPrice(ctx context.Context, token0, token1 string) (decimal.Decimal, time.Time, error) {
	var (
		price     decimal.Decimal
		updatedAt time.Time
	)

	err := o.exec.View(ctx, func(ctx context.Context) error {
		if token0 == token1 {
			price, updatedAt = decimal.New(1, 0), o.now()
			return nil
		}

		if p, ok := o.prices[priceKey(token0, token1)]; ok {
			price, updatedAt = p.Price, p.UpdatedAt
			return nil
		}

		if p, ok := o.prices[priceKey(token1, token0)]; ok && p.Price.IsPositive() {
			price = number.Div(decimal.New(1, 0), p.Price, huski.Precision)
			updatedAt = p.UpdatedAt
			return nil
		}

		return core.ErrInvalidPrice
	})

	return price, updatedAt, err
}

func (o *Oracle) SetPrices(ctx context.Context, caller string, prices []*core.PriceData) error {
	log := logger.FromContext(ctx).WithField("caller", caller)

	return o.exec.Run(ctx, func(ctx context.Context) error {
		if caller != o.owner && !o.feeders[caller] {
			return core.ErrUnauthorized
		}

		for _, p := range prices {
			if !p.Price.IsPositive() || p.Token0 == "" || p.Token1 == "" || p.Token0 == p.Token1 {
				log.Errorf("oracle.SetPrices: bad price %s/%s %s", p.Token0, p.Token1, p.Price)
				return core.ErrInvalidPrice
			}

			data := *p
			if data.UpdatedAt.IsZero() {
				data.UpdatedAt = o.now()
			}

			key := priceKey(p.Token0, p.Token1)
			prev, existed := o.prices[key]
			txn.OnRollback(ctx, func() {
				if existed {
					o.prices[key] = prev
				} else {
					delete(o.prices, key)
				}
			})

			o.prices[key] = &data
			txn.Stage(ctx, key, func() interface{} { return o.prices[key] })
		}

		return nil
	})
}

func (o *Oracle) SetFeeder(ctx context.Context, caller, feeder string, ok bool) error {
	return o.exec.Run(ctx, func(ctx context.Context) error {
		if caller != o.owner {
			return core.ErrUnauthorized
		}

		prev := o.feeders[feeder]
		txn.OnRollback(ctx, func() {
			if prev {
				o.feeders[feeder] = true
			} else {
				delete(o.feeders, feeder)
			}
		})

		if ok {
			o.feeders[feeder] = true
		} else {
			delete(o.feeders, feeder)
		}

		txn.Stage(ctx, feedersKey, func() interface{} { return o.feederList() })
		return nil
	})
}

func (o *Oracle) feederList() []string {
	feeders := make([]string, 0, len(o.feeders))
	for f := range o.feeders {
		feeders = append(feeders, f)
	}
	sort.Strings(feeders)
	return feeders
}

// Feeders current feeders
func (o *Oracle) Feeders(ctx context.Context) ([]string, error) {
	var feeders []string
	err := o.exec.View(ctx, func(ctx context.Context) error {
		feeders = o.feederList()
		return nil
	})

	return feeders, err
}

func (o *Oracle) Prices(ctx context.Context) ([]*core.PriceData, error) {
	var prices []*core.PriceData
	err := o.exec.View(ctx, func(ctx context.Context) error {
		keys := make([]string, 0, len(o.prices))
		for key := range o.prices {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			p := *o.prices[key]
			prices = append(prices, &p)
		}
		return nil
	})

	return prices, err
}
