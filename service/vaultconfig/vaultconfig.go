package vaultconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"huski/core"
	"huski/pkg/interest"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// DefaultMaxPriceAge oracle prices older than a day are stale
const DefaultMaxPriceAge int64 = 24 * 60 * 60

type service struct {
	exec    *txn.Executor
	symbol  string
	owner   string
	oracle  core.IOracleService
	model   interest.Model
	params  core.VaultParams
	workers map[string]core.Worker
	risks   map[string]*core.WorkerRisk
	now     func() time.Time
}

// Service vault config with worker registration
type Service interface {
	core.IVaultConfigService
	RegisterWorker(name string, worker core.Worker, risk core.WorkerRisk)
	Workers(ctx context.Context) (map[string]core.WorkerRisk, error)
	Load(ctx context.Context) error
	SetClock(now func() time.Time)
}

// New new vault config
func New(
	exec *txn.Executor,
	symbol string,
	owner string,
	oracle core.IOracleService,
	model interest.Model,
	params core.VaultParams,
) Service {
	if params.MaxPriceAge <= 0 {
		params.MaxPriceAge = DefaultMaxPriceAge
	}

	return &service{
		exec:    exec,
		symbol:  symbol,
		owner:   owner,
		oracle:  oracle,
		model:   model,
		params:  params,
		workers: map[string]core.Worker{},
		risks:   map[string]*core.WorkerRisk{},
		now:     time.Now,
	}
}

func (s *service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *service) paramsKey() string {
	return fmt.Sprintf("vault/%s/config", s.symbol)
}

func (s *service) workerPrefix() string {
	return fmt.Sprintf("vault/%s/worker/", s.symbol)
}

// RegisterWorker add a worker with its initial risk params, persisted params win on Load
func (s *service) RegisterWorker(name string, worker core.Worker, risk core.WorkerRisk) {
	s.workers[name] = worker
	s.risks[name] = &risk
}

func (s *service) Load(ctx context.Context) error {
	var params core.VaultParams
	ok, err := s.exec.Load(ctx, s.paramsKey(), &params)
	if err != nil {
		return err
	}

	if ok {
		s.params = params
	}

	return s.exec.Scan(ctx, s.workerPrefix(), func(key string, data []byte) error {
		name := strings.TrimPrefix(key, s.workerPrefix())
		if _, ok := s.workers[name]; !ok {
			logger.FromContext(ctx).Warnf("vaultconfig: risk params of unknown worker %s", name)
			return nil
		}

		var risk core.WorkerRisk
		if err := json.Unmarshal(data, &risk); err != nil {
			return err
		}

		s.risks[name] = &risk
		return nil
	})
}

func (s *service) Params(ctx context.Context) (*core.VaultParams, error) {
	var params core.VaultParams
	err := s.exec.View(ctx, func(ctx context.Context) error {
		params = s.params
		return nil
	})

	return &params, err
}

func (s *service) SetParams(ctx context.Context, caller string, params core.VaultParams) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if params.MinDebtSize.IsNegative() ||
			params.ReservePoolBps < 0 || params.ReservePoolBps > 10000 ||
			params.KillPrizeBps < 0 || params.KillPrizeBps > 10000 {
			return core.ErrInvalidAmount
		}

		if params.MaxPriceAge <= 0 {
			params.MaxPriceAge = DefaultMaxPriceAge
		}

		prev := s.params
		txn.OnRollback(ctx, func() { s.params = prev })
		s.params = params
		txn.Stage(ctx, s.paramsKey(), func() interface{} { return s.params })

		logger.FromContext(ctx).WithField("vault", s.symbol).Infof("set params %+v", params)
		return nil
	})
}

func (s *service) Worker(ctx context.Context, name string) (core.Worker, error) {
	w, ok := s.workers[name]
	if !ok {
		return nil, core.ErrWorkerNotFound
	}

	return w, nil
}

// Workers risk params by worker name
func (s *service) Workers(ctx context.Context) (map[string]core.WorkerRisk, error) {
	risks := map[string]core.WorkerRisk{}
	err := s.exec.View(ctx, func(ctx context.Context) error {
		for name, risk := range s.risks {
			risks[name] = *risk
		}
		return nil
	})

	return risks, err
}

func (s *service) RiskParams(ctx context.Context, worker string) (*core.WorkerRisk, error) {
	var risk core.WorkerRisk
	err := s.exec.View(ctx, func(ctx context.Context) error {
		r, ok := s.risks[worker]
		if !ok {
			return core.ErrWorkerNotFound
		}

		risk = *r
		return nil
	})

	return &risk, err
}

func (s *service) SetWorker(ctx context.Context, caller string, worker string, risk core.WorkerRisk) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if _, ok := s.workers[worker]; !ok {
			return core.ErrWorkerNotFound
		}

		if risk.WorkFactor < 0 || risk.WorkFactor > risk.KillFactor || risk.KillFactor > 10000 {
			return core.ErrBadWorkFactor
		}

		if risk.MaxPriceDiff < 10000 {
			return core.ErrInvalidAmount
		}

		prev, existed := s.risks[worker]
		txn.OnRollback(ctx, func() {
			if existed {
				s.risks[worker] = prev
			} else {
				delete(s.risks, worker)
			}
		})

		r := risk
		s.risks[worker] = &r
		txn.Stage(ctx, s.workerPrefix()+worker, func() interface{} { return s.risks[worker] })

		logger.FromContext(ctx).WithField("vault", s.symbol).Infof("set worker %s %+v", worker, risk)
		return nil
	})
}

func (s *service) AcceptDebt(ctx context.Context, worker string) (bool, error) {
	risk, err := s.RiskParams(ctx, worker)
	if err != nil {
		return false, err
	}

	return risk.AcceptDebt, nil
}

// WorkFactor requires a fresh and stable price
func (s *service) WorkFactor(ctx context.Context, worker string) (int64, error) {
	risk, err := s.RiskParams(ctx, worker)
	if err != nil {
		return 0, err
	}

	stable, err := s.IsStable(ctx, worker)
	if err != nil {
		return 0, err
	}

	if !stable {
		return 0, core.ErrUnstablePrice
	}

	return risk.WorkFactor, nil
}

func (s *service) KillFactor(ctx context.Context, worker string) (int64, error) {
	risk, err := s.RiskParams(ctx, worker)
	if err != nil {
		return 0, err
	}

	return risk.KillFactor, nil
}

// IsStable compares the worker pool price with the oracle price of (farm, base)
func (s *service) IsStable(ctx context.Context, worker string) (bool, error) {
	w, err := s.Worker(ctx, worker)
	if err != nil {
		return false, err
	}

	risk, err := s.RiskParams(ctx, worker)
	if err != nil {
		return false, err
	}

	params, err := s.Params(ctx)
	if err != nil {
		return false, err
	}

	base, farm := w.Tokens()
	price, updatedAt, err := s.oracle.GetPrice(ctx, farm, base)
	if err != nil {
		return false, err
	}

	if s.now().Sub(updatedAt) > time.Duration(params.MaxPriceAge)*time.Second {
		return false, core.ErrStalePrice
	}

	return w.IsPriceStable(ctx, price, risk.MaxPriceDiff)
}

func (s *service) InterestRate(ctx context.Context, utilization decimal.Decimal) decimal.Decimal {
	return s.model.RatePerBlock(utilization)
}

func (s *service) Accrue(ctx context.Context, principal decimal.Decimal, elapsed int64, utilization decimal.Decimal) decimal.Decimal {
	return interest.Accrue(s.model, principal, elapsed, utilization)
}
