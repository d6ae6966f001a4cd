package stronk

import (
	"context"
	"encoding/json"

	"huski/core"
	"huski/pkg/address"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Options stronk settings
type Options struct {
	// Hodl is open before HodlableEndBlock
	HodlableEndBlock int64
	// Unhodl is open after LockEndBlock and the reward release end
	LockEndBlock int64
}

// Service stronk engine
type Service interface {
	core.IStronkService
	Load(ctx context.Context) error
}

type service struct {
	exec    *txn.Executor
	reward  core.ILockableToken
	stronk  core.IToken
	symbol  string
	address string
	state   core.Stronk
	hodlers map[string]*core.Hodler
}

// Address module address escrowing the hodled reward tokens, it must own
// the stronk token
func Address(symbol string) string {
	return address.Module("stronk/" + symbol)
}

// New new stronk engine wrapping reward into the stronk token
func New(exec *txn.Executor, reward core.ILockableToken, stronk core.IToken, opt Options) Service {
	symbol := stronk.Symbol()
	return &service{
		exec:    exec,
		reward:  reward,
		stronk:  stronk,
		symbol:  symbol,
		address: Address(symbol),
		state: core.Stronk{
			Symbol:           symbol,
			RewardToken:      reward.Symbol(),
			Address:          Address(symbol),
			HodlableEndBlock: opt.HodlableEndBlock,
			LockEndBlock:     opt.LockEndBlock,
			TotalHodl:        decimal.Zero,
		},
		hodlers: map[string]*core.Hodler{},
	}
}

func (s *service) stateKey() string {
	return "stronk/" + s.symbol + "/state"
}

func (s *service) hodlerPrefix() string {
	return "stronk/" + s.symbol + "/hodler/"
}

func (s *service) Load(ctx context.Context) error {
	var state core.Stronk
	ok, err := s.exec.Load(ctx, s.stateKey(), &state)
	if err != nil {
		return err
	}

	if ok {
		s.state = state
	}

	return s.exec.Scan(ctx, s.hodlerPrefix(), func(_ string, data []byte) error {
		var h core.Hodler
		if err := json.Unmarshal(data, &h); err != nil {
			return err
		}

		// rolled back records are staged as null
		if h.Address == "" {
			return nil
		}

		s.hodlers[h.Address] = &h
		return nil
	})
}

func (s *service) touchState(ctx context.Context) *core.Stronk {
	prev := s.state
	txn.OnRollback(ctx, func() { s.state = prev })
	txn.Stage(ctx, s.stateKey(), func() interface{} { return s.state })
	return &s.state
}

func (s *service) Symbol() string {
	return s.symbol
}

func (s *service) Info(ctx context.Context) (*core.Stronk, error) {
	var state core.Stronk
	err := s.exec.View(ctx, func(ctx context.Context) error {
		state = s.state
		return nil
	})

	return &state, err
}

func (s *service) Hodler(ctx context.Context, addr string) (*core.Hodler, error) {
	h := &core.Hodler{Address: addr, Amount: decimal.Zero}
	err := s.exec.View(ctx, func(ctx context.Context) error {
		if v, ok := s.hodlers[addr]; ok {
			*h = *v
		}
		return nil
	})

	return h, err
}

func (s *service) Hodl(ctx context.Context, caller string) (decimal.Decimal, error) {
	amount := decimal.Zero
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		if current >= s.state.HodlableEndBlock {
			return core.ErrHodlClosed
		}

		if _, ok := s.hodlers[caller]; ok {
			return core.ErrAlreadyHodl
		}

		if amount, err = s.reward.TransferAll(ctx, caller, s.address); err != nil {
			return err
		}

		if !amount.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := s.stronk.Mint(ctx, s.address, caller, amount); err != nil {
			return err
		}

		s.hodlers[caller] = &core.Hodler{Address: caller, Amount: amount, Block: current}
		txn.OnRollback(ctx, func() { delete(s.hodlers, caller) })
		txn.Stage(ctx, s.hodlerPrefix()+caller, func() interface{} { return s.hodlers[caller] })

		state := s.touchState(ctx)
		state.TotalHodl = state.TotalHodl.Add(amount)
		return nil
	})

	metrics.Ledger().ObserveOperation("stronk", "hodl", err)
	if err == nil {
		logger.FromContext(ctx).WithField("stronk", s.symbol).Infof("%s hodl %s", caller, amount)
	}

	return amount, err
}

func (s *service) Unhodl(ctx context.Context, caller string) (decimal.Decimal, error) {
	amount := decimal.Zero
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		info, err := s.reward.Info(ctx)
		if err != nil {
			return err
		}

		if current <= s.state.LockEndBlock || current <= info.EndReleaseBlock {
			return core.ErrStillLocked
		}

		if amount, err = s.stronk.BalanceOf(ctx, caller); err != nil {
			return err
		}

		if !amount.IsPositive() {
			return core.ErrInsufficientBalance
		}

		// the escrow releases everything once the reward release ends
		if _, err := s.reward.Unlock(ctx, s.address); err != nil {
			return err
		}

		if err := s.stronk.Burn(ctx, s.address, caller, amount); err != nil {
			return err
		}

		if err := s.reward.Transfer(ctx, s.address, caller, amount); err != nil {
			return err
		}

		state := s.touchState(ctx)
		state.TotalHodl = state.TotalHodl.Sub(amount)
		return nil
	})

	metrics.Ledger().ObserveOperation("stronk", "unhodl", err)
	if err == nil {
		logger.FromContext(ctx).WithField("stronk", s.symbol).Infof("%s unhodl %s", caller, amount)
	}

	return amount, err
}
