package vault

import (
	"context"

	"huski/core"
	"huski/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// WithdrawReserve moves amount of the reserve pool to to
func (s *service) WithdrawReserve(ctx context.Context, caller, to string, amount decimal.Decimal) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if !amount.IsPositive() || amount.GreaterThan(s.state.ReservePool) {
			return core.ErrInvalidAmount
		}

		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		if amount.GreaterThan(idle) {
			return core.ErrInsufficientLiquidity
		}

		state := s.touchState(ctx)
		state.ReservePool = state.ReservePool.Sub(amount)
		return s.base.Transfer(ctx, s.address, to, amount)
	})

	metrics.Ledger().ObserveOperation("vault", "withdraw_reserve", err)
	if err == nil {
		logger.FromContext(ctx).WithField("vault", s.symbol).Infof("withdraw reserve %s to %s", amount, to)
	}

	return err
}

// ReduceReserve releases amount of the reserve pool to share holders
func (s *service) ReduceReserve(ctx context.Context, caller string, amount decimal.Decimal) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if !amount.IsPositive() || amount.GreaterThan(s.state.ReservePool) {
			return core.ErrInvalidAmount
		}

		state := s.touchState(ctx)
		state.ReservePool = state.ReservePool.Sub(amount)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "reduce_reserve", err)
	return err
}
