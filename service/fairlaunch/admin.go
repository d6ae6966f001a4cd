package fairlaunch

import (
	"context"

	"huski/core"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// SetBonus opens a bonus window from the current block to endBlock
func (s *service) SetBonus(ctx context.Context, caller string, multiplier, endBlock, lockBps int64) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		if endBlock <= current || multiplier < 1 || lockBps < 0 || lockBps > 10000 {
			return core.ErrInvalidAmount
		}

		state := s.touchState(ctx)
		state.BonusMultiplier = multiplier
		state.BonusStartBlock = current
		state.BonusEndBlock = endBlock
		state.BonusLockBps = lockBps

		logger.FromContext(ctx).Infof("fairlaunch: bonus x%d until block %d, lock %d bps", multiplier, endBlock, lockBps)
		return nil
	})
}

// SetRewardPerBlock settles every pool at the old rate first
func (s *service) SetRewardPerBlock(ctx context.Context, caller string, amount decimal.Decimal) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if err := s.massUpdate(ctx); err != nil {
			return err
		}

		s.touchState(ctx).RewardPerBlock = amount
		logger.FromContext(ctx).Infof("fairlaunch: reward per block %s", amount)
		return nil
	})
}

// SetDev hand the dev fee over, callable by the current dev only
func (s *service) SetDev(ctx context.Context, caller, dev string) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.state.Dev {
			return core.ErrUnauthorized
		}

		s.touchState(ctx).Dev = dev
		return nil
	})
}
