package fairlaunch

import (
	"context"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/metrics"
	"huski/pkg/number"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

func (s *service) PendingReward(ctx context.Context, pid int64, addr string) (decimal.Decimal, error) {
	pending := decimal.Zero
	err := s.exec.View(ctx, func(ctx context.Context) error {
		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		user := s.user(pid, addr)
		a := s.accrue(pool, current)
		pending = huski.Pending(user.Amount, a.acc, user.RewardDebt)
		return nil
	})

	return pending, err
}

func (s *service) stakeToken(ctx context.Context, pool *core.Pool) (core.IToken, error) {
	return s.bank.Token(ctx, pool.StakeToken)
}

// settle pays the pending reward of user to `to` and locks the bonus part
func (s *service) settle(ctx context.Context, pool *core.Pool, user *core.PoolUser, to string) (*core.HarvestResult, error) {
	pending := huski.Pending(user.Amount, pool.AccRewardPerShare, user.RewardDebt)
	bonus := huski.Pending(user.Amount, pool.AccBonusPerShare, user.BonusDebt)
	locked := number.Min(huski.LockAmount(bonus, s.state.BonusLockBps), pending)

	if pending.IsPositive() {
		if err := s.reward.Transfer(ctx, s.state.Address, to, pending); err != nil {
			return nil, err
		}

		if err := s.reward.Lock(ctx, s.state.Address, to, locked); err != nil {
			return nil, err
		}
	}

	return &core.HarvestResult{Reward: pending, Locked: locked}, nil
}

// checkDebtFunder debt token stakes are funded by the issuing vault only
func (s *service) checkDebtFunder(ctx context.Context, token core.IToken, caller string) error {
	info, err := token.Info(ctx)
	if err != nil {
		return err
	}

	if info.Kind == core.TokenKindDebt && info.Owner != caller {
		return core.ErrBadFunder
	}

	return nil
}

func resetDebt(pool *core.Pool, user *core.PoolUser) {
	user.RewardDebt = huski.RewardDebt(user.Amount, pool.AccRewardPerShare)
	user.BonusDebt = huski.RewardDebt(user.Amount, pool.AccBonusPerShare)
}

func (s *service) Deposit(ctx context.Context, caller, beneficiary string, pid int64, amount decimal.Decimal) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		// only a positive deposit claims the funder
		if u := s.user(pid, beneficiary); u.Funder.Claimed && u.Funder.Address != caller {
			return core.ErrBadFunder
		} else if !u.Funder.Claimed && !amount.IsPositive() {
			return core.ErrInvalidAmount
		}

		token, err := s.stakeToken(ctx, pool)
		if err != nil {
			return err
		}

		if err := s.checkDebtFunder(ctx, token, caller); err != nil {
			return err
		}

		if err := s.update(ctx, pool); err != nil {
			return err
		}

		user := s.touchUser(ctx, pid, beneficiary)
		if user.Amount.IsPositive() {
			if _, err := s.settle(ctx, pool, user, beneficiary); err != nil {
				return err
			}
		}

		if !user.Funder.Claimed {
			user.Funder = core.Funder{Claimed: true, Address: caller}
		}

		if err := token.Transfer(ctx, caller, s.state.Address, amount); err != nil {
			return err
		}

		user.Amount = user.Amount.Add(amount)
		resetDebt(pool, user)
		s.touchPool(ctx, pool).TotalStaked = pool.TotalStaked.Add(amount)
		return nil
	})

	metrics.Ledger().ObserveOperation("fairlaunch", "deposit", err)
	if err == nil {
		logger.FromContext(ctx).WithField("pool", pid).Infof("%s deposit %s for %s", caller, amount, beneficiary)
	}

	return err
}

func (s *service) Withdraw(ctx context.Context, caller, beneficiary string, pid int64, amount decimal.Decimal) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		_, err := s.withdraw(ctx, caller, beneficiary, pid, &amount)
		return err
	})

	metrics.Ledger().ObserveOperation("fairlaunch", "withdraw", err)
	if err == nil {
		logger.FromContext(ctx).WithField("pool", pid).Infof("%s withdraw %s of %s", caller, amount, beneficiary)
	}

	return err
}

// WithdrawAll withdraw the whole stake of beneficiary
func (s *service) WithdrawAll(ctx context.Context, caller, beneficiary string, pid int64) error {
	var amount decimal.Decimal
	err := s.exec.Run(ctx, func(ctx context.Context) (err error) {
		amount, err = s.withdraw(ctx, caller, beneficiary, pid, nil)
		return err
	})

	metrics.Ledger().ObserveOperation("fairlaunch", "withdraw", err)
	if err == nil {
		logger.FromContext(ctx).WithField("pool", pid).Infof("%s withdraw all %s of %s", caller, amount, beneficiary)
	}

	return err
}

// withdraw the whole stake if amount is nil
func (s *service) withdraw(ctx context.Context, caller, beneficiary string, pid int64, amount *decimal.Decimal) (decimal.Decimal, error) {
	pool, err := s.pool(pid)
	if err != nil {
		return decimal.Zero, err
	}

	staked := s.user(pid, beneficiary)
	if !staked.Funder.Is(caller) {
		return decimal.Zero, core.ErrNotFunder
	}

	value := staked.Amount
	if amount != nil {
		value = *amount
	}

	if value.GreaterThan(staked.Amount) {
		return decimal.Zero, core.ErrInvalidAmount
	}

	if err := s.update(ctx, pool); err != nil {
		return decimal.Zero, err
	}

	user := s.touchUser(ctx, pid, beneficiary)
	if _, err := s.settle(ctx, pool, user, beneficiary); err != nil {
		return decimal.Zero, err
	}

	user.Amount = user.Amount.Sub(value)
	resetDebt(pool, user)
	s.touchPool(ctx, pool).TotalStaked = pool.TotalStaked.Sub(value)

	token, err := s.stakeToken(ctx, pool)
	if err != nil {
		return decimal.Zero, err
	}

	return value, token.Transfer(ctx, s.state.Address, caller, value)
}

// Harvest pays the caller's own pending reward
func (s *service) Harvest(ctx context.Context, caller string, pid int64) (*core.HarvestResult, error) {
	var result *core.HarvestResult
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		if err := s.update(ctx, pool); err != nil {
			return err
		}

		if u := s.user(pid, caller); !huski.Pending(u.Amount, pool.AccRewardPerShare, u.RewardDebt).IsPositive() {
			return core.ErrNothingToHarvest
		}

		user := s.touchUser(ctx, pid, caller)
		if result, err = s.settle(ctx, pool, user, caller); err != nil {
			return err
		}

		resetDebt(pool, user)
		return nil
	})

	metrics.Ledger().ObserveOperation("fairlaunch", "harvest", err)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("pool", pid).Infof("%s harvest %s, locked %s", caller, result.Reward, result.Locked)
	return result, nil
}

// EmergencyWithdraw returns the whole stake to the funder and forfeits pending rewards
func (s *service) EmergencyWithdraw(ctx context.Context, caller, beneficiary string, pid int64) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		if !s.user(pid, beneficiary).Funder.Is(caller) {
			return core.ErrNotFunder
		}

		user := s.touchUser(ctx, pid, beneficiary)
		amount := user.Amount
		user.Amount = decimal.Zero
		user.RewardDebt = decimal.Zero
		user.BonusDebt = decimal.Zero
		s.touchPool(ctx, pool).TotalStaked = pool.TotalStaked.Sub(amount)

		token, err := s.stakeToken(ctx, pool)
		if err != nil {
			return err
		}

		return token.Transfer(ctx, s.state.Address, caller, amount)
	})

	metrics.Ledger().ObserveOperation("fairlaunch", "emergency_withdraw", err)
	if err == nil {
		logger.FromContext(ctx).WithField("pool", pid).Warnf("%s emergency withdraw of %s", caller, beneficiary)
	}

	return err
}
