package fairlaunch

import (
	"context"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/number"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

func (s *service) AddPool(ctx context.Context, caller string, allocPoint int64, stakeToken string, withUpdate bool) (*core.Pool, error) {
	var pool core.Pool
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if allocPoint < 0 {
			return core.ErrInvalidAmount
		}

		if _, ok := s.stakes[stakeToken]; ok {
			return core.ErrDuplicateStakeToken
		}

		if _, err := s.bank.Token(ctx, stakeToken); err != nil {
			return err
		}

		if withUpdate {
			if err := s.massUpdate(ctx); err != nil {
				return err
			}
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		lastRewardBlock := current
		if s.state.StartBlock > lastRewardBlock {
			lastRewardBlock = s.state.StartBlock
		}

		p := &core.Pool{
			ID:                int64(len(s.pools)),
			StakeToken:        stakeToken,
			AllocPoint:        allocPoint,
			LastRewardBlock:   lastRewardBlock,
			AccRewardPerShare: decimal.Zero,
			AccBonusPerShare:  decimal.Zero,
			TotalStaked:       decimal.Zero,
		}

		s.pools = append(s.pools, p)
		s.stakes[stakeToken] = p.ID
		txn.OnRollback(ctx, func() {
			s.pools = s.pools[:p.ID]
			delete(s.stakes, stakeToken)
		})
		s.touchPool(ctx, p)

		state := s.touchState(ctx)
		state.TotalAllocPoint += allocPoint
		state.PoolCount = int64(len(s.pools))

		pool = *p
		logger.FromContext(ctx).WithField("pool", p.ID).Infof("add pool %s with alloc point %d", stakeToken, allocPoint)
		return nil
	})

	return &pool, err
}

func (s *service) SetPool(ctx context.Context, caller string, pid, allocPoint int64, withUpdate bool) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if caller != s.owner {
			return core.ErrUnauthorized
		}

		if allocPoint < 0 {
			return core.ErrInvalidAmount
		}

		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		if withUpdate {
			if err := s.massUpdate(ctx); err != nil {
				return err
			}
		}

		state := s.touchState(ctx)
		state.TotalAllocPoint += allocPoint - pool.AllocPoint
		s.touchPool(ctx, pool).AllocPoint = allocPoint

		logger.FromContext(ctx).WithField("pool", pid).Infof("set alloc point %d", allocPoint)
		return nil
	})
}

func (s *service) UpdatePool(ctx context.Context, pid int64) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		return s.update(ctx, pool)
	})
}

func (s *service) MassUpdatePools(ctx context.Context) error {
	return s.exec.Run(ctx, s.massUpdate)
}

func (s *service) massUpdate(ctx context.Context) error {
	for _, pool := range s.pools {
		if err := s.update(ctx, pool); err != nil {
			return err
		}
	}

	return nil
}

// accrual reward of pool for (lastRewardBlock, current]
type accrual struct {
	reward      decimal.Decimal
	bonusReward decimal.Decimal
	acc         decimal.Decimal
	accBonus    decimal.Decimal
}

func (s *service) accrue(pool *core.Pool, current int64) accrual {
	a := accrual{
		reward:      decimal.Zero,
		bonusReward: decimal.Zero,
		acc:         pool.AccRewardPerShare,
		accBonus:    pool.AccBonusPerShare,
	}

	if current <= pool.LastRewardBlock || !pool.TotalStaked.IsPositive() {
		return a
	}

	normal, bonus := huski.Multiplier(pool.LastRewardBlock, current, s.state.BonusStartBlock, s.state.BonusEndBlock)
	a.reward, a.bonusReward = huski.BlockReward(s.state.RewardPerBlock, normal, bonus, s.state.BonusMultiplier, pool.AllocPoint, s.state.TotalAllocPoint)
	a.acc = a.acc.Add(huski.AccPerShare(a.reward, pool.TotalStaked))
	a.accBonus = a.accBonus.Add(huski.AccPerShare(a.bonusReward, pool.TotalStaked))
	return a
}

// update mints the rewards of the elapsed blocks and moves the accumulators
func (s *service) update(ctx context.Context, pool *core.Pool) error {
	current, err := txn.Block(ctx)
	if err != nil {
		return err
	}

	if current <= pool.LastRewardBlock {
		return nil
	}

	a := s.accrue(pool, current)

	if a.reward.IsPositive() {
		if err := s.reward.Mint(ctx, s.state.Address, s.state.Address, a.reward); err != nil {
			return err
		}

		if dev := s.state.Dev; dev != "" {
			devFee := number.MulBps(a.reward, s.state.DevFeeBps, huski.Precision)
			if err := s.reward.Mint(ctx, s.state.Address, dev, devFee); err != nil {
				return err
			}

			devBonus := number.MulBps(a.bonusReward, s.state.DevFeeBps, huski.Precision)
			if err := s.reward.Lock(ctx, s.state.Address, dev, huski.LockAmount(devBonus, s.state.BonusLockBps)); err != nil {
				return err
			}
		}
	}

	p := s.touchPool(ctx, pool)
	p.AccRewardPerShare = a.acc
	p.AccBonusPerShare = a.accBonus
	p.LastRewardBlock = current

	s.observe(p)
	return nil
}
