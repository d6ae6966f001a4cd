package huski

import (
	"huski/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// AccPrecision precision of reward per share accumulators
	AccPrecision int32 = 12
)

// Multiplier splits blocks (from, to] into normal and bonus blocks,
// bonus blocks are bonusStart < k <= bonusEnd
func Multiplier(from, to, bonusStart, bonusEnd int64) (normal, bonus int64) {
	if to <= from {
		return 0, 0
	}

	lo, hi := max64(from, bonusStart), min64(to, bonusEnd)
	if hi > lo {
		bonus = hi - lo
	}

	return to - from - bonus, bonus
}

// BlockReward reward of a pool for the weighted blocks, and the part from bonus blocks
func BlockReward(rewardPerBlock decimal.Decimal, normal, bonus, multiplier, allocPoint, totalAllocPoint int64) (reward, bonusReward decimal.Decimal) {
	if totalAllocPoint <= 0 || allocPoint <= 0 {
		return decimal.Zero, decimal.Zero
	}

	if multiplier < 1 {
		multiplier = 1
	}

	alloc, total := decimal.NewFromInt(allocPoint), decimal.NewFromInt(totalAllocPoint)
	bonusBlocks := decimal.NewFromInt(bonus * multiplier)
	blocks := decimal.NewFromInt(normal).Add(bonusBlocks)

	reward = number.Div(blocks.Mul(rewardPerBlock).Mul(alloc), total, Precision)
	bonusReward = number.Div(bonusBlocks.Mul(rewardPerBlock).Mul(alloc), total, Precision)
	return reward, bonusReward
}

// AccPerShare accumulator increment of reward over staked
func AccPerShare(reward, totalStaked decimal.Decimal) decimal.Decimal {
	if !totalStaked.IsPositive() {
		return decimal.Zero
	}

	return number.Div(reward, totalStaked, AccPrecision)
}

// RewardDebt amount * acc rounded down
func RewardDebt(amount, acc decimal.Decimal) decimal.Decimal {
	return number.Floor(amount.Mul(acc), Precision)
}

// Pending reward accrued since the debt snapshot
func Pending(amount, acc, rewardDebt decimal.Decimal) decimal.Decimal {
	pending := RewardDebt(amount, acc).Sub(rewardDebt)
	if pending.IsNegative() {
		return decimal.Zero
	}

	return pending
}

// LockAmount part of bonus reward held in the lock schedule
func LockAmount(bonus decimal.Decimal, lockBps int64) decimal.Decimal {
	return number.MulBps(bonus, lockBps, Precision)
}

// Unlockable linear release of locked between lastUnlock and endRelease
func Unlockable(locked decimal.Decimal, current, lastUnlock, startRelease, endRelease int64) decimal.Decimal {
	if !locked.IsPositive() || current <= startRelease {
		return decimal.Zero
	}

	if current >= endRelease {
		return locked
	}

	if lastUnlock < startRelease {
		lastUnlock = startRelease
	}

	if current <= lastUnlock {
		return decimal.Zero
	}

	released := decimal.NewFromInt(current - lastUnlock)
	span := decimal.NewFromInt(endRelease - lastUnlock)
	return number.Div(locked.Mul(released), span, Precision)
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
