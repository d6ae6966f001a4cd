package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// FairLaunch reward ledger settings
type FairLaunch struct {
	Address         string          `json:"address,omitempty"`
	RewardToken     string          `json:"reward_token,omitempty"`
	Dev             string          `json:"dev,omitempty"`
	DevFeeBps       int64           `json:"dev_fee_bps"`
	RewardPerBlock  decimal.Decimal `json:"reward_per_block"`
	StartBlock      int64           `json:"start_block"`
	BonusMultiplier int64           `json:"bonus_multiplier"`
	BonusStartBlock int64           `json:"bonus_start_block"`
	BonusEndBlock   int64           `json:"bonus_end_block"`
	BonusLockBps    int64           `json:"bonus_lock_bps"`
	TotalAllocPoint int64           `json:"total_alloc_point"`
	PoolCount       int64           `json:"pool_count"`
}

// Pool staking pool
type Pool struct {
	ID                int64           `json:"id"`
	StakeToken        string          `json:"stake_token,omitempty"`
	AllocPoint        int64           `json:"alloc_point"`
	LastRewardBlock   int64           `json:"last_reward_block"`
	AccRewardPerShare decimal.Decimal `json:"acc_reward_per_share"`
	AccBonusPerShare  decimal.Decimal `json:"acc_bonus_per_share"`
	TotalStaked       decimal.Decimal `json:"total_staked"`
}

// Funder the address entitled to withdraw a stake
type Funder struct {
	Claimed bool   `json:"claimed"`
	Address string `json:"address,omitempty"`
}

// Is funder check
func (f Funder) Is(address string) bool {
	return f.Claimed && f.Address == address
}

// PoolUser stake of one beneficiary in a pool
type PoolUser struct {
	PoolID     int64           `json:"pool_id"`
	Address    string          `json:"address,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	RewardDebt decimal.Decimal `json:"reward_debt"`
	BonusDebt  decimal.Decimal `json:"bonus_debt"`
	Funder     Funder          `json:"funder"`
}

// HarvestResult reward settled to a beneficiary
type HarvestResult struct {
	Reward decimal.Decimal `json:"reward"`
	Locked decimal.Decimal `json:"locked"`
}

// IFairLaunchService block reward ledger
type IFairLaunchService interface {
	Address() string
	Settings(ctx context.Context) (*FairLaunch, error)
	Pools(ctx context.Context) ([]*Pool, error)
	Pool(ctx context.Context, pid int64) (*Pool, error)
	UserInfo(ctx context.Context, pid int64, user string) (*PoolUser, error)
	AddPool(ctx context.Context, caller string, allocPoint int64, stakeToken string, withUpdate bool) (*Pool, error)
	SetPool(ctx context.Context, caller string, pid, allocPoint int64, withUpdate bool) error
	UpdatePool(ctx context.Context, pid int64) error
	MassUpdatePools(ctx context.Context) error
	PendingReward(ctx context.Context, pid int64, user string) (decimal.Decimal, error)
	Deposit(ctx context.Context, caller, beneficiary string, pid int64, amount decimal.Decimal) error
	Withdraw(ctx context.Context, caller, beneficiary string, pid int64, amount decimal.Decimal) error
	WithdrawAll(ctx context.Context, caller, beneficiary string, pid int64) error
	Harvest(ctx context.Context, caller string, pid int64) (*HarvestResult, error)
	EmergencyWithdraw(ctx context.Context, caller, beneficiary string, pid int64) error
	SetBonus(ctx context.Context, caller string, multiplier, endBlock, lockBps int64) error
	SetRewardPerBlock(ctx context.Context, caller string, amount decimal.Decimal) error
	SetDev(ctx context.Context, caller, dev string) error
}
