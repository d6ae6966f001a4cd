package proposal

import (
	"github.com/shopspring/decimal"
)

// SetBonusReq start a bonus period
type SetBonusReq struct {
	Multiplier int64 `json:"multiplier"`
	EndBlock   int64 `json:"end_block"`
	LockBps    int64 `json:"lock_bps"`
}

// SetRewardPerBlockReq update emission
type SetRewardPerBlockReq struct {
	RewardPerBlock decimal.Decimal `json:"reward_per_block"`
}

// AddPoolReq add staking pool
type AddPoolReq struct {
	StakeToken string `json:"stake_token"`
	AllocPoint int64  `json:"alloc_point"`
	WithUpdate bool   `json:"with_update"`
}

// SetPoolReq update pool alloc point
type SetPoolReq struct {
	PoolID     int64 `json:"pool_id"`
	AllocPoint int64 `json:"alloc_point"`
	WithUpdate bool  `json:"with_update"`
}
