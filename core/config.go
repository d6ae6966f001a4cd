package core

import (
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config huski config
type Config struct {
	App        App              `json:"app"`
	DB         db.Config        `json:"db"`
	LevelDB    LevelDB          `json:"leveldb"`
	Admins     []string         `json:"admins"`
	Token      RewardToken      `json:"token"`
	FairLaunch FairLaunchConfig `json:"fairlaunch"`
	Oracle     Oracle           `json:"oracle"`
	Timelock   Timelock         `json:"timelock"`
	Tokens     []string         `json:"tokens"`
	Vaults     []VaultEntry     `json:"vaults"`
	Keeper     Keeper           `json:"keeper"`
	Stronk     StronkEntry      `json:"stronk"`
}

// IsAdmin check if the address is admin
func (c *Config) IsAdmin(address string) bool {
	if len(c.Admins) <= 0 {
		return false
	}

	for _, a := range c.Admins {
		if a == address {
			return true
		}
	}

	return false
}

// App app config
type App struct {
	Genesis         int64  `json:"genesis"`
	SecondsPerBlock int64  `json:"seconds_per_block"`
	Location        string `json:"location"`
	Storage         string `json:"storage"`       // leveldb or db
	AuthMaxSkew     int64  `json:"auth_max_skew"` // seconds
}

// LevelDB leveldb config
type LevelDB struct {
	Path string `json:"path"`
}

// RewardToken lockable reward token config
type RewardToken struct {
	Symbol            string `json:"symbol"`
	StartReleaseBlock int64  `json:"start_release_block"`
	EndReleaseBlock   int64  `json:"end_release_block"`
}

// StronkEntry stronk token config, disabled without a symbol
type StronkEntry struct {
	Symbol           string `json:"symbol"`
	HodlableEndBlock int64  `json:"hodlable_end_block"`
	LockEndBlock     int64  `json:"lock_end_block"`
}

// FairLaunchConfig reward ledger config
type FairLaunchConfig struct {
	Dev            string          `json:"dev"`
	RewardPerBlock decimal.Decimal `json:"reward_per_block"`
	StartBlock     int64           `json:"start_block"`
	BonusLockBps   int64           `json:"bonus_lock_bps"`
	BonusEndBlock  int64           `json:"bonus_end_block"`
	DevFeeBps      int64           `json:"dev_fee_bps"`
}

// Oracle price oracle config
type Oracle struct {
	EndPoint    string      `json:"end_point"`
	Feeders     []string    `json:"feeders"`
	MaxPriceAge int64       `json:"max_price_age"` // seconds
	Pairs       []PricePair `json:"pairs"`
}

// PricePair a price pair the feeder pulls
type PricePair struct {
	Token0 string `json:"token0"`
	Token1 string `json:"token1"`
}

// Timelock timelock config
type Timelock struct {
	Delay       int64 `json:"delay"`        // seconds
	GracePeriod int64 `json:"grace_period"` // seconds
}

// Keeper keeper jobs config
type Keeper struct {
	Address       string `json:"address"`
	AccrueSpec    string `json:"accrue_spec"`
	LiquidateSpec string `json:"liquidate_spec"`
	PriceSpec     string `json:"price_spec"`
	ReinvestSpec  string `json:"reinvest_spec"`
}

// VaultEntry vault config entry
type VaultEntry struct {
	Symbol         string          `json:"symbol"`
	BaseToken      string          `json:"base_token"`
	MinDebtSize    decimal.Decimal `json:"min_debt_size"`
	ReservePoolBps int64           `json:"reserve_pool_bps"`
	KillPrizeBps   int64           `json:"kill_prize_bps"`
	DebtPoolAlloc  int64           `json:"debt_pool_alloc"`
	InterestModel  InterestModel   `json:"interest_model"`
	Workers        []WorkerEntry   `json:"workers"`
}

// InterestModel interest model config
type InterestModel struct {
	Kind       string          `json:"kind"` // flat, jump or triple
	APR        decimal.Decimal `json:"apr"`
	BaseRate   decimal.Decimal `json:"base_rate"`
	Multiplier decimal.Decimal `json:"multiplier"`
	JumpRate   decimal.Decimal `json:"jump_rate"`
	Kink       decimal.Decimal `json:"kink"`
}

// WorkerEntry worker config entry
type WorkerEntry struct {
	Name              string          `json:"name"`
	FarmToken         string          `json:"farm_token"`
	AcceptDebt        bool            `json:"accept_debt"`
	WorkFactor        int64           `json:"work_factor"`
	KillFactor        int64           `json:"kill_factor"`
	MaxPriceDiff      int64           `json:"max_price_diff"`
	ReinvestBountyBps int64           `json:"reinvest_bounty_bps"`
	YieldPerBlock     decimal.Decimal `json:"yield_per_block"`
}
