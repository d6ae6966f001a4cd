package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Vault lending vault state
type Vault struct {
	Symbol          string          `json:"symbol,omitempty"`
	Address         string          `json:"address,omitempty"`
	BaseToken       string          `json:"base_token,omitempty"`
	ShareToken      string          `json:"share_token,omitempty"`
	DebtToken       string          `json:"debt_token,omitempty"`
	DebtPoolID      int64           `json:"debt_pool_id"`
	TotalShares     decimal.Decimal `json:"total_shares"`
	TotalDebt       decimal.Decimal `json:"total_debt"`
	TotalDebtShares decimal.Decimal `json:"total_debt_shares"`
	ReservePool     decimal.Decimal `json:"reserve_pool"`
	LastAccrueBlock int64           `json:"last_accrue_block"`
	NextPositionID  uint64          `json:"next_position_id"`
}

// HasDebtPool whether debt tokens are staked in fairlaunch
func (v *Vault) HasDebtPool() bool {
	return v.DebtToken != ""
}

// PositionStatus position status
type PositionStatus int

const (
	_ PositionStatus = iota
	// PositionStatusOpen open
	PositionStatusOpen
	// PositionStatusClosed closed by owner
	PositionStatusClosed
	// PositionStatusKilled liquidated
	PositionStatusKilled
)

func (s PositionStatus) String() string {
	switch s {
	case PositionStatusOpen:
		return "open"
	case PositionStatusClosed:
		return "closed"
	case PositionStatusKilled:
		return "killed"
	default:
		return "unknown"
	}
}

// Position borrower position
type Position struct {
	ID           uint64          `json:"id"`
	Vault        string          `json:"vault,omitempty"`
	Owner        string          `json:"owner,omitempty"`
	Worker       string          `json:"worker,omitempty"`
	DebtShare    decimal.Decimal `json:"debt_share"`
	Status       PositionStatus  `json:"status"`
	CreatedBlock int64           `json:"created_block"`
	UpdatedBlock int64           `json:"updated_block"`
}

// IsOpen position is active
func (p *Position) IsOpen() bool {
	return p.Status == PositionStatusOpen
}

// WorkInput vault work request
type WorkInput struct {
	PositionID uint64          `json:"position_id"`
	Worker     string          `json:"worker"`
	Principal  decimal.Decimal `json:"principal"`
	Borrow     decimal.Decimal `json:"borrow"`
	MaxReturn  decimal.Decimal `json:"max_return"`
	Payload    []byte          `json:"payload,omitempty"`
}

// WorkResult vault work result
type WorkResult struct {
	Position *Position       `json:"position"`
	Debt     decimal.Decimal `json:"debt"`
	Returned decimal.Decimal `json:"returned"`
}

// KillResult vault kill result
type KillResult struct {
	Position *Position       `json:"position"`
	Debt     decimal.Decimal `json:"debt"`
	Proceeds decimal.Decimal `json:"proceeds"`
	Prize    decimal.Decimal `json:"prize"`
	Left     decimal.Decimal `json:"left"`
	Loss     decimal.Decimal `json:"loss"`
}

// PositionInfo position health and debt
type PositionInfo struct {
	Position *Position       `json:"position"`
	Health   decimal.Decimal `json:"health"`
	Debt     decimal.Decimal `json:"debt"`
}

// IVaultService lending vault
type IVaultService interface {
	Symbol() string
	Vault(ctx context.Context) (*Vault, error)
	TotalToken(ctx context.Context) (decimal.Decimal, error)
	Utilization(ctx context.Context) (decimal.Decimal, error)
	Accrue(ctx context.Context) error
	Deposit(ctx context.Context, caller string, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, caller string, shares decimal.Decimal) (decimal.Decimal, error)
	Work(ctx context.Context, caller string, input WorkInput) (*WorkResult, error)
	Kill(ctx context.Context, caller string, positionID uint64) (*KillResult, error)
	Position(ctx context.Context, positionID uint64) (*Position, error)
	PositionInfo(ctx context.Context, positionID uint64) (*PositionInfo, error)
	PositionsOf(ctx context.Context, owner string) ([]*Position, error)
	Positions(ctx context.Context) ([]*Position, error)
	Killable(ctx context.Context) ([]*PositionInfo, error)
	WithdrawReserve(ctx context.Context, caller, to string, amount decimal.Decimal) error
	ReduceReserve(ctx context.Context, caller string, amount decimal.Decimal) error
}

// VaultParams vault wide risk params
type VaultParams struct {
	MinDebtSize    decimal.Decimal `json:"min_debt_size"`
	ReservePoolBps int64           `json:"reserve_pool_bps"`
	KillPrizeBps   int64           `json:"kill_prize_bps"`
	MaxPriceAge    int64           `json:"max_price_age"` // seconds
}

// WorkerRisk per worker risk params, factors in bps
type WorkerRisk struct {
	AcceptDebt   bool  `json:"accept_debt"`
	WorkFactor   int64 `json:"work_factor"`
	KillFactor   int64 `json:"kill_factor"`
	MaxPriceDiff int64 `json:"max_price_diff"`
}

// IVaultConfigService vault config lookups
type IVaultConfigService interface {
	Params(ctx context.Context) (*VaultParams, error)
	SetParams(ctx context.Context, caller string, params VaultParams) error
	Worker(ctx context.Context, name string) (Worker, error)
	RiskParams(ctx context.Context, worker string) (*WorkerRisk, error)
	SetWorker(ctx context.Context, caller string, worker string, risk WorkerRisk) error
	AcceptDebt(ctx context.Context, worker string) (bool, error)
	WorkFactor(ctx context.Context, worker string) (int64, error)
	KillFactor(ctx context.Context, worker string) (int64, error)
	IsStable(ctx context.Context, worker string) (bool, error)
	InterestRate(ctx context.Context, utilization decimal.Decimal) decimal.Decimal
	Accrue(ctx context.Context, principal decimal.Decimal, elapsed int64, utilization decimal.Decimal) decimal.Decimal
}

// Worker strategy executor deploying position funds into a farm
type Worker interface {
	Address() string
	Tokens() (base, farm string)
	// Health base token value of the position
	Health(ctx context.Context, positionID uint64) (decimal.Decimal, error)
	// Work funds are already transferred to Address()
	Work(ctx context.Context, positionID uint64, owner string, debt decimal.Decimal, payload []byte) error
	// Liquidate sends all proceeds back to the vault
	Liquidate(ctx context.Context, positionID uint64) (decimal.Decimal, error)
	IsPriceStable(ctx context.Context, oraclePrice decimal.Decimal, maxPriceDiff int64) (bool, error)
}
