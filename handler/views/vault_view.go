package views

import (
	"huski/core"

	"github.com/shopspring/decimal"
)

// Vault vault view
type Vault struct {
	*core.Vault
	TotalToken  decimal.Decimal `json:"total_token"`
	Utilization decimal.Decimal `json:"utilization"`
	// BorrowRate interest per block at the current utilization
	BorrowRate decimal.Decimal `json:"borrow_rate"`
	// SharePrice base tokens per share
	SharePrice decimal.Decimal `json:"share_price"`
}

// Position position view
type Position struct {
	ID           uint64          `json:"id"`
	Vault        string          `json:"vault"`
	Owner        string          `json:"owner"`
	Worker       string          `json:"worker"`
	Status       string          `json:"status"`
	Health       decimal.Decimal `json:"health"`
	Debt         decimal.Decimal `json:"debt"`
	DebtShare    decimal.Decimal `json:"debt_share"`
	CreatedBlock int64           `json:"created_block"`
	UpdatedBlock int64           `json:"updated_block"`
}

// PositionView position view with health and debt
func PositionView(info *core.PositionInfo) Position {
	p := info.Position
	return Position{
		ID:           p.ID,
		Vault:        p.Vault,
		Owner:        p.Owner,
		Worker:       p.Worker,
		Status:       p.Status.String(),
		Health:       info.Health,
		Debt:         info.Debt,
		DebtShare:    p.DebtShare,
		CreatedBlock: p.CreatedBlock,
		UpdatedBlock: p.UpdatedBlock,
	}
}
