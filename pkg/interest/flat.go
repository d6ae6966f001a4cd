package interest

import (
	"github.com/shopspring/decimal"
)

// Flat fixed annual rate regardless of utilization
type Flat struct {
	APR           decimal.Decimal
	BlocksPerYear decimal.Decimal
}

// NewFlat new flat model
func NewFlat(apr, blocksPerYear decimal.Decimal) *Flat {
	return &Flat{APR: apr, BlocksPerYear: blocksPerYear}
}

func (m *Flat) RatePerBlock(_ decimal.Decimal) decimal.Decimal {
	return perBlock(m.APR, m.BlocksPerYear)
}

func (m *Flat) Blocks() decimal.Decimal {
	return m.BlocksPerYear
}
