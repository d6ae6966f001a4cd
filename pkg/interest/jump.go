package interest

import (
	"github.com/shopspring/decimal"
)

// JumpRate base + multiplier * u up to kink, jump multiplier beyond
type JumpRate struct {
	BaseRate       decimal.Decimal
	Multiplier     decimal.Decimal
	JumpMultiplier decimal.Decimal
	Kink           decimal.Decimal
	BlocksPerYear  decimal.Decimal
}

func (m *JumpRate) RatePerBlock(utilization decimal.Decimal) decimal.Decimal {
	u := clamp(utilization)
	base := perBlock(m.BaseRate, m.BlocksPerYear)
	multiplier := perBlock(m.Multiplier, m.BlocksPerYear)

	if m.Kink.IsZero() || u.LessThanOrEqual(m.Kink) {
		return u.Mul(multiplier).Add(base).Truncate(Precision)
	}

	normalRate := m.Kink.Mul(multiplier).Add(base)
	excessUtil := u.Sub(m.Kink)
	return excessUtil.Mul(perBlock(m.JumpMultiplier, m.BlocksPerYear)).Add(normalRate).Truncate(Precision)
}

func (m *JumpRate) Blocks() decimal.Decimal {
	return m.BlocksPerYear
}
