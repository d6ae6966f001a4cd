package interest

import (
	"huski/pkg/number"

	"github.com/shopspring/decimal"
)

// TripleSlope linear up to Ceil1, flat until Ceil2, steep after
type TripleSlope struct {
	Ceil1         decimal.Decimal
	Ceil2         decimal.Decimal
	Rate1         decimal.Decimal // annual rate reached at Ceil1, kept until Ceil2
	MaxRate       decimal.Decimal // annual rate at 100% utilization
	BlocksPerYear decimal.Decimal
}

// NewTripleSlope 20% APR at 60%, flat to 90%, 150% APR at 100% utilization
func NewTripleSlope(blocksPerYear decimal.Decimal) *TripleSlope {
	return &TripleSlope{
		Ceil1:         decimal.New(6, -1),
		Ceil2:         decimal.New(9, -1),
		Rate1:         decimal.New(2, -1),
		MaxRate:       decimal.New(15, -1),
		BlocksPerYear: blocksPerYear,
	}
}

func (m *TripleSlope) annual(u decimal.Decimal) decimal.Decimal {
	switch {
	case u.LessThan(m.Ceil1):
		return number.Div(u.Mul(m.Rate1), m.Ceil1, Precision)
	case u.LessThan(m.Ceil2):
		return m.Rate1
	default:
		span := one.Sub(m.Ceil2)
		if !span.IsPositive() {
			return m.MaxRate
		}

		extra := number.Div(u.Sub(m.Ceil2).Mul(m.MaxRate.Sub(m.Rate1)), span, Precision)
		return m.Rate1.Add(extra)
	}
}

func (m *TripleSlope) RatePerBlock(utilization decimal.Decimal) decimal.Decimal {
	return perBlock(m.annual(clamp(utilization)), m.BlocksPerYear)
}

func (m *TripleSlope) Blocks() decimal.Decimal {
	return m.BlocksPerYear
}
