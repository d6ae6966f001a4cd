package interest

import (
	"huski/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// Precision per block rate precision
	Precision int32 = 18
	// AmountPrecision accrued interest precision
	AmountPrecision int32 = 18
)

var (
	// SecondsPerYear seconds of a 365 days year
	SecondsPerYear int64 = 365 * 24 * 60 * 60
	// BlocksPerYear blocks per year at 3 seconds per block
	BlocksPerYear = BlocksPerYearOf(3)

	one = decimal.NewFromInt(1)
)

// BlocksPerYearOf blocks per year of the block time
func BlocksPerYearOf(secondsPerBlock int64) decimal.Decimal {
	if secondsPerBlock <= 0 {
		secondsPerBlock = 1
	}

	return decimal.NewFromInt(SecondsPerYear / secondsPerBlock)
}

// Model maps utilization to a per block borrow rate,
// must be monotonic non-decreasing in utilization
type Model interface {
	RatePerBlock(utilization decimal.Decimal) decimal.Decimal
	Blocks() decimal.Decimal
}

// Accrue interest of principal over elapsed blocks, rounded up
func Accrue(m Model, principal decimal.Decimal, elapsed int64, utilization decimal.Decimal) decimal.Decimal {
	if elapsed <= 0 || !principal.IsPositive() {
		return decimal.Zero
	}

	rate := m.RatePerBlock(utilization)
	interest := principal.Mul(rate).Mul(decimal.NewFromInt(elapsed))
	return number.Ceil(interest, AmountPrecision)
}

// AnnualRate per block rate scaled to a year
func AnnualRate(m Model, utilization decimal.Decimal) decimal.Decimal {
	return m.RatePerBlock(utilization).Mul(m.Blocks())
}

// Utilization debt / (debt + floating)
func Utilization(debt, floating decimal.Decimal) decimal.Decimal {
	total := debt.Add(floating)
	if !total.IsPositive() {
		return decimal.Zero
	}

	return clamp(number.Div(debt, total, Precision))
}

func perBlock(annual, blocks decimal.Decimal) decimal.Decimal {
	return number.Div(annual, blocks, Precision)
}

func clamp(u decimal.Decimal) decimal.Decimal {
	if u.IsNegative() {
		return decimal.Zero
	}

	if u.GreaterThan(one) {
		return one
	}

	return u
}
