package huski

import (
	"huski/pkg/number"

	"github.com/shopspring/decimal"
)

const (
	// Precision token amount precision
	Precision int32 = 18
)

// TotalToken value owned by share holders
// total_token = balance + total_debt - reserve_pool
func TotalToken(balance, totalDebt, reservePool decimal.Decimal) decimal.Decimal {
	total := balance.Add(totalDebt).Sub(reservePool)
	if total.IsNegative() {
		return decimal.Zero
	}

	return total
}

// SharesForDeposit shares minted for amount, 1:1 for the first deposit
func SharesForDeposit(amount, totalShares, totalToken decimal.Decimal) decimal.Decimal {
	if totalShares.IsZero() || totalToken.IsZero() {
		return amount
	}

	return number.Div(amount.Mul(totalShares), totalToken, Precision)
}

// AmountForShares base tokens paid for shares, rounded down
func AmountForShares(shares, totalShares, totalToken decimal.Decimal) decimal.Decimal {
	if totalShares.IsZero() {
		return decimal.Zero
	}

	return number.Div(shares.Mul(totalToken), totalShares, Precision)
}

// DebtShareToValue debt value of share, rounded up so debt is never understated
func DebtShareToValue(share, totalDebtShares, totalDebt decimal.Decimal) decimal.Decimal {
	if totalDebtShares.IsZero() {
		return share
	}

	return number.DivCeil(share.Mul(totalDebt), totalDebtShares, Precision)
}

// DebtValueToShare debt share of value, rounded up
func DebtValueToShare(value, totalDebtShares, totalDebt decimal.Decimal) decimal.Decimal {
	if totalDebtShares.IsZero() || totalDebt.IsZero() {
		return value
	}

	return number.DivCeil(value.Mul(totalDebtShares), totalDebt, Precision)
}

// ReserveCut protocol share of interest, rounded up
func ReserveCut(interest decimal.Decimal, reservePoolBps int64) decimal.Decimal {
	return number.MulBpsCeil(interest, reservePoolBps, Precision)
}

// HealthWithin health * factor >= debt * 10000
func HealthWithin(health decimal.Decimal, factorBps int64, debt decimal.Decimal) bool {
	return health.Mul(decimal.NewFromInt(factorBps)).GreaterThanOrEqual(debt.Mul(number.Bps))
}

// Settlement kill proceeds split
type Settlement struct {
	Prize  decimal.Decimal
	Repaid decimal.Decimal
	Left   decimal.Decimal
	Loss   decimal.Decimal
}

// Settle splits liquidation proceeds into prize, repayment, owner remainder and bad debt
func Settle(back, debt decimal.Decimal, killPrizeBps int64) Settlement {
	prize := number.MulBps(back, killPrizeBps, Precision)
	rest := back.Sub(prize)

	s := Settlement{Prize: prize, Left: decimal.Zero, Loss: decimal.Zero}
	if rest.GreaterThan(debt) {
		s.Left = rest.Sub(debt)
		s.Repaid = debt
	} else {
		s.Repaid = rest
		s.Loss = debt.Sub(rest)
	}

	return s
}
