package number

import (
	"github.com/shopspring/decimal"
)

// Bps denominator of basis points
var Bps = decimal.NewFromInt(10000)

func Decimal(v string) decimal.Decimal {
	d, _ := decimal.NewFromString(v)
	return d
}

func Ceil(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Ceil().Shift(-precision)
}

func Floor(d decimal.Decimal, precision int32) decimal.Decimal {
	return d.Shift(precision).Floor().Shift(-precision)
}

// Div a / b truncated at precision, zero when b is zero
func Div(a, b decimal.Decimal, precision int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, _ := a.QuoRem(b, precision)
	return q
}

// DivCeil a / b rounded up at precision
func DivCeil(a, b decimal.Decimal, precision int32) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}

	q, r := a.QuoRem(b, precision)
	if !r.IsZero() && a.Sign()*b.Sign() > 0 {
		q = q.Add(decimal.New(1, -precision))
	}

	return q
}

// MulBps amount * bps / 10000 truncated at precision
func MulBps(amount decimal.Decimal, bps int64, precision int32) decimal.Decimal {
	return Floor(amount.Mul(decimal.NewFromInt(bps)).Shift(-4), precision)
}

// MulBpsCeil amount * bps / 10000 rounded up at precision
func MulBpsCeil(amount decimal.Decimal, bps int64, precision int32) decimal.Decimal {
	return Ceil(amount.Mul(decimal.NewFromInt(bps)).Shift(-4), precision)
}

// Min smallest of values
func Min(first decimal.Decimal, rest ...decimal.Decimal) decimal.Decimal {
	return decimal.Min(first, rest...)
}
