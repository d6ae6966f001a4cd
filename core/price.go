package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// PriceTicker price ticker
type PriceTicker struct {
	Provider string          `json:"provider,omitempty"`
	Symbol   string          `json:"symbol,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
}

// IPriceTickerService pulls external prices for the feeder
type IPriceTickerService interface {
	PullPriceTicker(ctx context.Context, base, quote string) (*PriceTicker, error)
}
