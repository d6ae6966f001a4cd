package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceData price of token0 in token1
type PriceData struct {
	Token0    string          `json:"token0,omitempty"`
	Token1    string          `json:"token1,omitempty"`
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IOracleService price oracle interface
type IOracleService interface {
	GetPrice(ctx context.Context, token0, token1 string) (decimal.Decimal, time.Time, error)
	SetPrices(ctx context.Context, caller string, prices []*PriceData) error
	SetFeeder(ctx context.Context, caller, feeder string, ok bool) error
	Prices(ctx context.Context) ([]*PriceData, error)
}
