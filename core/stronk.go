package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// Stronk reward token wrapper settings
type Stronk struct {
	Symbol           string          `json:"symbol,omitempty"`
	RewardToken      string          `json:"reward_token,omitempty"`
	Address          string          `json:"address,omitempty"`
	HodlableEndBlock int64           `json:"hodlable_end_block"`
	LockEndBlock     int64           `json:"lock_end_block"`
	TotalHodl        decimal.Decimal `json:"total_hodl"`
}

// Hodler account that hodled its reward tokens
type Hodler struct {
	Address string          `json:"address,omitempty"`
	Amount  decimal.Decimal `json:"amount"`
	Block   int64           `json:"block"`
}

// IStronkService swaps locked reward tokens for a transferable stronk token
type IStronkService interface {
	Symbol() string
	Info(ctx context.Context) (*Stronk, error)
	Hodler(ctx context.Context, address string) (*Hodler, error)
	// Hodl moves the whole reward account of caller, locked part included,
	// and mints the same amount of stronk tokens
	Hodl(ctx context.Context, caller string) (decimal.Decimal, error)
	// Unhodl burns the stronk balance of caller for reward tokens
	Unhodl(ctx context.Context, caller string) (decimal.Decimal, error)
}
