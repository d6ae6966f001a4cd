package views

import (
	"huski/core"

	"github.com/shopspring/decimal"
)

// Default default view
type Default struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// DefaultSuccess default success view
var DefaultSuccess = Default{
	Code:    0,
	Message: "success",
}

// Account token account view
type Account struct {
	Token      string          `json:"token"`
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	Locked     decimal.Decimal `json:"locked"`
	Unlockable decimal.Decimal `json:"unlockable"`
}

// PoolUser staker view with the pending reward
type PoolUser struct {
	*core.PoolUser
	Pending decimal.Decimal `json:"pending"`
}
