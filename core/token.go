package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// TokenKind token kind
type TokenKind int

const (
	_ TokenKind = iota
	// TokenKindPlain plain fungible token
	TokenKindPlain
	// TokenKindLockable reward token with linear unlock
	TokenKindLockable
	// TokenKindDebt restricted-transfer debt token
	TokenKindDebt
)

// TokenInfo token meta state
type TokenInfo struct {
	Symbol            string          `json:"symbol,omitempty"`
	Kind              TokenKind       `json:"kind,omitempty"`
	Owner             string          `json:"owner,omitempty"`
	Minters           []string        `json:"minters,omitempty"`
	OkHolders         []string        `json:"ok_holders,omitempty"`
	TotalSupply       decimal.Decimal `json:"total_supply"`
	TotalLock         decimal.Decimal `json:"total_lock"`
	StartReleaseBlock int64           `json:"start_release_block,omitempty"`
	EndReleaseBlock   int64           `json:"end_release_block,omitempty"`
}

// TokenAccount balance of one holder
type TokenAccount struct {
	Address         string          `json:"address,omitempty"`
	Balance         decimal.Decimal `json:"balance"`
	Locked          decimal.Decimal `json:"locked"`
	LastUnlockBlock int64           `json:"last_unlock_block,omitempty"`
}

// IToken fungible token ledger
type IToken interface {
	Symbol() string
	Info(ctx context.Context) (*TokenInfo, error)
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)
	TotalSupply(ctx context.Context) (decimal.Decimal, error)
	Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error
	Mint(ctx context.Context, minter, to string, amount decimal.Decimal) error
	Burn(ctx context.Context, burner, from string, amount decimal.Decimal) error
	SetMinter(ctx context.Context, caller, minter string, ok bool) error
}

// ILockableToken token with a linearly released locked balance
type ILockableToken interface {
	IToken
	Lock(ctx context.Context, caller, holder string, amount decimal.Decimal) error
	LockOf(ctx context.Context, holder string) (decimal.Decimal, error)
	TotalLock(ctx context.Context) (decimal.Decimal, error)
	CanUnlockAmount(ctx context.Context, holder string) (decimal.Decimal, error)
	Unlock(ctx context.Context, holder string) (decimal.Decimal, error)
	TransferAll(ctx context.Context, from, to string) (decimal.Decimal, error)
	SetReleaseBlocks(ctx context.Context, caller string, start, end int64) error
}

// ITokenBank token registry
type ITokenBank interface {
	Token(ctx context.Context, symbol string) (IToken, error)
	Tokens(ctx context.Context) ([]IToken, error)
}
