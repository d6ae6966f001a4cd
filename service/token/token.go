package token

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Token fungible token ledger. Lockable tokens hold part of a balance in a
// linear release schedule, debt tokens only move through ok holders.
type Token struct {
	exec     *txn.Executor
	info     core.TokenInfo
	accounts map[string]*core.TokenAccount
}

// New plain token owned by owner
func New(exec *txn.Executor, symbol, owner string) *Token {
	return newToken(exec, core.TokenInfo{
		Symbol: symbol,
		Kind:   core.TokenKindPlain,
		Owner:  owner,
	})
}

// NewLockable reward token releasing locked balances between start and end block
func NewLockable(exec *txn.Executor, symbol, owner string, startRelease, endRelease int64) *Token {
	return newToken(exec, core.TokenInfo{
		Symbol:            symbol,
		Kind:              core.TokenKindLockable,
		Owner:             owner,
		StartReleaseBlock: startRelease,
		EndReleaseBlock:   endRelease,
	})
}

// NewDebt debt token minted and burned by owner only
func NewDebt(exec *txn.Executor, symbol, owner string, okHolders ...string) *Token {
	return newToken(exec, core.TokenInfo{
		Symbol:    symbol,
		Kind:      core.TokenKindDebt,
		Owner:     owner,
		OkHolders: append([]string{owner}, okHolders...),
	})
}

func newToken(exec *txn.Executor, info core.TokenInfo) *Token {
	info.TotalSupply = decimal.Zero
	info.TotalLock = decimal.Zero
	return &Token{
		exec:     exec,
		info:     info,
		accounts: map[string]*core.TokenAccount{},
	}
}

func (t *Token) metaKey() string {
	return fmt.Sprintf("token/%s/meta", t.info.Symbol)
}

func (t *Token) accountPrefix() string {
	return fmt.Sprintf("token/%s/acct/", t.info.Symbol)
}

// Load restore persisted state, keeps the constructor state if nothing is stored
func (t *Token) Load(ctx context.Context) error {
	var info core.TokenInfo
	ok, err := t.exec.Load(ctx, t.metaKey(), &info)
	if err != nil {
		return err
	}

	if ok {
		t.info = info
	}

	return t.exec.Scan(ctx, t.accountPrefix(), func(key string, data []byte) error {
		var account core.TokenAccount
		if err := json.Unmarshal(data, &account); err != nil {
			return err
		}

		if account.Address == "" {
			return nil
		}

		t.accounts[strings.TrimPrefix(key, t.accountPrefix())] = &account
		return nil
	})
}

// Symbol token symbol
func (t *Token) Symbol() string {
	return t.info.Symbol
}

func (t *Token) Info(ctx context.Context) (*core.TokenInfo, error) {
	var info core.TokenInfo
	err := t.exec.View(ctx, func(ctx context.Context) error {
		info = t.info
		info.Minters = append([]string(nil), t.info.Minters...)
		info.OkHolders = append([]string(nil), t.info.OkHolders...)
		return nil
	})

	return &info, err
}

// Account snapshot of holder's account
func (t *Token) Account(ctx context.Context, holder string) (*core.TokenAccount, error) {
	account := &core.TokenAccount{Address: holder, Balance: decimal.Zero, Locked: decimal.Zero}
	err := t.exec.View(ctx, func(ctx context.Context) error {
		if a, ok := t.accounts[holder]; ok {
			*account = *a
		}
		return nil
	})

	return account, err
}

func (t *Token) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	account, err := t.Account(ctx, address)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}

func (t *Token) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return info.TotalSupply, nil
}

func (t *Token) Transfer(ctx context.Context, from, to string, amount decimal.Decimal) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if t.info.Kind == core.TokenKindDebt && !t.isOkHolder(from) && !t.isOkHolder(to) {
			return core.ErrTransferNotAllowed
		}

		if amount.IsZero() || from == to {
			return nil
		}

		if err := t.debit(ctx, from, amount); err != nil {
			return err
		}

		t.credit(ctx, to, amount)
		return nil
	})
}

func (t *Token) Mint(ctx context.Context, minter, to string, amount decimal.Decimal) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if !t.canMint(minter) {
			return core.ErrUnauthorized
		}

		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if amount.IsZero() {
			return nil
		}

		t.credit(ctx, to, amount)
		t.touchInfo(ctx).TotalSupply = t.info.TotalSupply.Add(amount)

		logger.FromContext(ctx).WithField("token", t.info.Symbol).Debugf("mint %s to %s", amount, to)
		return nil
	})
}

func (t *Token) Burn(ctx context.Context, burner, from string, amount decimal.Decimal) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if burner != from && !t.canMint(burner) {
			return core.ErrUnauthorized
		}

		if t.info.Kind == core.TokenKindDebt && !t.canMint(burner) {
			return core.ErrUnauthorized
		}

		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if amount.IsZero() {
			return nil
		}

		if err := t.debit(ctx, from, amount); err != nil {
			return err
		}

		t.touchInfo(ctx).TotalSupply = t.info.TotalSupply.Sub(amount)
		return nil
	})
}

func (t *Token) SetMinter(ctx context.Context, caller, minter string, ok bool) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if caller != t.info.Owner {
			return core.ErrUnauthorized
		}

		minters := make([]string, 0, len(t.info.Minters)+1)
		for _, m := range t.info.Minters {
			if m != minter {
				minters = append(minters, m)
			}
		}

		if ok {
			minters = append(minters, minter)
			sort.Strings(minters)
		}

		t.touchInfo(ctx).Minters = minters
		return nil
	})
}

// SetOkHolder allow or forbid a debt token holder
func (t *Token) SetOkHolder(ctx context.Context, caller, holder string, ok bool) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if caller != t.info.Owner {
			return core.ErrUnauthorized
		}

		holders := make([]string, 0, len(t.info.OkHolders)+1)
		for _, h := range t.info.OkHolders {
			if h != holder {
				holders = append(holders, h)
			}
		}

		if ok {
			holders = append(holders, holder)
		}

		t.touchInfo(ctx).OkHolders = holders
		return nil
	})
}

func (t *Token) canMint(address string) bool {
	if address == t.info.Owner {
		return true
	}

	if t.info.Kind == core.TokenKindDebt {
		return false
	}

	for _, m := range t.info.Minters {
		if m == address {
			return true
		}
	}

	return false
}

func (t *Token) isOkHolder(address string) bool {
	for _, h := range t.info.OkHolders {
		if h == address {
			return true
		}
	}

	return false
}

func (t *Token) debit(ctx context.Context, address string, amount decimal.Decimal) error {
	account, ok := t.accounts[address]
	if !ok || account.Balance.LessThan(amount) {
		return core.ErrInsufficientBalance
	}

	t.touchAccount(ctx, address).Balance = account.Balance.Sub(amount)
	return nil
}

func (t *Token) credit(ctx context.Context, address string, amount decimal.Decimal) {
	account := t.touchAccount(ctx, address)
	account.Balance = account.Balance.Add(amount)
}

// touchAccount records the undo entry of the account and marks it dirty
func (t *Token) touchAccount(ctx context.Context, address string) *core.TokenAccount {
	account, ok := t.accounts[address]
	if !ok {
		account = &core.TokenAccount{Address: address, Balance: decimal.Zero, Locked: decimal.Zero}
		t.accounts[address] = account
		txn.OnRollback(ctx, func() { delete(t.accounts, address) })
	} else {
		prev := *account
		txn.OnRollback(ctx, func() { *account = prev })
	}

	txn.Stage(ctx, t.accountPrefix()+address, func() interface{} { return t.accounts[address] })
	return account
}

func (t *Token) touchInfo(ctx context.Context) *core.TokenInfo {
	prev := t.info
	txn.OnRollback(ctx, func() { t.info = prev })
	txn.Stage(ctx, t.metaKey(), func() interface{} { return t.info })
	return &t.info
}

// Lock move amount of holder's balance into the release schedule
func (t *Token) Lock(ctx context.Context, caller, holder string, amount decimal.Decimal) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if t.info.Kind != core.TokenKindLockable {
			return core.ErrOperationForbidden
		}

		if !t.canMint(caller) {
			return core.ErrUnauthorized
		}

		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if amount.IsZero() {
			return nil
		}

		if err := t.debit(ctx, holder, amount); err != nil {
			return err
		}

		account := t.touchAccount(ctx, holder)
		account.Locked = account.Locked.Add(amount)
		if account.LastUnlockBlock < t.info.StartReleaseBlock {
			account.LastUnlockBlock = t.info.StartReleaseBlock
		}

		t.touchInfo(ctx).TotalLock = t.info.TotalLock.Add(amount)
		return nil
	})
}

// LockOf locked balance of holder
func (t *Token) LockOf(ctx context.Context, holder string) (decimal.Decimal, error) {
	account, err := t.Account(ctx, holder)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Locked, nil
}

// TotalLock total locked balance
func (t *Token) TotalLock(ctx context.Context) (decimal.Decimal, error) {
	info, err := t.Info(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return info.TotalLock, nil
}

// CanUnlockAmount releasable part of holder's locked balance at the current block
func (t *Token) CanUnlockAmount(ctx context.Context, holder string) (decimal.Decimal, error) {
	amount := decimal.Zero
	err := t.exec.View(ctx, func(ctx context.Context) error {
		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		amount = t.unlockable(holder, current)
		return nil
	})

	return amount, err
}

func (t *Token) unlockable(holder string, current int64) decimal.Decimal {
	account, ok := t.accounts[holder]
	if !ok {
		return decimal.Zero
	}

	return huski.Unlockable(account.Locked, current, account.LastUnlockBlock, t.info.StartReleaseBlock, t.info.EndReleaseBlock)
}

// Unlock release the unlockable amount to holder's balance
func (t *Token) Unlock(ctx context.Context, holder string) (decimal.Decimal, error) {
	amount := decimal.Zero
	err := t.exec.Run(ctx, func(ctx context.Context) error {
		if t.info.Kind != core.TokenKindLockable {
			return core.ErrOperationForbidden
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		if _, ok := t.accounts[holder]; !ok {
			return nil
		}

		amount = t.unlockable(holder, current)

		account := t.touchAccount(ctx, holder)
		account.Locked = account.Locked.Sub(amount)
		account.Balance = account.Balance.Add(amount)
		account.LastUnlockBlock = current

		t.touchInfo(ctx).TotalLock = t.info.TotalLock.Sub(amount)
		return nil
	})

	if err == nil && amount.IsPositive() {
		logger.FromContext(ctx).WithField("token", t.info.Symbol).Infof("unlock %s for %s", amount, holder)
	}

	return amount, err
}

// TransferAll move the whole balance and locked balance of from to to.
// The receiver keeps the later unlock checkpoint of both accounts.
func (t *Token) TransferAll(ctx context.Context, from, to string) (decimal.Decimal, error) {
	moved := decimal.Zero
	err := t.exec.Run(ctx, func(ctx context.Context) error {
		if t.info.Kind != core.TokenKindLockable {
			return core.ErrOperationForbidden
		}

		src, ok := t.accounts[from]
		if !ok || from == to || (src.Balance.IsZero() && src.Locked.IsZero()) {
			return nil
		}

		balance, locked, last := src.Balance, src.Locked, src.LastUnlockBlock

		src = t.touchAccount(ctx, from)
		src.Balance = decimal.Zero
		src.Locked = decimal.Zero
		src.LastUnlockBlock = 0

		dst := t.touchAccount(ctx, to)
		dst.Balance = dst.Balance.Add(balance)
		dst.Locked = dst.Locked.Add(locked)
		if dst.LastUnlockBlock < last {
			dst.LastUnlockBlock = last
		}

		moved = balance.Add(locked)
		return nil
	})

	return moved, err
}

// SetReleaseBlocks change the release schedule
func (t *Token) SetReleaseBlocks(ctx context.Context, caller string, start, end int64) error {
	return t.exec.Run(ctx, func(ctx context.Context) error {
		if caller != t.info.Owner {
			return core.ErrUnauthorized
		}

		if end < start {
			return core.ErrInvalidAmount
		}

		info := t.touchInfo(ctx)
		info.StartReleaseBlock = start
		info.EndReleaseBlock = end
		return nil
	})
}
