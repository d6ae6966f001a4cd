package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/address"
	"huski/pkg/interest"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/shopspring/decimal"
)

// Options vault dependencies
type Options struct {
	Symbol string
	// Owner admin allowed to manage the reserve, the timelock in production
	Owner      string
	Base       core.IToken
	Shares     core.IToken
	Debt       core.IToken
	FairLaunch core.IFairLaunchService
	DebtPoolID int64
	Config     core.IVaultConfigService
}

// Service lending vault engine
type Service interface {
	core.IVaultService
	Address() string
	Load(ctx context.Context) error
}

type service struct {
	exec       *txn.Executor
	symbol     string
	address    string
	owner      string
	base       core.IToken
	shares     core.IToken
	debt       core.IToken
	fairlaunch core.IFairLaunchService
	config     core.IVaultConfigService
	state      core.Vault
	positions  map[uint64]*core.Position
	owners     map[string]map[uint64]bool
}

// New new vault, the share and debt tokens must be owned by the vault address
func New(exec *txn.Executor, opt Options) Service {
	s := &service{
		exec:       exec,
		symbol:     opt.Symbol,
		address:    Address(opt.Symbol),
		owner:      opt.Owner,
		base:       opt.Base,
		shares:     opt.Shares,
		debt:       opt.Debt,
		fairlaunch: opt.FairLaunch,
		config:     opt.Config,
		positions:  map[uint64]*core.Position{},
		owners:     map[string]map[uint64]bool{},
	}

	s.state = core.Vault{
		Symbol:          opt.Symbol,
		Address:         Address(opt.Symbol),
		BaseToken:       opt.Base.Symbol(),
		ShareToken:      opt.Shares.Symbol(),
		TotalShares:     decimal.Zero,
		TotalDebt:       decimal.Zero,
		TotalDebtShares: decimal.Zero,
		ReservePool:     decimal.Zero,
		NextPositionID:  1,
	}

	if opt.Debt != nil && opt.FairLaunch != nil {
		s.state.DebtToken = opt.Debt.Symbol()
		s.state.DebtPoolID = opt.DebtPoolID
	}

	return s
}

// Address module address of the vault named symbol
func Address(symbol string) string {
	return address.Module("vault/" + symbol)
}

func (s *service) Symbol() string {
	return s.symbol
}

func (s *service) Address() string {
	return s.address
}

func (s *service) stateKey() string {
	return fmt.Sprintf("vault/%s/state", s.symbol)
}

func (s *service) positionPrefix() string {
	return fmt.Sprintf("vault/%s/pos/", s.symbol)
}

func (s *service) Load(ctx context.Context) error {
	var state core.Vault
	ok, err := s.exec.Load(ctx, s.stateKey(), &state)
	if err != nil {
		return err
	}

	if ok {
		s.state = state
	}

	return s.exec.Scan(ctx, s.positionPrefix(), func(key string, data []byte) error {
		var pos core.Position
		if err := json.Unmarshal(data, &pos); err != nil {
			return err
		}

		// rolled back records are staged as null
		if pos.ID == 0 {
			return nil
		}

		s.positions[pos.ID] = &pos
		if pos.IsOpen() {
			s.index(pos.Owner)[pos.ID] = true
		}
		return nil
	})
}

func (s *service) index(owner string) map[uint64]bool {
	ids, ok := s.owners[owner]
	if !ok {
		ids = map[uint64]bool{}
		s.owners[owner] = ids
	}

	return ids
}

func (s *service) touchState(ctx context.Context) *core.Vault {
	prev := s.state
	txn.OnRollback(ctx, func() { s.state = prev })
	txn.Stage(ctx, s.stateKey(), func() interface{} { return s.state })
	return &s.state
}

func (s *service) touchPosition(ctx context.Context, pos *core.Position) *core.Position {
	prev := *pos
	txn.OnRollback(ctx, func() { *pos = prev })
	s.stagePosition(ctx, pos)
	return pos
}

func (s *service) stagePosition(ctx context.Context, pos *core.Position) {
	id := pos.ID
	key := s.positionPrefix() + strconv.FormatUint(id, 10)
	txn.Stage(ctx, key, func() interface{} { return s.positions[id] })
}

// newPosition opens a position with the next id and indexes it under owner
func (s *service) newPosition(ctx context.Context, owner, worker string, block int64) *core.Position {
	state := s.touchState(ctx)
	id := state.NextPositionID
	state.NextPositionID++

	pos := &core.Position{
		ID:           id,
		Vault:        s.symbol,
		Owner:        owner,
		Worker:       worker,
		DebtShare:    decimal.Zero,
		Status:       core.PositionStatusOpen,
		CreatedBlock: block,
		UpdatedBlock: block,
	}

	s.positions[id] = pos
	s.index(owner)[id] = true
	txn.OnRollback(ctx, func() {
		delete(s.positions, id)
		delete(s.index(owner), id)
	})

	s.stagePosition(ctx, pos)
	return pos
}

// retire removes an open position from the owner index
func (s *service) retire(ctx context.Context, pos *core.Position, status core.PositionStatus) {
	s.touchPosition(ctx, pos).Status = status

	owner, id := pos.Owner, pos.ID
	delete(s.index(owner), id)
	txn.OnRollback(ctx, func() { s.index(owner)[id] = true })
}

func (s *service) idle(ctx context.Context) (decimal.Decimal, error) {
	return s.base.BalanceOf(ctx, s.address)
}

// accrue charges interest on the total debt since the last accrual
func (s *service) accrue(ctx context.Context) error {
	current, err := txn.Block(ctx)
	if err != nil {
		return err
	}

	elapsed := current - s.state.LastAccrueBlock
	if elapsed <= 0 {
		return nil
	}

	state := s.touchState(ctx)
	state.LastAccrueBlock = current
	if !state.TotalDebt.IsPositive() {
		return nil
	}

	idle, err := s.idle(ctx)
	if err != nil {
		return err
	}

	params, err := s.config.Params(ctx)
	if err != nil {
		return err
	}

	utilization := interest.Utilization(state.TotalDebt, idle)
	charged := s.config.Accrue(ctx, state.TotalDebt, elapsed, utilization)
	state.TotalDebt = state.TotalDebt.Add(charged)
	state.ReservePool = state.ReservePool.Add(huski.ReserveCut(charged, params.ReservePoolBps))
	return nil
}

// pendingDebt total debt projected to the current block without mutating state
func (s *service) pendingDebt(ctx context.Context) (decimal.Decimal, error) {
	current, err := txn.Block(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	elapsed := current - s.state.LastAccrueBlock
	if elapsed <= 0 || !s.state.TotalDebt.IsPositive() {
		return s.state.TotalDebt, nil
	}

	idle, err := s.idle(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	utilization := interest.Utilization(s.state.TotalDebt, idle)
	return s.state.TotalDebt.Add(s.config.Accrue(ctx, s.state.TotalDebt, elapsed, utilization)), nil
}

func (s *service) debtValue(share decimal.Decimal) decimal.Decimal {
	return huski.DebtShareToValue(share, s.state.TotalDebtShares, s.state.TotalDebt)
}

// removeDebt takes the position debt out of the totals and returns its value
func (s *service) removeDebt(ctx context.Context, pos *core.Position) decimal.Decimal {
	share := pos.DebtShare
	if !share.IsPositive() {
		return decimal.Zero
	}

	value := s.debtValue(share)
	state := s.touchState(ctx)
	state.TotalDebtShares = state.TotalDebtShares.Sub(share)
	state.TotalDebt = state.TotalDebt.Sub(decimal.Min(value, state.TotalDebt))
	if state.TotalDebtShares.IsZero() {
		state.TotalDebt = decimal.Zero
	}

	s.touchPosition(ctx, pos).DebtShare = decimal.Zero
	return value
}

// addDebt books value as position debt, shares rounded up
func (s *service) addDebt(ctx context.Context, pos *core.Position, value decimal.Decimal) {
	if !value.IsPositive() {
		return
	}

	share := huski.DebtValueToShare(value, s.state.TotalDebtShares, s.state.TotalDebt)
	state := s.touchState(ctx)
	state.TotalDebtShares = state.TotalDebtShares.Add(share)
	state.TotalDebt = state.TotalDebt.Add(value)

	p := s.touchPosition(ctx, pos)
	p.DebtShare = p.DebtShare.Add(share)
}

// syncDebtStake keeps the owner's debt token stake equal to the debt share change
func (s *service) syncDebtStake(ctx context.Context, owner string, before, after decimal.Decimal) error {
	if !s.state.HasDebtPool() {
		return nil
	}

	vault, pid := s.address, s.state.DebtPoolID
	switch delta := after.Sub(before); delta.Sign() {
	case 1:
		if err := s.debt.Mint(ctx, vault, vault, delta); err != nil {
			return err
		}
		return s.fairlaunch.Deposit(ctx, vault, owner, pid, delta)
	case -1:
		if err := s.fairlaunch.Withdraw(ctx, vault, owner, pid, delta.Neg()); err != nil {
			return err
		}
		return s.debt.Burn(ctx, vault, vault, delta.Neg())
	}

	return nil
}

func (s *service) observe(ctx context.Context) {
	idle, err := s.idle(ctx)
	if err != nil {
		return
	}

	metrics.Ledger().ObserveVault(s.symbol, s.state.TotalDebt, s.state.ReservePool, interest.Utilization(s.state.TotalDebt, idle))
}

func (s *service) Vault(ctx context.Context) (*core.Vault, error) {
	var v core.Vault
	err := s.exec.View(ctx, func(ctx context.Context) error {
		v = s.state
		return nil
	})

	return &v, err
}

func (s *service) TotalToken(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	err := s.exec.View(ctx, func(ctx context.Context) error {
		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		total = huski.TotalToken(idle, s.state.TotalDebt, s.state.ReservePool)
		return nil
	})

	return total, err
}

func (s *service) Utilization(ctx context.Context) (decimal.Decimal, error) {
	u := decimal.Zero
	err := s.exec.View(ctx, func(ctx context.Context) error {
		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		u = interest.Utilization(s.state.TotalDebt, idle)
		return nil
	})

	return u, err
}

func (s *service) Accrue(ctx context.Context) error {
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if err := s.accrue(ctx); err != nil {
			return err
		}

		s.observe(ctx)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "accrue", err)
	return err
}

func (s *service) Position(ctx context.Context, positionID uint64) (*core.Position, error) {
	var pos core.Position
	err := s.exec.View(ctx, func(ctx context.Context) error {
		p, ok := s.positions[positionID]
		if !ok {
			return core.ErrPositionNotFound
		}

		pos = *p
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &pos, nil
}

func (s *service) PositionInfo(ctx context.Context, positionID uint64) (*core.PositionInfo, error) {
	var info *core.PositionInfo
	err := s.exec.View(ctx, func(ctx context.Context) error {
		p, ok := s.positions[positionID]
		if !ok {
			return core.ErrPositionNotFound
		}

		var err error
		info, err = s.positionInfo(ctx, p)
		return err
	})

	return info, err
}

func (s *service) positionInfo(ctx context.Context, p *core.Position) (*core.PositionInfo, error) {
	pos := *p
	info := &core.PositionInfo{Position: &pos, Health: decimal.Zero, Debt: decimal.Zero}
	if !pos.IsOpen() {
		return info, nil
	}

	w, err := s.config.Worker(ctx, pos.Worker)
	if err != nil {
		return nil, err
	}

	if info.Health, err = w.Health(ctx, pos.ID); err != nil {
		return nil, err
	}

	totalDebt, err := s.pendingDebt(ctx)
	if err != nil {
		return nil, err
	}

	info.Debt = huski.DebtShareToValue(pos.DebtShare, s.state.TotalDebtShares, totalDebt)
	if !pos.DebtShare.IsPositive() {
		info.Debt = decimal.Zero
	}

	return info, nil
}

func (s *service) PositionsOf(ctx context.Context, owner string) ([]*core.Position, error) {
	var list []*core.Position
	err := s.exec.View(ctx, func(ctx context.Context) error {
		for id := range s.owners[owner] {
			pos := *s.positions[id]
			list = append(list, &pos)
		}
		return nil
	})

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}

func (s *service) Positions(ctx context.Context) ([]*core.Position, error) {
	var list []*core.Position
	err := s.exec.View(ctx, func(ctx context.Context) error {
		for _, p := range s.positions {
			if p.IsOpen() {
				pos := *p
				list = append(list, &pos)
			}
		}
		return nil
	})

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}
