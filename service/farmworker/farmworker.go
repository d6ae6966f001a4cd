// Package farmworker single asset worker holding base token collateral per position
package farmworker

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/address"
	"huski/pkg/number"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// StrategyAdd keep every received fund as collateral
	StrategyAdd = "add"
	// StrategyPartialClose return part of the collateral
	StrategyPartialClose = "partial_close"
	// StrategyClose return the whole collateral
	StrategyClose = "close"
)

// Payload work payload
type Payload struct {
	Strategy string          `json:"strategy,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// State worker wide state
type State struct {
	Booked            decimal.Decimal `json:"booked"`
	PoolPrice         decimal.Decimal `json:"pool_price"`
	LossBps           int64           `json:"loss_bps"`
	YieldPerBlock     decimal.Decimal `json:"yield_per_block"`
	BountyBps         int64           `json:"bounty_bps"`
	LastReinvestBlock int64           `json:"last_reinvest_block"`
}

// Collateral base tokens held for one position
type Collateral struct {
	ID     uint64          `json:"id"`
	Owner  string          `json:"owner,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// Worker reference strategy
type Worker struct {
	exec      *txn.Executor
	name      string
	address   string
	farm      string
	owner     string
	operator  string
	base      core.IToken
	farmToken string
	state     State
	positions map[uint64]*Collateral
}

// New new worker, operator is the vault allowed to work positions
func New(exec *txn.Executor, name, owner, operator string, base core.IToken, farmToken string) *Worker {
	return &Worker{
		exec:      exec,
		name:      name,
		address:   address.Module("worker/" + name),
		farm:      address.Module("farm/" + name),
		owner:     owner,
		operator:  operator,
		base:      base,
		farmToken: farmToken,
		state: State{
			Booked:        decimal.Zero,
			PoolPrice:     decimal.Zero,
			YieldPerBlock: decimal.Zero,
		},
		positions: map[uint64]*Collateral{},
	}
}

// Name worker name
func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Address() string {
	return w.address
}

// FarmAddress account paying farm yield and receiving losses
func (w *Worker) FarmAddress() string {
	return w.farm
}

func (w *Worker) Tokens() (string, string) {
	return w.base.Symbol(), w.farmToken
}

func (w *Worker) stateKey() string {
	return fmt.Sprintf("worker/%s/state", w.name)
}

func (w *Worker) positionPrefix() string {
	return fmt.Sprintf("worker/%s/pos/", w.name)
}

// Load restore persisted state
func (w *Worker) Load(ctx context.Context) error {
	if _, err := w.exec.Load(ctx, w.stateKey(), &w.state); err != nil {
		return err
	}

	return w.exec.Scan(ctx, w.positionPrefix(), func(key string, data []byte) error {
		id, err := strconv.ParseUint(strings.TrimPrefix(key, w.positionPrefix()), 10, 64)
		if err != nil {
			return errors.Wrapf(err, "bad key %s", key)
		}

		var c Collateral
		if err := json.Unmarshal(data, &c); err != nil {
			return err
		}

		if c.ID == 0 {
			return nil
		}

		w.positions[id] = &c
		return nil
	})
}

func (w *Worker) touchState(ctx context.Context) *State {
	prev := w.state
	txn.OnRollback(ctx, func() { w.state = prev })
	txn.Stage(ctx, w.stateKey(), func() interface{} { return w.state })
	return &w.state
}

func (w *Worker) touchPosition(ctx context.Context, id uint64, owner string) *Collateral {
	c, ok := w.positions[id]
	if !ok {
		c = &Collateral{ID: id, Owner: owner, Amount: decimal.Zero}
		w.positions[id] = c
		txn.OnRollback(ctx, func() { delete(w.positions, id) })
	} else {
		prev := *c
		txn.OnRollback(ctx, func() { *c = prev })
	}

	key := w.positionPrefix() + strconv.FormatUint(id, 10)
	txn.Stage(ctx, key, func() interface{} {
		if c, ok := w.positions[id]; ok {
			return c
		}
		return &Collateral{}
	})
	return c
}

func (w *Worker) removePosition(ctx context.Context, id uint64) {
	c, ok := w.positions[id]
	if !ok {
		return
	}

	w.touchPosition(ctx, id, c.Owner)
	delete(w.positions, id)
	txn.OnRollback(ctx, func() { w.positions[id] = c })
}

// Health collateral value net of the farm loss
func (w *Worker) Health(ctx context.Context, positionID uint64) (decimal.Decimal, error) {
	health := decimal.Zero
	err := w.exec.View(ctx, func(ctx context.Context) error {
		if c, ok := w.positions[positionID]; ok {
			health = w.value(c.Amount)
		}
		return nil
	})

	return health, err
}

func (w *Worker) value(amount decimal.Decimal) decimal.Decimal {
	return number.MulBps(amount, 10000-w.state.LossBps, huski.Precision)
}

func (w *Worker) Work(ctx context.Context, positionID uint64, owner string, debt decimal.Decimal, data []byte) error {
	log := logger.FromContext(ctx).WithField("worker", w.name)

	return w.exec.Run(ctx, func(ctx context.Context) error {
		var payload Payload
		if len(data) > 0 {
			if err := json.Unmarshal(data, &payload); err != nil {
				return errors.Wrap(err, "farmworker: bad payload")
			}
		}

		balance, err := w.base.BalanceOf(ctx, w.address)
		if err != nil {
			return err
		}

		received := balance.Sub(w.state.Booked)
		if received.IsNegative() {
			return errors.Errorf("farmworker: balance %s below booked %s", balance, w.state.Booked)
		}

		c := w.touchPosition(ctx, positionID, owner)
		c.Amount = c.Amount.Add(received)
		state := w.touchState(ctx)
		state.Booked = state.Booked.Add(received)

		switch payload.Strategy {
		case "", StrategyAdd:
		case StrategyPartialClose:
			if payload.Amount.IsNegative() {
				return core.ErrInvalidAmount
			}
			if _, err := w.withdraw(ctx, c, decimal.Min(payload.Amount, c.Amount)); err != nil {
				return err
			}
		case StrategyClose:
			if _, err := w.withdraw(ctx, c, c.Amount); err != nil {
				return err
			}
		default:
			return errors.Errorf("farmworker: unknown strategy %q", payload.Strategy)
		}

		if c.Amount.IsZero() {
			w.removePosition(ctx, positionID)
		}

		log.Debugf("work position %d received %s collateral %s", positionID, received, c.Amount)
		return nil
	})
}

// withdraw takes amount of collateral, sends its value to the operator and the loss to the farm
func (w *Worker) withdraw(ctx context.Context, c *Collateral, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, nil
	}

	value := w.value(amount)
	if err := w.base.Transfer(ctx, w.address, w.operator, value); err != nil {
		return decimal.Zero, err
	}

	if loss := amount.Sub(value); loss.IsPositive() {
		if err := w.base.Transfer(ctx, w.address, w.farm, loss); err != nil {
			return decimal.Zero, err
		}
	}

	c.Amount = c.Amount.Sub(amount)
	state := w.touchState(ctx)
	state.Booked = state.Booked.Sub(amount)
	return value, nil
}

func (w *Worker) Liquidate(ctx context.Context, positionID uint64) (decimal.Decimal, error) {
	back := decimal.Zero
	err := w.exec.Run(ctx, func(ctx context.Context) error {
		c, ok := w.positions[positionID]
		if !ok {
			return nil
		}

		c = w.touchPosition(ctx, positionID, c.Owner)
		value, err := w.withdraw(ctx, c, c.Amount)
		if err != nil {
			return err
		}

		back = value
		w.removePosition(ctx, positionID)
		return nil
	})

	return back, err
}

// IsPriceStable pool price within maxPriceDiff bps ratio of the oracle price
func (w *Worker) IsPriceStable(ctx context.Context, oraclePrice decimal.Decimal, maxPriceDiff int64) (bool, error) {
	if !oraclePrice.IsPositive() {
		return false, core.ErrInvalidPrice
	}

	pool := oraclePrice
	if err := w.exec.View(ctx, func(ctx context.Context) error {
		if w.state.PoolPrice.IsPositive() {
			pool = w.state.PoolPrice
		}
		return nil
	}); err != nil {
		return false, err
	}

	diff := decimal.NewFromInt(maxPriceDiff)
	stable := pool.Mul(number.Bps).LessThanOrEqual(oraclePrice.Mul(diff)) &&
		pool.Mul(diff).GreaterThanOrEqual(oraclePrice.Mul(number.Bps))
	return stable, nil
}

// SetPoolPrice set the farm token price in base seen by the worker pool
func (w *Worker) SetPoolPrice(ctx context.Context, caller string, price decimal.Decimal) error {
	return w.exec.Run(ctx, func(ctx context.Context) error {
		if caller != w.owner {
			return core.ErrUnauthorized
		}

		if price.IsNegative() {
			return core.ErrInvalidPrice
		}

		w.touchState(ctx).PoolPrice = price
		return nil
	})
}

// SetLoss set the simulated farm loss in bps
func (w *Worker) SetLoss(ctx context.Context, caller string, lossBps int64) error {
	return w.exec.Run(ctx, func(ctx context.Context) error {
		if caller != w.owner {
			return core.ErrUnauthorized
		}

		if lossBps < 0 || lossBps > 10000 {
			return core.ErrInvalidAmount
		}

		w.touchState(ctx).LossBps = lossBps
		return nil
	})
}

// SetYield set the farm yield paid on reinvest
func (w *Worker) SetYield(ctx context.Context, caller string, yieldPerBlock decimal.Decimal, bountyBps int64) error {
	return w.exec.Run(ctx, func(ctx context.Context) error {
		if caller != w.owner {
			return core.ErrUnauthorized
		}

		if yieldPerBlock.IsNegative() || bountyBps < 0 || bountyBps > 10000 {
			return core.ErrInvalidAmount
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		state := w.touchState(ctx)
		state.YieldPerBlock = yieldPerBlock
		state.BountyBps = bountyBps
		if state.LastReinvestBlock == 0 {
			state.LastReinvestBlock = current
		}
		return nil
	})
}

// Reinvest pays the farm yield since the last reinvest, the caller gets the bounty
// and the rest is compounded into every position pro rata
func (w *Worker) Reinvest(ctx context.Context, caller string) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("worker", w.name)
	bounty := decimal.Zero

	err := w.exec.Run(ctx, func(ctx context.Context) error {
		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		blocks := current - w.state.LastReinvestBlock
		if blocks <= 0 {
			return nil
		}

		w.touchState(ctx).LastReinvestBlock = current

		total := decimal.Zero
		ids := make([]uint64, 0, len(w.positions))
		for id, c := range w.positions {
			total = total.Add(c.Amount)
			ids = append(ids, id)
		}

		if !total.IsPositive() {
			return nil
		}

		reward := w.state.YieldPerBlock.Mul(decimal.NewFromInt(blocks))
		available, err := w.base.BalanceOf(ctx, w.farm)
		if err != nil {
			return err
		}

		reward = decimal.Min(reward, available)
		if !reward.IsPositive() {
			return nil
		}

		bounty = number.MulBps(reward, w.state.BountyBps, huski.Precision)
		if err := w.base.Transfer(ctx, w.farm, caller, bounty); err != nil {
			return err
		}

		rest := reward.Sub(bounty)
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		compounded := decimal.Zero
		for _, id := range ids {
			c := w.touchPosition(ctx, id, "")
			share := number.Div(rest.Mul(c.Amount), total, huski.Precision)
			c.Amount = c.Amount.Add(share)
			compounded = compounded.Add(share)
		}

		if err := w.base.Transfer(ctx, w.farm, w.address, compounded); err != nil {
			return err
		}

		state := w.touchState(ctx)
		state.Booked = state.Booked.Add(compounded)

		log.Infof("reinvest %d blocks, reward %s, bounty %s", blocks, reward, bounty)
		return nil
	})

	return bounty, err
}

// Positions collateral of every open position
func (w *Worker) Positions(ctx context.Context) ([]*Collateral, error) {
	var list []*Collateral
	err := w.exec.View(ctx, func(ctx context.Context) error {
		for _, c := range w.positions {
			cp := *c
			list = append(list, &cp)
		}
		return nil
	})

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, err
}
