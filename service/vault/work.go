package vault

import (
	"context"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Work opens or adjusts a leveraged position through its worker
func (s *service) Work(ctx context.Context, caller string, in core.WorkInput) (*core.WorkResult, error) {
	log := logger.FromContext(ctx).WithField("vault", s.symbol).WithField("caller", caller)
	var result *core.WorkResult

	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if in.Principal.IsNegative() || in.Borrow.IsNegative() || in.MaxReturn.IsNegative() {
			return core.ErrInvalidAmount
		}

		if err := s.accrue(ctx); err != nil {
			return err
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		w, err := s.config.Worker(ctx, in.Worker)
		if err != nil {
			return err
		}

		var pos *core.Position
		if in.PositionID == 0 {
			pos = s.newPosition(ctx, caller, in.Worker, current)
		} else {
			p, ok := s.positions[in.PositionID]
			switch {
			case !ok || !p.IsOpen():
				return core.ErrPositionNotFound
			case p.Owner != caller:
				return core.ErrUnauthorized
			case p.Worker != in.Worker:
				return core.ErrBadPositionWorker
			}
			pos = p
		}

		params, err := s.config.Params(ctx)
		if err != nil {
			return err
		}

		if in.Borrow.IsPositive() {
			accept, err := s.config.AcceptDebt(ctx, in.Worker)
			if err != nil {
				return err
			}

			if !accept {
				return core.ErrBorrowNotAllowed
			}

			if in.Borrow.LessThan(params.MinDebtSize) {
				return core.ErrDebtTooSmall
			}
		}

		shareBefore := pos.DebtShare
		debt := s.removeDebt(ctx, pos).Add(in.Borrow)

		if err := s.base.Transfer(ctx, caller, s.address, in.Principal); err != nil {
			return err
		}

		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		send := in.Principal.Add(in.Borrow)
		if send.GreaterThan(idle) {
			return core.ErrInsufficientFunds
		}

		if err := s.base.Transfer(ctx, s.address, w.Address(), send); err != nil {
			return err
		}

		before := idle.Sub(send)
		if err := w.Work(ctx, pos.ID, pos.Owner, debt, in.Payload); err != nil {
			return err
		}

		after, err := s.idle(ctx)
		if err != nil {
			return err
		}

		back := decimal.Max(after.Sub(before), decimal.Zero)
		lessDebt := decimal.Min(debt, back, in.MaxReturn)
		debt = debt.Sub(lessDebt)

		health, err := w.Health(ctx, pos.ID)
		if err != nil {
			return err
		}

		if debt.IsPositive() {
			if debt.LessThan(params.MinDebtSize) {
				return core.ErrDebtTooSmall
			}

			workFactor, err := s.config.WorkFactor(ctx, in.Worker)
			if err != nil {
				return err
			}

			if !huski.HealthWithin(health, workFactor, debt) {
				return core.ErrBadWorkFactor
			}

			s.addDebt(ctx, pos, debt)
		}

		returned := back.Sub(lessDebt)
		if returned.IsPositive() {
			if err := s.base.Transfer(ctx, s.address, pos.Owner, returned); err != nil {
				return err
			}
		}

		if err := s.syncDebtStake(ctx, pos.Owner, shareBefore, pos.DebtShare); err != nil {
			return err
		}

		s.touchPosition(ctx, pos).UpdatedBlock = current
		if !debt.IsPositive() && !health.IsPositive() {
			s.retire(ctx, pos, core.PositionStatusClosed)
		}

		p := *pos
		result = &core.WorkResult{Position: &p, Debt: debt, Returned: returned}
		s.observe(ctx)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "work", err)
	if err != nil {
		log.WithError(err).Errorln("vault.Work")
		return nil, err
	}

	log.Infof("work position %d, debt %s, returned %s", result.Position.ID, result.Debt, result.Returned)
	return result, nil
}
