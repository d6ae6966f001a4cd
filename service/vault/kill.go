package vault

import (
	"context"
	"sort"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Kill liquidates an unhealthy position or one whose worker price is unstable
func (s *service) Kill(ctx context.Context, caller string, positionID uint64) (*core.KillResult, error) {
	log := logger.FromContext(ctx).WithField("vault", s.symbol).WithField("caller", caller)
	var result *core.KillResult

	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if err := s.accrue(ctx); err != nil {
			return err
		}

		pos, ok := s.positions[positionID]
		if !ok {
			return core.ErrPositionNotFound
		}

		if !pos.IsOpen() || !pos.DebtShare.IsPositive() {
			return core.ErrCannotLiquidate
		}

		w, err := s.config.Worker(ctx, pos.Worker)
		if err != nil {
			return err
		}

		debt := s.debtValue(pos.DebtShare)
		health, err := w.Health(ctx, pos.ID)
		if err != nil {
			return err
		}

		stable, err := s.config.IsStable(ctx, pos.Worker)
		if err != nil {
			return err
		}

		killFactor, err := s.config.KillFactor(ctx, pos.Worker)
		if err != nil {
			return err
		}

		if stable && huski.HealthWithin(health, killFactor, debt) {
			return core.ErrCannotLiquidate
		}

		params, err := s.config.Params(ctx)
		if err != nil {
			return err
		}

		shareBefore := pos.DebtShare
		s.removeDebt(ctx, pos)

		before, err := s.idle(ctx)
		if err != nil {
			return err
		}

		if _, err := w.Liquidate(ctx, pos.ID); err != nil {
			return err
		}

		after, err := s.idle(ctx)
		if err != nil {
			return err
		}

		back := decimal.Max(after.Sub(before), decimal.Zero)
		settle := huski.Settle(back, debt, params.KillPrizeBps)

		if settle.Prize.IsPositive() {
			if err := s.base.Transfer(ctx, s.address, caller, settle.Prize); err != nil {
				return err
			}
		}

		if settle.Left.IsPositive() {
			if err := s.base.Transfer(ctx, s.address, pos.Owner, settle.Left); err != nil {
				return err
			}
		}

		current, err := txn.Block(ctx)
		if err != nil {
			return err
		}

		s.touchPosition(ctx, pos).UpdatedBlock = current
		s.retire(ctx, pos, core.PositionStatusKilled)

		if err := s.syncDebtStake(ctx, pos.Owner, shareBefore, decimal.Zero); err != nil {
			return err
		}

		p := *pos
		result = &core.KillResult{
			Position: &p,
			Debt:     debt,
			Proceeds: back,
			Prize:    settle.Prize,
			Left:     settle.Left,
			Loss:     settle.Loss,
		}
		s.observe(ctx)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "kill", err)
	if err != nil {
		log.WithError(err).Errorln("vault.Kill")
		return nil, err
	}

	log.Infof("kill position %d, debt %s, proceeds %s, prize %s, loss %s",
		result.Position.ID, result.Debt, result.Proceeds, result.Prize, result.Loss)
	return result, nil
}

// Killable open positions past their kill factor at the current block
func (s *service) Killable(ctx context.Context) ([]*core.PositionInfo, error) {
	var list []*core.PositionInfo
	err := s.exec.View(ctx, func(ctx context.Context) error {
		for _, p := range s.positions {
			if !p.IsOpen() || !p.DebtShare.IsPositive() {
				continue
			}

			info, err := s.positionInfo(ctx, p)
			if err != nil {
				return err
			}

			killFactor, err := s.config.KillFactor(ctx, p.Worker)
			if err != nil {
				return err
			}

			if !huski.HealthWithin(info.Health, killFactor, info.Debt) {
				list = append(list, info)
			}
		}
		return nil
	})

	sort.Slice(list, func(i, j int) bool { return list[i].Position.ID < list[j].Position.ID })
	return list, err
}
