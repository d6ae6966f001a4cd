package vault

import (
	"context"

	"huski/core"
	"huski/internal/huski"
	"huski/pkg/metrics"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// Deposit pulls amount base tokens from caller and mints shares, zero amount only accrues
func (s *service) Deposit(ctx context.Context, caller string, amount decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("vault", s.symbol).WithField("caller", caller)
	shares := decimal.Zero

	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if amount.IsNegative() {
			return core.ErrInvalidAmount
		}

		if err := s.accrue(ctx); err != nil {
			return err
		}

		if amount.IsZero() {
			return nil
		}

		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		total := huski.TotalToken(idle, s.state.TotalDebt, s.state.ReservePool)
		shares = huski.SharesForDeposit(amount, s.state.TotalShares, total)

		if err := s.base.Transfer(ctx, caller, s.address, amount); err != nil {
			return err
		}

		if err := s.shares.Mint(ctx, s.address, caller, shares); err != nil {
			return err
		}

		state := s.touchState(ctx)
		state.TotalShares = state.TotalShares.Add(shares)
		s.observe(ctx)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "deposit", err)
	if err != nil {
		log.WithError(err).Errorln("vault.Deposit")
		return decimal.Zero, err
	}

	log.Infof("deposit %s, shares %s", amount, shares)
	return shares, nil
}

// Withdraw burns shares and pays their value out of the idle balance
func (s *service) Withdraw(ctx context.Context, caller string, shares decimal.Decimal) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("vault", s.symbol).WithField("caller", caller)
	amount := decimal.Zero

	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if !shares.IsPositive() {
			return core.ErrInvalidAmount
		}

		if err := s.accrue(ctx); err != nil {
			return err
		}

		idle, err := s.idle(ctx)
		if err != nil {
			return err
		}

		total := huski.TotalToken(idle, s.state.TotalDebt, s.state.ReservePool)
		amount = huski.AmountForShares(shares, s.state.TotalShares, total)
		if amount.GreaterThan(idle) {
			return core.ErrInsufficientLiquidity
		}

		if err := s.shares.Burn(ctx, s.address, caller, shares); err != nil {
			return err
		}

		if err := s.base.Transfer(ctx, s.address, caller, amount); err != nil {
			return err
		}

		state := s.touchState(ctx)
		state.TotalShares = state.TotalShares.Sub(shares)
		s.observe(ctx)
		return nil
	})

	metrics.Ledger().ObserveOperation("vault", "withdraw", err)
	if err != nil {
		log.WithError(err).Errorln("vault.Withdraw")
		return decimal.Zero, err
	}

	log.Infof("withdraw %s shares, amount %s", shares, amount)
	return amount, nil
}
