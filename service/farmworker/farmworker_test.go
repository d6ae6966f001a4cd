package farmworker

import (
	"context"
	"encoding/json"
	"testing"

	"huski/core"
	"huski/pkg/txn/txntest"
	"huski/service/token"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payload(t *testing.T, strategy, amount string) []byte {
	p := Payload{Strategy: strategy}
	if amount != "" {
		p.Amount = d(amount)
	}

	data, err := json.Marshal(p)
	require.Nil(t, err)
	return data
}

func fund(t *testing.T, busd *token.Token, w *Worker, amount string) {
	require.Nil(t, busd.Transfer(context.Background(), "vault", w.Address(), d(amount)))
}

func TestWork(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)
	busd := token.New(exec, "BUSD", "deployer")
	require.Nil(t, busd.Mint(ctx, "deployer", "vault", d("1000")))

	w := New(exec, "farm-busd", "deployer", "vault", busd, "FARM")
	base, farm := w.Tokens()
	assert.Equal(t, "BUSD", base)
	assert.Equal(t, "FARM", farm)

	fund(t, busd, w, "100")
	require.Nil(t, w.Work(ctx, 1, "bob", decimal.Zero, nil))
	health, _ := w.Health(ctx, 1)
	assert.Equal(t, "100", health.String())

	// the loss is paid to the farm on withdraw
	require.Nil(t, w.SetLoss(ctx, "deployer", 1000))
	health, _ = w.Health(ctx, 1)
	assert.Equal(t, "90", health.String())

	require.Nil(t, w.Work(ctx, 1, "bob", decimal.Zero, payload(t, StrategyPartialClose, "40")))
	vault, _ := busd.BalanceOf(ctx, "vault")
	lost, _ := busd.BalanceOf(ctx, w.FarmAddress())
	assert.Equal(t, "936", vault.String())
	assert.Equal(t, "4", lost.String())

	positions, _ := w.Positions(ctx)
	require.Len(t, positions, 1)
	assert.Equal(t, "60", positions[0].Amount.String())

	assert.NotNil(t, w.Work(ctx, 1, "bob", decimal.Zero, payload(t, "swap", "")))
	assert.Equal(t, core.ErrInvalidAmount, w.Work(ctx, 1, "bob", decimal.Zero, payload(t, StrategyPartialClose, "-1")))

	require.Nil(t, w.Work(ctx, 1, "bob", decimal.Zero, payload(t, StrategyClose, "")))
	positions, _ = w.Positions(ctx)
	assert.Empty(t, positions)

	vault, _ = busd.BalanceOf(ctx, "vault")
	assert.Equal(t, "990", vault.String())

	// removed positions stay removed after a reload
	reloaded := New(exec, "farm-busd", "deployer", "vault", busd, "FARM")
	require.Nil(t, reloaded.Load(ctx))
	positions, _ = reloaded.Positions(ctx)
	assert.Empty(t, positions)
	health, _ = reloaded.Health(ctx, 1)
	assert.True(t, health.IsZero())
}

func TestLiquidate(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)
	busd := token.New(exec, "BUSD", "deployer")
	require.Nil(t, busd.Mint(ctx, "deployer", "vault", d("300")))

	w := New(exec, "farm-busd", "deployer", "vault", busd, "FARM")
	fund(t, busd, w, "300")
	require.Nil(t, w.Work(ctx, 7, "bob", d("200"), nil))
	require.Nil(t, w.SetLoss(ctx, "deployer", 4000))

	back, err := w.Liquidate(ctx, 7)
	require.Nil(t, err)
	assert.Equal(t, "180", back.String())

	back, err = w.Liquidate(ctx, 7)
	require.Nil(t, err)
	assert.True(t, back.IsZero())
}

func TestReinvest(t *testing.T) {
	ctx := context.Background()
	exec, clock := txntest.New(t, 100)
	busd := token.New(exec, "BUSD", "deployer")
	require.Nil(t, busd.Mint(ctx, "deployer", "vault", d("400")))

	w := New(exec, "farm-busd", "deployer", "vault", busd, "FARM")
	require.Nil(t, busd.Mint(ctx, "deployer", w.FarmAddress(), d("1000")))

	fund(t, busd, w, "100")
	require.Nil(t, w.Work(ctx, 1, "bob", decimal.Zero, nil))
	fund(t, busd, w, "300")
	require.Nil(t, w.Work(ctx, 2, "carol", decimal.Zero, nil))

	assert.Equal(t, core.ErrUnauthorized, w.SetYield(ctx, "bob", d("10"), 1000))
	require.Nil(t, w.SetYield(ctx, "deployer", d("10"), 1000))

	clock.Set(105)
	bounty, err := w.Reinvest(ctx, "keeper")
	require.Nil(t, err)
	assert.Equal(t, "5", bounty.String())

	positions, _ := w.Positions(ctx)
	require.Len(t, positions, 2)
	assert.Equal(t, "111.25", positions[0].Amount.String())
	assert.Equal(t, "333.75", positions[1].Amount.String())

	// nothing more in the same block
	bounty, err = w.Reinvest(ctx, "keeper")
	require.Nil(t, err)
	assert.True(t, bounty.IsZero())

	// booked collateral follows the compounded yield
	require.Nil(t, w.Work(ctx, 1, "bob", decimal.Zero, nil))
	positions, _ = w.Positions(ctx)
	assert.Equal(t, "111.25", positions[0].Amount.String())
}

func TestIsPriceStable(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)
	w := New(exec, "farm-busd", "deployer", "vault", token.New(exec, "BUSD", "deployer"), "FARM")

	stable, err := w.IsPriceStable(ctx, d("2"), 10500)
	require.Nil(t, err)
	assert.True(t, stable)

	_, err = w.IsPriceStable(ctx, decimal.Zero, 10500)
	assert.Equal(t, core.ErrInvalidPrice, err)

	require.Nil(t, w.SetPoolPrice(ctx, "deployer", d("2.1")))
	stable, _ = w.IsPriceStable(ctx, d("2"), 10500)
	assert.True(t, stable)

	stable, _ = w.IsPriceStable(ctx, d("2"), 10400)
	assert.False(t, stable)

	require.Nil(t, w.SetPoolPrice(ctx, "deployer", d("1.9")))
	stable, _ = w.IsPriceStable(ctx, d("2"), 10500)
	assert.False(t, stable)

	assert.Equal(t, core.ErrUnauthorized, w.SetPoolPrice(ctx, "bob", d("1")))
	assert.Equal(t, core.ErrInvalidAmount, w.SetLoss(ctx, "deployer", 10001))
}
