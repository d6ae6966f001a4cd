package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"huski/core"
	"huski/pkg/txn/txntest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrices(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 1)
	now := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	o := New(exec, "timelock", "feeder")
	o.SetClock(func() time.Time { return now })

	_, _, err := o.GetPrice(ctx, "BUSD", "WBNB")
	assert.Equal(t, core.ErrInvalidPrice, err)

	feed := []*core.PriceData{{Token0: "WBNB", Token1: "BUSD", Price: decimal.NewFromInt(400)}}
	assert.Equal(t, core.ErrUnauthorized, o.SetPrices(ctx, "alice", feed))
	require.Nil(t, o.SetPrices(ctx, "feeder", feed))

	price, updatedAt, err := o.GetPrice(ctx, "WBNB", "BUSD")
	require.Nil(t, err)
	assert.Equal(t, "400", price.String())
	assert.Equal(t, now, updatedAt)

	price, _, err = o.GetPrice(ctx, "BUSD", "WBNB")
	require.Nil(t, err)
	assert.Equal(t, "0.0025", price.String())

	price, _, _ = o.GetPrice(ctx, "BUSD", "BUSD")
	assert.Equal(t, "1", price.String())

	bad := []*core.PriceData{{Token0: "WBNB", Token1: "BUSD", Price: decimal.Zero}}
	assert.Equal(t, core.ErrInvalidPrice, o.SetPrices(ctx, "feeder", bad))
}

func TestFeeders(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 1)
	o := New(exec, "timelock")

	feed := []*core.PriceData{{Token0: "ETH", Token1: "BUSD", Price: decimal.NewFromInt(2000)}}
	assert.Equal(t, core.ErrUnauthorized, o.SetFeeder(ctx, "bob", "bob", true))
	require.Nil(t, o.SetFeeder(ctx, "timelock", "bob", true))
	require.Nil(t, o.SetPrices(ctx, "bob", feed))
	require.Nil(t, o.SetFeeder(ctx, "timelock", "bob", false))
	assert.Equal(t, core.ErrUnauthorized, o.SetPrices(ctx, "bob", feed))

	require.Nil(t, o.SetFeeder(ctx, "timelock", "carol", true))
	reloaded := New(exec, "timelock")
	require.Nil(t, reloaded.Load(ctx))

	feeders, _ := reloaded.Feeders(ctx)
	assert.Equal(t, []string{"carol"}, feeders)
	prices, _ := reloaded.Prices(ctx)
	require.Len(t, prices, 1)
	assert.Equal(t, "2000", prices[0].Price.String())
}

func TestTickerService(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/api/v2/tickers/WBNB-BUSD" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"msg":"not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"provider":"test","price":"401.5"}`))
	}))
	defer srv.Close()

	ctx := context.Background()
	s := NewTickerService(srv.URL, time.Minute)

	ticker, err := s.PullPriceTicker(ctx, "WBNB", "BUSD")
	require.Nil(t, err)
	assert.Equal(t, "401.5", ticker.Price.String())
	assert.Equal(t, "WBNB-BUSD", ticker.Symbol)

	_, err = s.PullPriceTicker(ctx, "WBNB", "BUSD")
	require.Nil(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	_, err = s.PullPriceTicker(ctx, "ETH", "BUSD")
	assert.NotNil(t, err)
}
