package timelock

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"huski/core"
	"huski/core/proposal"
	"huski/pkg/txn"
	"huski/pkg/txn/txntest"
	"huski/service/fairlaunch"
	"huski/service/token"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func setup(t *testing.T) (*txn.Executor, Service, fairlaunch.Service, *clock) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)

	reward := token.NewLockable(exec, "HUSKI", "deployer", 1000, 2000)
	bank := token.NewBank(token.New(exec, "STOKEN0", "deployer"))
	fl := fairlaunch.New(exec, reward, bank, fairlaunch.Options{
		Owner:          Address(),
		Dev:            "dev",
		RewardPerBlock: decimal.NewFromInt(10),
	})
	require.Nil(t, reward.SetMinter(ctx, "deployer", fl.Address(), true))

	c := &clock{now: time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)}
	tl := New(exec, Options{
		Admins:      []string{"admin"},
		Delay:       time.Hour,
		GracePeriod: 2 * time.Hour,
	})
	tl.SetClock(c.Now)
	RegisterFairLaunch(tl, fl)

	return exec, tl, fl, c
}

func content(t *testing.T, v interface{}) []byte {
	data, err := json.Marshal(v)
	require.Nil(t, err)
	return data
}

func TestQueueAndExecute(t *testing.T) {
	ctx := context.Background()
	_, tl, fl, c := setup(t)

	req := content(t, proposal.AddPoolReq{StakeToken: "STOKEN0", AllocPoint: 100})
	eta := c.now.Add(time.Hour)

	_, err := tl.Queue(ctx, "alice", core.ActionTypeProposalAddPool, req, eta)
	assert.Equal(t, core.ErrUnauthorized, err)

	_, err = tl.Queue(ctx, "admin", core.ActionTypeProposalAddPool, req, eta.Add(-time.Second))
	assert.Equal(t, core.ErrInvalidETA, err)

	_, err = tl.Queue(ctx, "admin", core.ActionTypeDeposit, req, eta)
	assert.Equal(t, core.ErrOperationForbidden, err)

	p, err := tl.Queue(ctx, "admin", core.ActionTypeProposalAddPool, req, eta)
	require.Nil(t, err)
	assert.Equal(t, Hash(core.ActionTypeProposalAddPool, req, eta), p.Hash)
	assert.True(t, p.Pending())

	_, err = tl.Queue(ctx, "admin", core.ActionTypeProposalAddPool, req, eta)
	assert.Equal(t, core.ErrProposalDuplicated, err)

	_, err = tl.Execute(ctx, "admin", p.Hash)
	assert.Equal(t, core.ErrProposalNotReady, err)

	_, err = tl.Execute(ctx, "admin", "missing")
	assert.Equal(t, core.ErrProposalNotFound, err)

	c.now = eta
	_, err = tl.Execute(ctx, "alice", p.Hash)
	assert.Equal(t, core.ErrUnauthorized, err)

	executed, err := tl.Execute(ctx, "admin", p.Hash)
	require.Nil(t, err)
	assert.True(t, executed.ExecutedAt.Valid)

	pool, err := fl.Pool(ctx, 0)
	require.Nil(t, err)
	assert.Equal(t, int64(100), pool.AllocPoint)

	_, err = tl.Execute(ctx, "admin", p.Hash)
	assert.Equal(t, core.ErrProposalExecuted, err)

	_, err = tl.Cancel(ctx, "admin", p.Hash)
	assert.Equal(t, core.ErrProposalExecuted, err)
}

func TestExpiredAndCanceled(t *testing.T) {
	ctx := context.Background()
	_, tl, _, c := setup(t)

	eta := c.now.Add(2 * time.Hour)
	late, err := tl.Queue(ctx, "admin", core.ActionTypeProposalSetRewardPerBlock,
		content(t, proposal.SetRewardPerBlockReq{RewardPerBlock: decimal.NewFromInt(5)}), eta)
	require.Nil(t, err)

	canceled, err := tl.Queue(ctx, "admin", core.ActionTypeProposalSetBonus,
		content(t, proposal.SetBonusReq{Multiplier: 2, EndBlock: 500, LockBps: 5000}), eta)
	require.Nil(t, err)

	_, err = tl.Cancel(ctx, "admin", canceled.Hash)
	require.Nil(t, err)
	_, err = tl.Cancel(ctx, "admin", canceled.Hash)
	assert.Equal(t, core.ErrProposalCanceled, err)

	c.now = eta.Add(2*time.Hour + time.Second)
	_, err = tl.Execute(ctx, "admin", late.Hash)
	assert.Equal(t, core.ErrProposalExpired, err)
	_, err = tl.Execute(ctx, "admin", canceled.Hash)
	assert.Equal(t, core.ErrProposalCanceled, err)

	proposals, err := tl.List(ctx)
	require.Nil(t, err)
	require.Len(t, proposals, 2)

	statuses := map[string]string{}
	for _, p := range proposals {
		statuses[p.Hash] = Status(p)
	}
	assert.Equal(t, "queued", statuses[late.Hash])
	assert.Equal(t, "canceled", statuses[canceled.Hash])
}

func TestFailedCommandStaysQueued(t *testing.T) {
	ctx := context.Background()
	_, tl, fl, c := setup(t)

	eta := c.now.Add(time.Hour)
	p, err := tl.Queue(ctx, "admin", core.ActionTypeProposalAddPool,
		content(t, proposal.AddPoolReq{StakeToken: "ETH", AllocPoint: 1}), eta)
	require.Nil(t, err)

	c.now = eta
	_, err = tl.Execute(ctx, "admin", p.Hash)
	assert.Equal(t, core.ErrTokenNotFound, err)

	found, err := tl.Find(ctx, p.Hash)
	require.Nil(t, err)
	assert.True(t, found.Pending())

	pools, _ := fl.Pools(ctx)
	assert.Empty(t, pools)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	exec, tl, _, c := setup(t)

	eta := c.now.Add(time.Hour)
	p, err := tl.Queue(ctx, "admin", core.ActionTypeProposalSetPool,
		content(t, proposal.SetPoolReq{PoolID: 0, AllocPoint: 1}), eta)
	require.Nil(t, err)

	reloaded := New(exec, Options{Admins: []string{"admin"}})
	require.Nil(t, reloaded.Load(ctx))

	found, err := reloaded.Find(ctx, p.Hash)
	require.Nil(t, err)
	assert.Equal(t, core.ActionTypeProposalSetPool, found.Action)
	assert.True(t, found.ETA.Equal(eta))
	assert.JSONEq(t, `{"pool_id":0,"alloc_point":1,"with_update":false}`, string(found.Content))

	view := string(Render(found))
	assert.True(t, strings.Contains(view, `"set_pool" queued`))
	assert.True(t, strings.Contains(view, `"alloc_point": 1`))
}

func TestConcurrentQueue(t *testing.T) {
	ctx := context.Background()
	_, tl, _, c := setup(t)

	req := content(t, proposal.SetPoolReq{PoolID: 0, AllocPoint: 1})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				eta := c.now.Add(time.Hour + time.Duration(i*20+j)*time.Second)
				_, err := tl.Queue(ctx, "admin", core.ActionTypeProposalSetPool, req, eta)
				assert.Nil(t, err)

				_, err = tl.List(ctx)
				assert.Nil(t, err)
			}
		}(i)
	}
	wg.Wait()

	proposals, err := tl.List(ctx)
	require.Nil(t, err)
	assert.Len(t, proposals, 160)
}
