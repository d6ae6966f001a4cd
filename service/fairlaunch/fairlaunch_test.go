package fairlaunch

import (
	"context"
	"testing"

	"huski/core"
	"huski/pkg/txn/txntest"
	"huski/service/block"
	"huski/service/token"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	fl     Service
	reward *token.Token
	stake  *token.Token
	clock  *block.Manual
}

func setup(t *testing.T, rewardPerBlock string) *fixture {
	ctx := context.Background()
	exec, clock := txntest.New(t, 100)

	reward := token.NewLockable(exec, "HUSKI", "deployer", 130, 135)
	stake := token.New(exec, "STOKEN0", "deployer")
	require.Nil(t, stake.Mint(ctx, "deployer", "alice", d("400")))
	require.Nil(t, stake.Mint(ctx, "deployer", "bob", d("100")))

	fl := New(exec, reward, token.NewBank(stake, token.New(exec, "STOKEN1", "deployer")), Options{
		Owner:          "deployer",
		Dev:            "dev",
		DevFeeBps:      1000,
		RewardPerBlock: d(rewardPerBlock),
		BonusLockBps:   7000,
	})
	require.Nil(t, reward.SetMinter(ctx, "deployer", fl.Address(), true))

	return &fixture{fl: fl, reward: reward, stake: stake, clock: clock}
}

func (f *fixture) pending(t *testing.T, user, want string) {
	t.Helper()
	v, err := f.fl.PendingReward(context.Background(), 0, user)
	require.Nil(t, err)
	assert.Equal(t, want, v.String(), "pending of %s", user)
}

func (f *fixture) balance(t *testing.T, user, want string) {
	t.Helper()
	v, err := f.reward.BalanceOf(context.Background(), user)
	require.Nil(t, err)
	assert.Equal(t, want, v.String(), "balance of %s", user)
}

func (f *fixture) locked(t *testing.T, user, want string) {
	t.Helper()
	v, err := f.reward.LockOf(context.Background(), user)
	require.Nil(t, err)
	assert.Equal(t, want, v.String(), "locked of %s", user)
}

func TestAddPool(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "5000")

	_, err := f.fl.AddPool(ctx, "alice", 1, "STOKEN0", false)
	assert.Equal(t, core.ErrUnauthorized, err)

	_, err = f.fl.AddPool(ctx, "deployer", 1, "ETH", false)
	assert.Equal(t, core.ErrTokenNotFound, err)

	pool, err := f.fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)
	assert.Equal(t, int64(0), pool.ID)
	assert.Equal(t, int64(100), pool.LastRewardBlock)

	_, err = f.fl.AddPool(ctx, "deployer", 1, "STOKEN0", true)
	assert.Equal(t, core.ErrDuplicateStakeToken, err)

	_, err = f.fl.Pool(ctx, 1)
	assert.Equal(t, core.ErrPoolNotFound, err)

	settings, _ := f.fl.Settings(ctx)
	assert.Equal(t, int64(1), settings.TotalAllocPoint)
	assert.Equal(t, int64(1), settings.PoolCount)
}

func TestBonusWindowScenario(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "5000")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)

	f.clock.Set(101)
	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("100")))

	f.clock.Set(102)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "5000")

	f.clock.Set(103)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "10000")

	f.clock.Set(104)
	_, err = fl.Harvest(ctx, "alice", 0)
	require.Nil(t, err)
	f.balance(t, "alice", "15000")
	f.balance(t, "dev", "1500")

	// bob joins two blocks later
	f.clock.Set(106)
	require.Nil(t, fl.Deposit(ctx, "bob", "bob", 0, d("100")))
	f.pending(t, "alice", "10000")
	f.balance(t, "dev", "2500")

	f.clock.Set(107)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "12500")
	f.pending(t, "bob", "2500")
	f.balance(t, "dev", "3000")

	f.clock.Set(108)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "15000")
	f.pending(t, "bob", "5000")
	f.balance(t, "dev", "3500")

	f.clock.Set(109)
	_, err = fl.Harvest(ctx, "bob", 0)
	require.Nil(t, err)
	f.pending(t, "alice", "17500")
	f.pending(t, "bob", "0")
	f.balance(t, "bob", "7500")
	f.balance(t, "dev", "4000")

	// deposit on top of a stake harvests first
	f.clock.Set(111)
	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("300")))
	f.pending(t, "alice", "0")
	f.pending(t, "bob", "5000")
	f.balance(t, "alice", "37500")
	f.balance(t, "bob", "7500")
	f.balance(t, "dev", "5000")

	f.clock.Set(112)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "4000")
	f.pending(t, "bob", "6000")
	f.balance(t, "dev", "5500")

	// bonus blocks 113..117, normal blocks 118..121
	require.Nil(t, fl.SetBonus(ctx, "deployer", 10, 117, 7000))
	f.clock.Set(121)
	require.Nil(t, fl.MassUpdatePools(ctx))
	f.pending(t, "alice", "220000")
	f.pending(t, "bob", "60000")
	f.balance(t, "alice", "37500")
	f.balance(t, "bob", "7500")
	f.balance(t, "dev", "15000")
	f.locked(t, "dev", "17500")

	f.clock.Set(122)
	result, err := fl.Harvest(ctx, "alice", 0)
	require.Nil(t, err)
	assert.Equal(t, "224000", result.Reward.String())
	assert.Equal(t, "140000", result.Locked.String())
	f.pending(t, "alice", "0")
	f.pending(t, "bob", "61000")
	f.locked(t, "alice", "140000")
	f.locked(t, "bob", "0")
	f.balance(t, "alice", "121500")
	f.balance(t, "dev", "15500")

	f.clock.Set(123)
	_, err = fl.Harvest(ctx, "bob", 0)
	require.Nil(t, err)
	f.pending(t, "alice", "4000")
	f.locked(t, "bob", "35000")
	f.balance(t, "bob", "34500")
	f.balance(t, "dev", "16000")

	f.clock.Set(124)
	require.Nil(t, fl.WithdrawAll(ctx, "alice", "alice", 0))
	f.pending(t, "alice", "0")
	f.pending(t, "bob", "1000")
	f.balance(t, "alice", "129500")
	f.balance(t, "dev", "16500")

	f.clock.Set(125)
	require.Nil(t, fl.WithdrawAll(ctx, "bob", "bob", 0))
	f.pending(t, "bob", "0")
	f.balance(t, "bob", "40500")
	f.balance(t, "dev", "17000")
	f.locked(t, "alice", "140000")
	f.locked(t, "bob", "35000")
	f.locked(t, "dev", "17500")

	aliceStake, _ := f.stake.BalanceOf(ctx, "alice")
	bobStake, _ := f.stake.BalanceOf(ctx, "bob")
	assert.Equal(t, "400", aliceStake.String())
	assert.Equal(t, "100", bobStake.String())

	// the release ends at block 135
	f.clock.Set(136)
	for user, want := range map[string]string{"alice": "269500", "bob": "75500", "dev": "34500"} {
		_, err := f.reward.Unlock(ctx, user)
		require.Nil(t, err)
		f.balance(t, user, want)
	}
}

func TestFunder(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "1000")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)

	f.clock.Set(101)
	require.Nil(t, fl.Deposit(ctx, "alice", "carol", 0, d("100")))
	assert.Equal(t, core.ErrBadFunder, fl.Deposit(ctx, "bob", "carol", 0, d("10")))
	assert.Equal(t, core.ErrNotFunder, fl.Withdraw(ctx, "carol", "carol", 0, d("10")))
	assert.Equal(t, core.ErrNotFunder, fl.EmergencyWithdraw(ctx, "bob", "carol", 0))
	assert.Equal(t, core.ErrInvalidAmount, fl.Withdraw(ctx, "alice", "carol", 0, d("101")))

	user, err := fl.UserInfo(ctx, 0, "carol")
	require.Nil(t, err)
	assert.True(t, user.Funder.Is("alice"))
	assert.Equal(t, "100", user.Amount.String())

	// the beneficiary harvests, the funder gets the stake back
	f.clock.Set(103)
	_, err = fl.Harvest(ctx, "carol", 0)
	require.Nil(t, err)
	f.balance(t, "carol", "2000")

	_, err = fl.Harvest(ctx, "carol", 0)
	assert.Equal(t, core.ErrNothingToHarvest, err)

	f.clock.Set(104)
	require.Nil(t, fl.Withdraw(ctx, "alice", "carol", 0, d("40")))
	f.balance(t, "carol", "3000")
	f.balance(t, "alice", "0")

	aliceStake, _ := f.stake.BalanceOf(ctx, "alice")
	assert.Equal(t, "340", aliceStake.String())

	// emergency withdraw forfeits pending rewards
	f.clock.Set(110)
	require.Nil(t, fl.EmergencyWithdraw(ctx, "alice", "carol", 0))
	f.balance(t, "carol", "3000")
	aliceStake, _ = f.stake.BalanceOf(ctx, "alice")
	assert.Equal(t, "400", aliceStake.String())

	pool, _ := fl.Pool(ctx, 0)
	assert.True(t, pool.TotalStaked.IsZero())

	// the funder stays with the beneficiary
	assert.Equal(t, core.ErrBadFunder, fl.Deposit(ctx, "bob", "carol", 0, d("1")))
}

func TestAllocPointSplit(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "400")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)
	_, err = fl.AddPool(ctx, "deployer", 3, "STOKEN1", true)
	require.Nil(t, err)

	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("10")))
	f.clock.Set(102)
	f.pending(t, "alice", "200")

	require.Nil(t, fl.SetPool(ctx, "deployer", 0, 3, true))
	f.clock.Set(103)
	f.pending(t, "alice", "400")

	settings, _ := fl.Settings(ctx)
	assert.Equal(t, int64(6), settings.TotalAllocPoint)
	assert.Equal(t, core.ErrUnauthorized, fl.SetPool(ctx, "alice", 0, 1, false))
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "5000")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)
	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("100")))

	f.clock.Set(110)
	assert.Equal(t, core.ErrInsufficientBalance, fl.Deposit(ctx, "alice", "alice", 0, d("1000")))

	pool, _ := fl.Pool(ctx, 0)
	assert.Equal(t, int64(100), pool.LastRewardBlock)
	assert.Equal(t, "100", pool.TotalStaked.String())

	supply, _ := f.reward.TotalSupply(ctx)
	assert.True(t, supply.IsZero())
	f.balance(t, "alice", "0")
	f.pending(t, "alice", "50000")
}

func TestAdminSetters(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "100")
	fl := f.fl

	assert.Equal(t, core.ErrUnauthorized, fl.SetBonus(ctx, "alice", 2, 200, 5000))
	assert.Equal(t, core.ErrInvalidAmount, fl.SetBonus(ctx, "deployer", 2, 100, 5000))
	require.Nil(t, fl.SetBonus(ctx, "deployer", 2, 200, 5000))

	assert.Equal(t, core.ErrUnauthorized, fl.SetRewardPerBlock(ctx, "dev", d("1")))
	require.Nil(t, fl.SetRewardPerBlock(ctx, "deployer", d("50")))

	assert.Equal(t, core.ErrUnauthorized, fl.SetDev(ctx, "deployer", "eve"))
	require.Nil(t, fl.SetDev(ctx, "dev", "eve"))

	settings, _ := fl.Settings(ctx)
	assert.Equal(t, int64(2), settings.BonusMultiplier)
	assert.Equal(t, int64(100), settings.BonusStartBlock)
	assert.Equal(t, "50", settings.RewardPerBlock.String())
	assert.Equal(t, "eve", settings.Dev)
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	exec, clock := txntest.New(t, 100)

	reward := token.NewLockable(exec, "HUSKI", "deployer", 130, 135)
	stake := token.New(exec, "STOKEN0", "deployer")
	require.Nil(t, stake.Mint(ctx, "deployer", "alice", d("10")))
	bank := token.NewBank(stake)

	fl := New(exec, reward, bank, Options{Owner: "deployer", Dev: "dev", RewardPerBlock: d("10")})
	require.Nil(t, reward.SetMinter(ctx, "deployer", fl.Address(), true))
	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)
	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("10")))

	clock.Set(105)
	require.Nil(t, fl.MassUpdatePools(ctx))

	reloaded := New(exec, reward, bank, Options{Owner: "deployer"})
	require.Nil(t, reloaded.Load(ctx))

	settings, _ := reloaded.Settings(ctx)
	assert.Equal(t, "dev", settings.Dev)
	assert.Equal(t, DefaultDevFeeBps, settings.DevFeeBps)

	pools, err := reloaded.Pools(ctx)
	require.Nil(t, err)
	require.Len(t, pools, 1)
	assert.Equal(t, int64(105), pools[0].LastRewardBlock)
	assert.Equal(t, "5", pools[0].AccRewardPerShare.String())

	users, err := reloaded.Users(ctx, 0)
	require.Nil(t, err)
	require.Len(t, users, 1)
	assert.True(t, users[0].Funder.Is("alice"))

	pending, _ := reloaded.PendingReward(ctx, 0, "alice")
	assert.Equal(t, "50", pending.String())
}

func TestFunderClaimNeedsStake(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "100")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)

	assert.Equal(t, core.ErrInvalidAmount, fl.Deposit(ctx, "eve", "bob", 0, decimal.Zero))
	user, err := fl.UserInfo(ctx, 0, "bob")
	require.Nil(t, err)
	assert.False(t, user.Funder.Claimed)

	require.Nil(t, fl.Deposit(ctx, "bob", "bob", 0, d("10")))
	f.clock.Set(102)

	// a zero deposit by the funder only harvests
	require.Nil(t, fl.Deposit(ctx, "bob", "bob", 0, decimal.Zero))
	f.balance(t, "bob", "200")
	assert.Equal(t, core.ErrBadFunder, fl.Deposit(ctx, "eve", "bob", 0, decimal.Zero))
}

func TestDebtPoolFundedByIssuer(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)

	reward := token.NewLockable(exec, "HUSKI", "deployer", 130, 135)
	debt := token.NewDebt(exec, "debtBUSD", "vault", Address())
	require.Nil(t, debt.Mint(ctx, "vault", "vault", d("10")))
	require.Nil(t, debt.Mint(ctx, "vault", "eve", d("10")))

	fl := New(exec, reward, token.NewBank(debt), Options{Owner: "deployer", Dev: "dev", RewardPerBlock: d("10")})
	require.Nil(t, reward.SetMinter(ctx, "deployer", fl.Address(), true))
	_, err := fl.AddPool(ctx, "deployer", 1, "debtBUSD", false)
	require.Nil(t, err)

	assert.Equal(t, core.ErrBadFunder, fl.Deposit(ctx, "eve", "bob", 0, d("10")))
	require.Nil(t, fl.Deposit(ctx, "vault", "bob", 0, d("10")))

	user, err := fl.UserInfo(ctx, 0, "bob")
	require.Nil(t, err)
	assert.True(t, user.Funder.Is("vault"))
}

func TestAccumulatorNeverDecreases(t *testing.T) {
	ctx := context.Background()
	f := setup(t, "100")
	fl := f.fl

	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)
	_, err = fl.AddPool(ctx, "deployer", 1, "STOKEN1", false)
	require.Nil(t, err)

	acc, bonus := decimal.Zero, decimal.Zero
	check := func(block int64) {
		t.Helper()
		f.clock.Set(block)
		require.Nil(t, fl.UpdatePool(ctx, 0))

		pool, err := fl.Pool(ctx, 0)
		require.Nil(t, err)
		assert.True(t, pool.AccRewardPerShare.GreaterThanOrEqual(acc), "acc at block %d", block)
		assert.True(t, pool.AccBonusPerShare.GreaterThanOrEqual(bonus), "acc bonus at block %d", block)
		acc, bonus = pool.AccRewardPerShare, pool.AccBonusPerShare
	}

	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("30")))
	check(103)

	require.Nil(t, fl.SetPool(ctx, "deployer", 0, 5, true))
	check(105)

	require.Nil(t, fl.SetBonus(ctx, "deployer", 4, 110, 5000))
	require.Nil(t, fl.Deposit(ctx, "bob", "bob", 0, d("70")))
	check(108)

	require.Nil(t, fl.SetPool(ctx, "deployer", 0, 0, true))
	check(111)

	require.Nil(t, fl.SetPool(ctx, "deployer", 0, 2, true))
	require.Nil(t, fl.WithdrawAll(ctx, "alice", "alice", 0))
	require.Nil(t, fl.WithdrawAll(ctx, "bob", "bob", 0))
	check(115)

	pool, _ := fl.Pool(ctx, 0)
	assert.True(t, pool.TotalStaked.IsZero())
	assert.True(t, pool.AccRewardPerShare.IsPositive())

	require.Nil(t, fl.Deposit(ctx, "alice", "alice", 0, d("1")))
	check(120)
}

func TestRolledBackUserNotPersisted(t *testing.T) {
	ctx := context.Background()
	exec, _ := txntest.New(t, 100)

	reward := token.NewLockable(exec, "HUSKI", "deployer", 130, 135)
	stake := token.New(exec, "STOKEN0", "deployer")
	require.Nil(t, stake.Mint(ctx, "deployer", "alice", d("10")))
	bank := token.NewBank(stake)

	fl := New(exec, reward, bank, Options{Owner: "deployer", Dev: "dev", RewardPerBlock: d("10")})
	require.Nil(t, reward.SetMinter(ctx, "deployer", fl.Address(), true))
	_, err := fl.AddPool(ctx, "deployer", 1, "STOKEN0", false)
	require.Nil(t, err)

	// the failed deposit rolls back inside an operation that commits
	require.Nil(t, exec.Run(ctx, func(ctx context.Context) error {
		assert.Equal(t, core.ErrInsufficientBalance, fl.Deposit(ctx, "alice", "carol", 0, d("100")))
		return nil
	}))

	reloaded := New(exec, reward, bank, Options{Owner: "deployer"})
	require.Nil(t, reloaded.Load(ctx))

	users, err := reloaded.Users(ctx, 0)
	require.Nil(t, err)
	assert.Empty(t, users)
}
