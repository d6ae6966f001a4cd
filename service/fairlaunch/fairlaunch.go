package fairlaunch

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"huski/core"
	"huski/pkg/address"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/shopspring/decimal"
)

const (
	stateKey   = "fl/state"
	poolPrefix = "fl/pool/"
	userPrefix = "fl/user/"

	// DefaultDevFeeBps dev share of every minted reward
	DefaultDevFeeBps int64 = 1000
)

// Options fairlaunch settings
type Options struct {
	// Owner admin of pools and bonus, the timelock in production
	Owner          string
	Dev            string
	DevFeeBps      int64
	RewardPerBlock decimal.Decimal
	StartBlock     int64
	BonusLockBps   int64
	BonusEndBlock  int64
}

// Service reward ledger engine
type Service interface {
	core.IFairLaunchService
	Users(ctx context.Context, pid int64) ([]*core.PoolUser, error)
	Load(ctx context.Context) error
}

type service struct {
	exec   *txn.Executor
	owner  string
	reward core.ILockableToken
	bank   core.ITokenBank
	state  core.FairLaunch
	pools  []*core.Pool
	users  map[int64]map[string]*core.PoolUser
	stakes map[string]int64
}

// Address module address holding stakes and undistributed rewards
func Address() string {
	return address.Module("fairlaunch")
}

// New new fairlaunch, it must be a minter of the reward token
func New(exec *txn.Executor, reward core.ILockableToken, bank core.ITokenBank, opt Options) Service {
	if opt.DevFeeBps <= 0 {
		opt.DevFeeBps = DefaultDevFeeBps
	}

	return &service{
		exec:   exec,
		owner:  opt.Owner,
		reward: reward,
		bank:   bank,
		state: core.FairLaunch{
			Address:         Address(),
			RewardToken:     reward.Symbol(),
			Dev:             opt.Dev,
			DevFeeBps:       opt.DevFeeBps,
			RewardPerBlock:  opt.RewardPerBlock,
			StartBlock:      opt.StartBlock,
			BonusMultiplier: 1,
			BonusEndBlock:   opt.BonusEndBlock,
			BonusLockBps:    opt.BonusLockBps,
		},
		users:  map[int64]map[string]*core.PoolUser{},
		stakes: map[string]int64{},
	}
}

func (s *service) Address() string {
	return Address()
}

func poolKey(pid int64) string {
	return poolPrefix + strconv.FormatInt(pid, 10)
}

func userKey(pid int64, user string) string {
	return fmt.Sprintf("%s%d/%s", userPrefix, pid, user)
}

func (s *service) Load(ctx context.Context) error {
	var state core.FairLaunch
	ok, err := s.exec.Load(ctx, stateKey, &state)
	if err != nil {
		return err
	}

	if ok {
		s.state = state
	}

	pools := map[int64]*core.Pool{}
	if err := s.exec.Scan(ctx, poolPrefix, func(_ string, data []byte) error {
		var pool core.Pool
		if err := json.Unmarshal(data, &pool); err != nil {
			return err
		}

		// rolled back records are staged as null
		if pool.StakeToken == "" {
			return nil
		}

		pools[pool.ID] = &pool
		return nil
	}); err != nil {
		return err
	}

	s.pools = make([]*core.Pool, len(pools))
	for pid, pool := range pools {
		if pid < 0 || pid >= int64(len(pools)) {
			return fmt.Errorf("fairlaunch: pool id %d out of range", pid)
		}

		s.pools[pid] = pool
		s.stakes[pool.StakeToken] = pid
	}

	return s.exec.Scan(ctx, userPrefix, func(_ string, data []byte) error {
		var user core.PoolUser
		if err := json.Unmarshal(data, &user); err != nil {
			return err
		}

		if user.Address == "" {
			return nil
		}

		s.poolUsers(user.PoolID)[user.Address] = &user
		return nil
	})
}

func (s *service) poolUsers(pid int64) map[string]*core.PoolUser {
	users, ok := s.users[pid]
	if !ok {
		users = map[string]*core.PoolUser{}
		s.users[pid] = users
	}

	return users
}

func (s *service) touchState(ctx context.Context) *core.FairLaunch {
	prev := s.state
	txn.OnRollback(ctx, func() { s.state = prev })
	txn.Stage(ctx, stateKey, func() interface{} { return s.state })
	return &s.state
}

func (s *service) touchPool(ctx context.Context, pool *core.Pool) *core.Pool {
	prev := *pool
	txn.OnRollback(ctx, func() { *pool = prev })
	pid := pool.ID
	txn.Stage(ctx, poolKey(pid), func() interface{} {
		if pid < int64(len(s.pools)) {
			return s.pools[pid]
		}
		return nil
	})
	return pool
}

// touchUser creates the user record on first touch
func (s *service) touchUser(ctx context.Context, pid int64, addr string) *core.PoolUser {
	users := s.poolUsers(pid)
	user, ok := users[addr]
	if !ok {
		user = &core.PoolUser{
			PoolID:     pid,
			Address:    addr,
			Amount:     decimal.Zero,
			RewardDebt: decimal.Zero,
			BonusDebt:  decimal.Zero,
		}
		users[addr] = user
		txn.OnRollback(ctx, func() { delete(users, addr) })
	} else {
		prev := *user
		txn.OnRollback(ctx, func() { *user = prev })
	}

	txn.Stage(ctx, userKey(pid, addr), func() interface{} { return users[addr] })
	return user
}

func (s *service) pool(pid int64) (*core.Pool, error) {
	if pid < 0 || pid >= int64(len(s.pools)) {
		return nil, core.ErrPoolNotFound
	}

	return s.pools[pid], nil
}

func (s *service) user(pid int64, addr string) *core.PoolUser {
	if user, ok := s.poolUsers(pid)[addr]; ok {
		return user
	}

	return &core.PoolUser{
		PoolID:     pid,
		Address:    addr,
		Amount:     decimal.Zero,
		RewardDebt: decimal.Zero,
		BonusDebt:  decimal.Zero,
	}
}

func (s *service) observe(pool *core.Pool) {
	metrics.Ledger().ObservePool(strconv.FormatInt(pool.ID, 10), pool.AccRewardPerShare)
}

func (s *service) Settings(ctx context.Context) (*core.FairLaunch, error) {
	var state core.FairLaunch
	err := s.exec.View(ctx, func(ctx context.Context) error {
		state = s.state
		return nil
	})

	return &state, err
}

func (s *service) Pools(ctx context.Context) ([]*core.Pool, error) {
	var pools []*core.Pool
	err := s.exec.View(ctx, func(ctx context.Context) error {
		pools = make([]*core.Pool, 0, len(s.pools))
		for _, pool := range s.pools {
			p := *pool
			pools = append(pools, &p)
		}
		return nil
	})

	return pools, err
}

func (s *service) Pool(ctx context.Context, pid int64) (*core.Pool, error) {
	var p core.Pool
	err := s.exec.View(ctx, func(ctx context.Context) error {
		pool, err := s.pool(pid)
		if err != nil {
			return err
		}

		p = *pool
		return nil
	})

	return &p, err
}

func (s *service) UserInfo(ctx context.Context, pid int64, addr string) (*core.PoolUser, error) {
	var u core.PoolUser
	err := s.exec.View(ctx, func(ctx context.Context) error {
		if _, err := s.pool(pid); err != nil {
			return err
		}

		u = *s.user(pid, addr)
		return nil
	})

	return &u, err
}

// Users stakers of a pool sorted by address
func (s *service) Users(ctx context.Context, pid int64) ([]*core.PoolUser, error) {
	var users []*core.PoolUser
	err := s.exec.View(ctx, func(ctx context.Context) error {
		if _, err := s.pool(pid); err != nil {
			return err
		}

		for _, user := range s.poolUsers(pid) {
			u := *user
			users = append(users, &u)
		}
		return nil
	})

	sort.Slice(users, func(i, j int) bool {
		return users[i].Address < users[j].Address
	})

	return users, err
}
