package cmd

import (
	"context"
	"fmt"
	"time"

	"huski/core"
	"huski/handler/auth"
	"huski/handler/rest"
	"huski/pkg/interest"
	"huski/pkg/txn"
	"huski/service/fairlaunch"
	"huski/service/farmworker"
	"huski/service/oracle"
	"huski/service/stronk"
	"huski/service/timelock"
	"huski/service/token"
	"huski/service/vault"
	"huski/service/vaultconfig"

	"github.com/fox-one/pkg/logger"
)

type nodeVault struct {
	service vault.Service
	config  vaultconfig.Service
	workers []*farmworker.Worker
}

// node the wired engines of a huski ledger
type node struct {
	blocks     core.IBlockService
	bank       *token.Bank
	reward     *token.Token
	fairlaunch fairlaunch.Service
	oracle     *oracle.Oracle
	timelock   timelock.Service
	stronk     stronk.Service
	vaults     []*nodeVault
}

func (n *node) lookup(symbol string) (core.IVaultService, core.IVaultConfigService, bool) {
	for _, v := range n.vaults {
		if v.service.Symbol() == symbol {
			return v.service, v.config, true
		}
	}

	return nil, nil, false
}

func (n *node) vaultServices() []core.IVaultService {
	services := make([]core.IVaultService, 0, len(n.vaults))
	for _, v := range n.vaults {
		services = append(services, v.service)
	}

	return services
}

func (n *node) restConfig(transactions core.TransactionStore) rest.Config {
	vaults := make([]rest.Vault, 0, len(n.vaults))
	for _, v := range n.vaults {
		vaults = append(vaults, rest.Vault{Service: v.service, Config: v.config})
	}

	return rest.Config{
		Blocks:       n.blocks,
		Vaults:       vaults,
		FairLaunch:   n.fairlaunch,
		Bank:         n.bank,
		Timelock:     n.timelock,
		Transactions: transactions,
		Stronk:       n.stronk,
		Auth:         auth.New(time.Duration(cfg.App.AuthMaxSkew) * time.Second),
	}
}

// deployer first admin, owns the plain tokens and the farm workers
func deployer() string {
	if len(cfg.Admins) == 0 {
		return ""
	}

	return cfg.Admins[0]
}

func feeders() []string {
	list := append([]string{}, cfg.Oracle.Feeders...)
	if cfg.Keeper.Address != "" {
		list = append(list, cfg.Keeper.Address)
	}

	return list
}

// provideNode builds every engine, loads the persisted state and
// bootstraps the reward minter and the debt pools on first start.
// Governed settings are owned by the timelock.
func provideNode(ctx context.Context, exec *txn.Executor, blocks core.IBlockService) (*node, error) {
	log := logger.FromContext(ctx)
	gov := timelock.Address()

	n := &node{blocks: blocks}

	n.reward = token.NewLockable(exec, cfg.Token.Symbol, gov, cfg.Token.StartReleaseBlock, cfg.Token.EndReleaseBlock)
	n.bank = token.NewBank(n.reward)
	for _, symbol := range cfg.Tokens {
		n.bank.Register(token.New(exec, symbol, deployer()))
	}

	n.timelock = timelock.New(exec, timelock.Options{
		Admins:      cfg.Admins,
		Delay:       time.Duration(cfg.Timelock.Delay) * time.Second,
		GracePeriod: time.Duration(cfg.Timelock.GracePeriod) * time.Second,
	})

	n.oracle = oracle.New(exec, gov, feeders()...)

	// vault tokens join the bank before fairlaunch loads its pools
	type pending struct {
		entry  core.VaultEntry
		base   *token.Token
		shares *token.Token
		debt   *token.Token
	}

	var vaults []pending
	for _, entry := range cfg.Vaults {
		base, ok := n.bank.Find(entry.BaseToken)
		if !ok {
			return nil, fmt.Errorf("vault %s: base token %s not configured", entry.Symbol, entry.BaseToken)
		}

		addr := vault.Address(entry.Symbol)
		p := pending{
			entry:  entry,
			base:   base,
			shares: token.New(exec, entry.Symbol, addr),
			debt:   token.NewDebt(exec, "debt"+entry.BaseToken, addr, fairlaunch.Address()),
		}

		n.bank.Register(p.shares)
		n.bank.Register(p.debt)
		vaults = append(vaults, p)
	}

	n.fairlaunch = fairlaunch.New(exec, n.reward, n.bank, fairlaunch.Options{
		Owner:          gov,
		Dev:            cfg.FairLaunch.Dev,
		DevFeeBps:      cfg.FairLaunch.DevFeeBps,
		RewardPerBlock: cfg.FairLaunch.RewardPerBlock,
		StartBlock:     cfg.FairLaunch.StartBlock,
		BonusLockBps:   cfg.FairLaunch.BonusLockBps,
		BonusEndBlock:  cfg.FairLaunch.BonusEndBlock,
	})

	loads := []func(context.Context) error{n.oracle.Load, n.timelock.Load, n.fairlaunch.Load}
	if sc := cfg.Stronk; sc.Symbol != "" {
		shares := token.New(exec, sc.Symbol, stronk.Address(sc.Symbol))
		n.bank.Register(shares)
		n.stronk = stronk.New(exec, n.reward, shares, stronk.Options{
			HodlableEndBlock: sc.HodlableEndBlock,
			LockEndBlock:     sc.LockEndBlock,
		})
		loads = append(loads, n.stronk.Load)
	}

	if err := n.bank.Load(ctx); err != nil {
		return nil, err
	}

	for _, load := range loads {
		if err := load(ctx); err != nil {
			return nil, err
		}
	}

	if err := n.reward.SetMinter(ctx, gov, n.fairlaunch.Address(), true); err != nil {
		return nil, err
	}

	for _, p := range vaults {
		pool, err := ensureDebtPool(ctx, n.fairlaunch, gov, p.debt.Symbol(), p.entry.DebtPoolAlloc)
		if err != nil {
			return nil, err
		}

		model, err := interest.FromConfig(p.entry.InterestModel, cfg.App.SecondsPerBlock)
		if err != nil {
			return nil, err
		}

		v := &nodeVault{}
		v.config = vaultconfig.New(exec, p.entry.Symbol, gov, n.oracle, model, core.VaultParams{
			MinDebtSize:    p.entry.MinDebtSize,
			ReservePoolBps: p.entry.ReservePoolBps,
			KillPrizeBps:   p.entry.KillPrizeBps,
			MaxPriceAge:    cfg.Oracle.MaxPriceAge,
		})

		addr := vault.Address(p.entry.Symbol)
		for _, we := range p.entry.Workers {
			w := farmworker.New(exec, we.Name, deployer(), addr, p.base, we.FarmToken)
			if err := w.Load(ctx); err != nil {
				return nil, err
			}

			if we.YieldPerBlock.IsPositive() {
				if err := w.SetYield(ctx, deployer(), we.YieldPerBlock, we.ReinvestBountyBps); err != nil {
					return nil, err
				}
			}

			v.config.RegisterWorker(we.Name, w, core.WorkerRisk{
				AcceptDebt:   we.AcceptDebt,
				WorkFactor:   we.WorkFactor,
				KillFactor:   we.KillFactor,
				MaxPriceDiff: we.MaxPriceDiff,
			})
			v.workers = append(v.workers, w)
		}

		if err := v.config.Load(ctx); err != nil {
			return nil, err
		}

		v.service = vault.New(exec, vault.Options{
			Symbol:     p.entry.Symbol,
			Owner:      gov,
			Base:       p.base,
			Shares:     p.shares,
			Debt:       p.debt,
			FairLaunch: n.fairlaunch,
			DebtPoolID: pool.ID,
			Config:     v.config,
		})

		if err := v.service.Load(ctx); err != nil {
			return nil, err
		}

		n.vaults = append(n.vaults, v)
		log.Infof("vault %s loaded, debt pool %d, %d workers", p.entry.Symbol, pool.ID, len(v.workers))
	}

	timelock.RegisterFairLaunch(n.timelock, n.fairlaunch)
	timelock.RegisterVaults(n.timelock, n.lookup)
	timelock.RegisterOracle(n.timelock, n.oracle)

	return n, nil
}

func ensureDebtPool(ctx context.Context, fl core.IFairLaunchService, gov, stakeToken string, alloc int64) (*core.Pool, error) {
	pools, err := fl.Pools(ctx)
	if err != nil {
		return nil, err
	}

	for _, pool := range pools {
		if pool.StakeToken == stakeToken {
			return pool, nil
		}
	}

	if alloc <= 0 {
		alloc = 1
	}

	return fl.AddPool(ctx, gov, alloc, stakeToken, true)
}
