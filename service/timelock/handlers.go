package timelock

import (
	"context"
	"encoding/json"

	"huski/core"
	"huski/core/proposal"
)

// VaultLookup resolves a vault and its config by symbol
type VaultLookup func(symbol string) (core.IVaultService, core.IVaultConfigService, bool)

func decode(p *core.Proposal, v interface{}) error {
	if err := json.Unmarshal(p.Content, v); err != nil {
		return core.ErrInvalidAmount
	}

	return nil
}

// RegisterFairLaunch bonus, emission and pool commands
func RegisterFairLaunch(tl core.ITimelockService, fl core.IFairLaunchService) {
	tl.Register(core.ActionTypeProposalSetBonus, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetBonusReq
		if err := decode(p, &req); err != nil {
			return err
		}

		return fl.SetBonus(ctx, caller, req.Multiplier, req.EndBlock, req.LockBps)
	})

	tl.Register(core.ActionTypeProposalSetRewardPerBlock, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetRewardPerBlockReq
		if err := decode(p, &req); err != nil {
			return err
		}

		return fl.SetRewardPerBlock(ctx, caller, req.RewardPerBlock)
	})

	tl.Register(core.ActionTypeProposalAddPool, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.AddPoolReq
		if err := decode(p, &req); err != nil {
			return err
		}

		_, err := fl.AddPool(ctx, caller, req.AllocPoint, req.StakeToken, req.WithUpdate)
		return err
	})

	tl.Register(core.ActionTypeProposalSetPool, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetPoolReq
		if err := decode(p, &req); err != nil {
			return err
		}

		return fl.SetPool(ctx, caller, req.PoolID, req.AllocPoint, req.WithUpdate)
	})
}

// RegisterVaults vault params, worker risk and reserve commands
func RegisterVaults(tl core.ITimelockService, lookup VaultLookup) {
	tl.Register(core.ActionTypeProposalSetVaultParams, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetVaultParamsReq
		if err := decode(p, &req); err != nil {
			return err
		}

		_, config, ok := lookup(req.Vault)
		if !ok {
			return core.ErrVaultNotFound
		}

		return config.SetParams(ctx, caller, req.Params)
	})

	tl.Register(core.ActionTypeProposalSetWorker, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetWorkerReq
		if err := decode(p, &req); err != nil {
			return err
		}

		_, config, ok := lookup(req.Vault)
		if !ok {
			return core.ErrVaultNotFound
		}

		return config.SetWorker(ctx, caller, req.Worker, req.Risk)
	})

	tl.Register(core.ActionTypeProposalWithdrawReserve, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.WithdrawReserveReq
		if err := decode(p, &req); err != nil {
			return err
		}

		vault, _, ok := lookup(req.Vault)
		if !ok {
			return core.ErrVaultNotFound
		}

		return vault.WithdrawReserve(ctx, caller, req.To, req.Amount)
	})
}

// RegisterOracle feeder commands
func RegisterOracle(tl core.ITimelockService, oracle core.IOracleService) {
	tl.Register(core.ActionTypeProposalSetFeeder, func(ctx context.Context, caller string, p *core.Proposal) error {
		var req proposal.SetFeederReq
		if err := decode(p, &req); err != nil {
			return err
		}

		return oracle.SetFeeder(ctx, caller, req.Feeder, req.OK)
	})
}
