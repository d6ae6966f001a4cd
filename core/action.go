package core

import "strings"

// ActionType ledger action type
type ActionType int

const (
	// ActionTypeDefault default
	ActionTypeDefault ActionType = iota
	// ActionTypeDeposit vault deposit
	ActionTypeDeposit
	// ActionTypeWithdraw vault withdraw
	ActionTypeWithdraw
	// ActionTypeWork open or adjust position
	ActionTypeWork
	// ActionTypeKill liquidate position
	ActionTypeKill
	// ActionTypeStake fairlaunch deposit
	ActionTypeStake
	// ActionTypeUnstake fairlaunch withdraw
	ActionTypeUnstake
	// ActionTypeHarvest fairlaunch harvest
	ActionTypeHarvest
	// ActionTypeEmergencyWithdraw fairlaunch emergency withdraw
	ActionTypeEmergencyWithdraw
	// ActionTypeUnlock reward token unlock
	ActionTypeUnlock
	// ActionTypeTransfer token transfer
	ActionTypeTransfer
	// ActionTypeQueueProposal timelock queue
	ActionTypeQueueProposal
	// ActionTypeExecuteProposal timelock execute
	ActionTypeExecuteProposal
	// ActionTypeCancelProposal timelock cancel
	ActionTypeCancelProposal
	// ActionTypeHodl lock reward tokens into the stronk token
	ActionTypeHodl
	// ActionTypeUnhodl swap the stronk token back
	ActionTypeUnhodl

	// ActionTypeProposalSetBonus set fairlaunch bonus
	ActionTypeProposalSetBonus ActionType = iota + 90
	// ActionTypeProposalSetRewardPerBlock set reward per block
	ActionTypeProposalSetRewardPerBlock
	// ActionTypeProposalAddPool add fairlaunch pool
	ActionTypeProposalAddPool
	// ActionTypeProposalSetPool set pool alloc point
	ActionTypeProposalSetPool
	// ActionTypeProposalSetVaultParams set vault params
	ActionTypeProposalSetVaultParams
	// ActionTypeProposalSetWorker set worker risk config
	ActionTypeProposalSetWorker
	// ActionTypeProposalWithdrawReserve withdraw vault reserve
	ActionTypeProposalWithdrawReserve
	// ActionTypeProposalSetFeeder add or remove price feeder
	ActionTypeProposalSetFeeder
)

var actionNames = map[ActionType]string{
	ActionTypeDefault:                   "default",
	ActionTypeDeposit:                   "deposit",
	ActionTypeWithdraw:                  "withdraw",
	ActionTypeWork:                      "work",
	ActionTypeKill:                      "kill",
	ActionTypeStake:                     "stake",
	ActionTypeUnstake:                   "unstake",
	ActionTypeHarvest:                   "harvest",
	ActionTypeEmergencyWithdraw:         "emergency_withdraw",
	ActionTypeUnlock:                    "unlock",
	ActionTypeTransfer:                  "transfer",
	ActionTypeQueueProposal:             "queue_proposal",
	ActionTypeExecuteProposal:           "execute_proposal",
	ActionTypeCancelProposal:            "cancel_proposal",
	ActionTypeHodl:                      "hodl",
	ActionTypeUnhodl:                    "unhodl",
	ActionTypeProposalSetBonus:          "set_bonus",
	ActionTypeProposalSetRewardPerBlock: "set_reward_per_block",
	ActionTypeProposalAddPool:           "add_pool",
	ActionTypeProposalSetPool:           "set_pool",
	ActionTypeProposalSetVaultParams:    "set_vault_params",
	ActionTypeProposalSetWorker:         "set_worker",
	ActionTypeProposalWithdrawReserve:   "withdraw_reserve",
	ActionTypeProposalSetFeeder:         "set_feeder",
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}

	return "unknown"
}

// IsProposal whether the action can be queued in the timelock
func (a ActionType) IsProposal() bool {
	return a >= ActionTypeProposalSetBonus && a <= ActionTypeProposalSetFeeder
}

// ParseActionType parse action from name
func ParseActionType(name string) (ActionType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for a, n := range actionNames {
		if n == name {
			return a, true
		}
	}

	return ActionTypeDefault, false
}
