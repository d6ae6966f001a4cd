package core

import "strconv"

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unkown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001
	// ErrUnauthorized caller lacks the owner/admin role
	ErrUnauthorized ErrorCode = 100002

	// ErrVaultNotFound no vault
	ErrVaultNotFound ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrPositionNotFound no position
	ErrPositionNotFound ErrorCode = 100102
	// ErrWorkerNotFound no worker
	ErrWorkerNotFound ErrorCode = 100103
	// ErrInsufficientFunds vault idle funds cannot cover the borrow
	ErrInsufficientFunds ErrorCode = 100104
	//ErrInsufficientLiquidity insufficient liquidity
	ErrInsufficientLiquidity ErrorCode = 100105
	// ErrDebtTooSmall debt below min debt size
	ErrDebtTooSmall ErrorCode = 100106
	// ErrBadWorkFactor post work health out of work factor
	ErrBadWorkFactor ErrorCode = 100107
	// ErrInvalidPrice invalid price
	ErrInvalidPrice ErrorCode = 100108
	// ErrBorrowNotAllowed borrow not allowed
	ErrBorrowNotAllowed ErrorCode = 100109
	// ErrCannotLiquidate position is healthy
	ErrCannotLiquidate ErrorCode = 100110
	// ErrStalePrice oracle price too old
	ErrStalePrice ErrorCode = 100111
	// ErrUnstablePrice pool price deviates from oracle
	ErrUnstablePrice ErrorCode = 100112
	// ErrBadPositionWorker position belongs to another worker
	ErrBadPositionWorker ErrorCode = 100113

	// ErrPoolNotFound no pool
	ErrPoolNotFound ErrorCode = 100200
	// ErrDuplicateStakeToken stake token already added
	ErrDuplicateStakeToken ErrorCode = 100201
	// ErrBadFunder bad sof
	ErrBadFunder ErrorCode = 100202
	// ErrNotFunder only funder
	ErrNotFunder ErrorCode = 100203
	// ErrNothingToHarvest nothing to harvest
	ErrNothingToHarvest ErrorCode = 100204

	// ErrInsufficientBalance token balance too low
	ErrInsufficientBalance ErrorCode = 100300
	// ErrTransferNotAllowed restricted token transfer
	ErrTransferNotAllowed ErrorCode = 100301
	// ErrTokenNotFound no token
	ErrTokenNotFound ErrorCode = 100302

	// ErrProposalNotFound no proposal
	ErrProposalNotFound ErrorCode = 100400
	// ErrProposalNotReady eta not reached
	ErrProposalNotReady ErrorCode = 100401
	// ErrProposalExpired grace period passed
	ErrProposalExpired ErrorCode = 100402
	// ErrProposalExecuted already executed
	ErrProposalExecuted ErrorCode = 100403
	// ErrProposalCanceled already canceled
	ErrProposalCanceled ErrorCode = 100404
	// ErrInvalidETA eta shorter than the delay
	ErrInvalidETA ErrorCode = 100405
	// ErrProposalDuplicated same proposal queued
	ErrProposalDuplicated ErrorCode = 100406

	// ErrAlreadyHodl account already hodled
	ErrAlreadyHodl ErrorCode = 100500
	// ErrHodlClosed hodlable window passed
	ErrHodlClosed ErrorCode = 100501
	// ErrStillLocked lock end or reward release end not reached
	ErrStillLocked ErrorCode = 100502
)

var errorMessages = map[ErrorCode]string{
	ErrUnknown:               "unknown",
	ErrOperationForbidden:    "operation forbidden",
	ErrUnauthorized:          "unauthorized",
	ErrVaultNotFound:         "vault not found",
	ErrInvalidAmount:         "invalid amount",
	ErrPositionNotFound:      "position not found",
	ErrWorkerNotFound:        "worker not found",
	ErrInsufficientFunds:     "insufficient funds",
	ErrInsufficientLiquidity: "insufficient liquidity",
	ErrDebtTooSmall:          "too small debt size",
	ErrBadWorkFactor:         "bad work factor",
	ErrInvalidPrice:          "bad price data",
	ErrBorrowNotAllowed:      "worker not accept more debt",
	ErrCannotLiquidate:       "can't liquidate",
	ErrStalePrice:            "price too stale",
	ErrUnstablePrice:         "price not stable",
	ErrBadPositionWorker:     "bad position worker",
	ErrPoolNotFound:          "pool not found",
	ErrDuplicateStakeToken:   "stake token already added",
	ErrBadFunder:             "bad sof",
	ErrNotFunder:             "only funder",
	ErrNothingToHarvest:      "nothing to harvest",
	ErrInsufficientBalance:   "insufficient balance",
	ErrTransferNotAllowed:    "transfer not allowed",
	ErrTokenNotFound:         "token not found",
	ErrProposalNotFound:      "proposal not found",
	ErrProposalNotReady:      "hasn't surpassed time lock",
	ErrProposalExpired:       "transaction is stale",
	ErrProposalExecuted:      "proposal already executed",
	ErrProposalCanceled:      "proposal canceled",
	ErrInvalidETA:            "estimated execution block must satisfy delay",
	ErrProposalDuplicated:    "proposal already queued",
	ErrAlreadyHodl:           "user already hodl",
	ErrHodlClosed:            "block number exceeds hodlable end block",
	ErrStillLocked:           "block number have not reach lock end block",
}

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

// Message human readable message
func (e ErrorCode) Message() string {
	if msg, ok := errorMessages[e]; ok {
		return msg
	}

	return e.String()
}

func (e ErrorCode) Error() string {
	return e.String() + ": " + e.Message()
}
