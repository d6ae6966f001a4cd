package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

const (
	// TransactionKeyShares shares
	TransactionKeyShares = "shares"
	// TransactionKeyPosition position id
	TransactionKeyPosition = "position"
	// TransactionKeyDebt debt
	TransactionKeyDebt = "debt"
	// TransactionKeyPrize kill prize
	TransactionKeyPrize = "prize"
	// TransactionKeyLocked locked reward
	TransactionKeyLocked = "locked"
	// TransactionKeyBeneficiary beneficiary
	TransactionKeyBeneficiary = "beneficiary"
	// TransactionKeyProposal proposal hash
	TransactionKeyProposal = "proposal"
)

// TransactionExtraData extra data
type TransactionExtraData map[string]interface{}

// NewTransactionExtra new transaction extra instance
func NewTransactionExtra() TransactionExtraData {
	d := make(TransactionExtraData)
	return d
}

// Put put data
func (t TransactionExtraData) Put(key string, value interface{}) TransactionExtraData {
	t[key] = value
	return t
}

// Format format as []byte by default
func (t TransactionExtraData) Format() []byte {
	bs, e := json.Marshal(t)
	if e != nil {
		return []byte("{}")
	}

	return bs
}

// Transaction audit record of a committed ledger operation
type Transaction struct {
	ID        int64           `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id,omitempty"`
	TraceID   string          `sql:"size:36;unique_index:idx_transactions_trace_id" json:"trace_id,omitempty"`
	Action    ActionType      `json:"action,omitempty"`
	Caller    string          `sql:"size:64;index:idx_transactions_caller" json:"caller,omitempty"`
	Target    string          `sql:"size:64;index:idx_transactions_target" json:"target,omitempty"`
	Amount    decimal.Decimal `sql:"type:decimal(64,18)" json:"amount,omitempty"`
	Block     int64           `json:"block,omitempty"`
	Data      types.JSONText  `sql:"type:TEXT" json:"data,omitempty"`
	CreatedAt time.Time       `sql:"default:CURRENT_TIMESTAMP;index:idx_transactions_created_at" json:"created_at,omitempty"`
}

// SetExtraData set extra data
func (t *Transaction) SetExtraData(extra TransactionExtraData) {
	data := []byte("{}")
	if extra != nil {
		data = extra.Format()
	}

	t.Data = data
}

// TransactionStore transaction store interface
type TransactionStore interface {
	Create(ctx context.Context, transaction *Transaction) error
	List(ctx context.Context, offset time.Time, limit int) ([]*Transaction, error)
	ListByCaller(ctx context.Context, caller string, limit int) ([]*Transaction, error)
}
