package core

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx/types"
)

// LedgerEntry a persisted ledger record
type LedgerEntry struct {
	Key       string         `sql:"size:191;PRIMARY_KEY" gorm:"column:ledger_key" json:"key,omitempty"`
	Value     types.JSONText `sql:"type:TEXT" json:"value,omitempty"`
	Version   int64          `sql:"default:0" json:"version,omitempty"`
	CreatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"created_at,omitempty"`
	UpdatedAt time.Time      `sql:"default:CURRENT_TIMESTAMP" json:"updated_at,omitempty"`
}

// LedgerStore durable storage of engine state, written in atomic batches
type LedgerStore interface {
	Write(ctx context.Context, entries []*LedgerEntry) error
	Get(ctx context.Context, key string) (*LedgerEntry, bool, error)
	Scan(ctx context.Context, prefix string, fn func(entry *LedgerEntry) error) error
}
