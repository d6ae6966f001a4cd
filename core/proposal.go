package core

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx/types"
)

type (
	// Proposal queued admin command
	Proposal struct {
		Hash       string         `json:"hash,omitempty"`
		Creator    string         `json:"creator,omitempty"`
		Action     ActionType     `json:"action,omitempty"`
		Content    types.JSONText `json:"content,omitempty"`
		ETA        time.Time      `json:"eta"`
		CreatedAt  time.Time      `json:"created_at"`
		ExecutedAt sql.NullTime   `json:"executed_at,omitempty"`
		CanceledAt sql.NullTime   `json:"canceled_at,omitempty"`
	}

	// ProposalHandler applies a proposal, caller is the timelock address
	ProposalHandler func(ctx context.Context, caller string, p *Proposal) error

	// ITimelockService two phase admin command queue
	ITimelockService interface {
		Address() string
		Register(action ActionType, handler ProposalHandler)
		Queue(ctx context.Context, caller string, action ActionType, content []byte, eta time.Time) (*Proposal, error)
		Execute(ctx context.Context, caller, hash string) (*Proposal, error)
		Cancel(ctx context.Context, caller, hash string) (*Proposal, error)
		Find(ctx context.Context, hash string) (*Proposal, error)
		List(ctx context.Context) ([]*Proposal, error)
	}
)

// Pending not executed nor canceled
func (p *Proposal) Pending() bool {
	return !p.ExecutedAt.Valid && !p.CanceledAt.Valid
}
