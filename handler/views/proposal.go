package views

import (
	"time"

	"huski/core"
	"huski/service/timelock"

	"github.com/jmoiron/sqlx/types"
)

// Proposal timelock proposal view
type Proposal struct {
	Hash       string         `json:"hash"`
	Creator    string         `json:"creator"`
	Action     string         `json:"action"`
	Status     string         `json:"status"`
	Content    types.JSONText `json:"content,omitempty"`
	ETA        time.Time      `json:"eta"`
	CreatedAt  time.Time      `json:"created_at"`
	ExecutedAt *time.Time     `json:"executed_at,omitempty"`
	CanceledAt *time.Time     `json:"canceled_at,omitempty"`
}

func ProposalView(p *core.Proposal) Proposal {
	view := Proposal{
		Hash:      p.Hash,
		Creator:   p.Creator,
		Action:    p.Action.String(),
		Status:    timelock.Status(p),
		Content:   p.Content,
		ETA:       p.ETA,
		CreatedAt: p.CreatedAt,
	}

	if p.ExecutedAt.Valid {
		view.ExecutedAt = &p.ExecutedAt.Time
	}

	if p.CanceledAt.Valid {
		view.CanceledAt = &p.CanceledAt.Time
	}

	return view
}
