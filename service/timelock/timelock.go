package timelock

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"huski/core"
	"huski/pkg/address"
	"huski/pkg/metrics"
	"huski/pkg/txn"

	"github.com/fox-one/pkg/logger"
	"lukechampine.com/blake3"
)

const (
	prefix = "timelock/"

	// DefaultDelay minimum wait between queue and execute
	DefaultDelay = 2 * 24 * time.Hour
	// DefaultGracePeriod a ready proposal stays executable this long
	DefaultGracePeriod = 14 * 24 * time.Hour
)

// Options timelock settings
type Options struct {
	Admins      []string
	Delay       time.Duration
	GracePeriod time.Duration
}

// Service timelock engine
type Service interface {
	core.ITimelockService
	Load(ctx context.Context) error
	SetClock(now func() time.Time)
}

type service struct {
	exec      *txn.Executor
	admins    map[string]bool
	delay     time.Duration
	grace     time.Duration
	handlers  map[core.ActionType]core.ProposalHandler
	proposals map[string]*core.Proposal
	now       func() time.Time
}

// Address module address the queued commands run as
func Address() string {
	return address.Module("timelock")
}

// New new timelock
func New(exec *txn.Executor, opt Options) Service {
	if opt.Delay <= 0 {
		opt.Delay = DefaultDelay
	}

	if opt.GracePeriod <= 0 {
		opt.GracePeriod = DefaultGracePeriod
	}

	admins := make(map[string]bool, len(opt.Admins))
	for _, admin := range opt.Admins {
		admins[admin] = true
	}

	return &service{
		exec:      exec,
		admins:    admins,
		delay:     opt.Delay,
		grace:     opt.GracePeriod,
		handlers:  map[core.ActionType]core.ProposalHandler{},
		proposals: map[string]*core.Proposal{},
		now:       time.Now,
	}
}

func (s *service) Address() string {
	return Address()
}

func (s *service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *service) Register(action core.ActionType, handler core.ProposalHandler) {
	s.handlers[action] = handler
}

func (s *service) Load(ctx context.Context) error {
	return s.exec.Run(ctx, func(ctx context.Context) error {
		if err := s.exec.Scan(ctx, prefix, func(_ string, data []byte) error {
			var p core.Proposal
			if err := json.Unmarshal(data, &p); err != nil {
				return err
			}

			if p.Hash != "" {
				s.proposals[p.Hash] = &p
			}
			return nil
		}); err != nil {
			return err
		}

		s.observe()
		return nil
	})
}

// Hash content hash of a queued command
func Hash(action core.ActionType, content []byte, eta time.Time) string {
	var b bytes.Buffer
	_ = binary.Write(&b, binary.BigEndian, int64(action))
	_ = binary.Write(&b, binary.BigEndian, eta.Unix())
	b.Write(content)

	sum := blake3.Sum256(b.Bytes())
	return hex.EncodeToString(sum[:])
}

func (s *service) touch(ctx context.Context, p *core.Proposal) *core.Proposal {
	prev := *p
	txn.OnRollback(ctx, func() { *p = prev })
	hash := p.Hash
	txn.Stage(ctx, prefix+hash, func() interface{} { return s.proposals[hash] })
	return p
}

// observe reads the proposal map, call it inside an operation
func (s *service) observe() {
	pending := 0
	for _, p := range s.proposals {
		if p.Pending() {
			pending++
		}
	}

	metrics.Ledger().ObservePendingProposals(pending)
}

func (s *service) Queue(ctx context.Context, caller string, action core.ActionType, content []byte, eta time.Time) (*core.Proposal, error) {
	var proposal core.Proposal
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if !s.admins[caller] {
			return core.ErrUnauthorized
		}

		if !action.IsProposal() {
			return core.ErrOperationForbidden
		}

		if _, ok := s.handlers[action]; !ok {
			return core.ErrOperationForbidden
		}

		if !json.Valid(content) {
			return core.ErrInvalidAmount
		}

		now := s.now()
		if eta.Before(now.Add(s.delay)) {
			return core.ErrInvalidETA
		}

		hash := Hash(action, content, eta)
		if _, ok := s.proposals[hash]; ok {
			return core.ErrProposalDuplicated
		}

		p := &core.Proposal{
			Hash:      hash,
			Creator:   caller,
			Action:    action,
			Content:   content,
			ETA:       eta.UTC().Truncate(time.Second),
			CreatedAt: now.UTC(),
		}

		s.proposals[hash] = p
		txn.OnRollback(ctx, func() { delete(s.proposals, hash) })
		s.touch(ctx, p)

		proposal = *p
		s.observe()
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("proposal", proposal.Hash).Infof("queue %s by %s, eta %s", action, caller, proposal.ETA.Format(time.RFC3339))
	return &proposal, nil
}

// Execute runs the command of a ready proposal as the timelock address,
// a failing command leaves the proposal queued
func (s *service) Execute(ctx context.Context, caller, hash string) (*core.Proposal, error) {
	var proposal core.Proposal
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if !s.admins[caller] {
			return core.ErrUnauthorized
		}

		p, err := s.find(hash)
		if err != nil {
			return err
		}

		now := s.now()
		switch {
		case p.ExecutedAt.Valid:
			return core.ErrProposalExecuted
		case p.CanceledAt.Valid:
			return core.ErrProposalCanceled
		case now.Before(p.ETA):
			return core.ErrProposalNotReady
		case now.After(p.ETA.Add(s.grace)):
			return core.ErrProposalExpired
		}

		handler, ok := s.handlers[p.Action]
		if !ok {
			return core.ErrOperationForbidden
		}

		s.touch(ctx, p).ExecutedAt = sql.NullTime{Time: now.UTC(), Valid: true}
		if err := handler(ctx, Address(), p); err != nil {
			return err
		}

		proposal = *p
		s.observe()
		return nil
	})

	metrics.Ledger().ObserveOperation("timelock", "execute", err)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("proposal", hash).Infof("execute %s by %s", proposal.Action, caller)
	return &proposal, nil
}

func (s *service) Cancel(ctx context.Context, caller, hash string) (*core.Proposal, error) {
	var proposal core.Proposal
	err := s.exec.Run(ctx, func(ctx context.Context) error {
		if !s.admins[caller] {
			return core.ErrUnauthorized
		}

		p, err := s.find(hash)
		if err != nil {
			return err
		}

		if p.ExecutedAt.Valid {
			return core.ErrProposalExecuted
		}

		if p.CanceledAt.Valid {
			return core.ErrProposalCanceled
		}

		s.touch(ctx, p).CanceledAt = sql.NullTime{Time: s.now().UTC(), Valid: true}
		proposal = *p
		s.observe()
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).WithField("proposal", hash).Infof("cancel %s by %s", proposal.Action, caller)
	return &proposal, nil
}

func (s *service) find(hash string) (*core.Proposal, error) {
	p, ok := s.proposals[hash]
	if !ok {
		return nil, core.ErrProposalNotFound
	}

	return p, nil
}

func (s *service) Find(ctx context.Context, hash string) (*core.Proposal, error) {
	var proposal core.Proposal
	err := s.exec.View(ctx, func(ctx context.Context) error {
		p, err := s.find(hash)
		if err != nil {
			return err
		}

		proposal = *p
		return nil
	})

	return &proposal, err
}

// List proposals by creation time
func (s *service) List(ctx context.Context) ([]*core.Proposal, error) {
	var proposals []*core.Proposal
	err := s.exec.View(ctx, func(ctx context.Context) error {
		for _, p := range s.proposals {
			proposal := *p
			proposals = append(proposals, &proposal)
		}
		return nil
	})

	sort.Slice(proposals, func(i, j int) bool {
		if proposals[i].CreatedAt.Equal(proposals[j].CreatedAt) {
			return proposals[i].Hash < proposals[j].Hash
		}
		return proposals[i].CreatedAt.Before(proposals[j].CreatedAt)
	})

	return proposals, err
}
