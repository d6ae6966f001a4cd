package block

import (
	"context"
	"sync"
	"time"

	"huski/core"
	"huski/internal/huski"
)

type service struct {
	config *core.Config
}

// New new block service
func New(config *core.Config) core.IBlockService {
	return &service{
		config: config,
	}
}

//CurrentBlock current block
func (s *service) CurrentBlock(ctx context.Context) (int64, error) {
	return huski.CurrentBlock(ctx, s.config.App.SecondsPerBlock, s.config.App.Genesis)
}

// GetBlock get block by time
func (s *service) GetBlock(ctx context.Context, t time.Time) (int64, error) {
	return huski.GetBlockByTime(ctx, s.config.App.SecondsPerBlock, s.config.App.Genesis, t)
}

// Manual block clock moved by hand
type Manual struct {
	mu    sync.Mutex
	block int64
}

// NewManual new manual clock at block
func NewManual(block int64) *Manual {
	return &Manual{block: block}
}

// CurrentBlock current block
func (m *Manual) CurrentBlock(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.block, nil
}

// GetBlock manual clock has no time mapping, returns the current block
func (m *Manual) GetBlock(ctx context.Context, t time.Time) (int64, error) {
	return m.CurrentBlock(ctx)
}

// Set jump to block
func (m *Manual) Set(block int64) {
	m.mu.Lock()
	m.block = block
	m.mu.Unlock()
}

// Advance move n blocks forward
func (m *Manual) Advance(n int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.block += n
	return m.block
}
