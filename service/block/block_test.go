package block

import (
	"context"
	"testing"
	"time"

	"huski/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	cfg := &core.Config{App: core.App{Genesis: 1600000000, SecondsPerBlock: 3}}
	s := New(cfg)

	b, err := s.GetBlock(ctx, time.Unix(1600000300, 0))
	require.Nil(t, err)
	assert.Equal(t, int64(100), b)

	current, err := s.CurrentBlock(ctx)
	require.Nil(t, err)
	assert.True(t, current > b)
}

func TestManual(t *testing.T) {
	ctx := context.Background()
	m := NewManual(10)

	b, _ := m.CurrentBlock(ctx)
	assert.Equal(t, int64(10), b)
	assert.Equal(t, int64(15), m.Advance(5))
	m.Set(100)
	b, _ = m.CurrentBlock(ctx)
	assert.Equal(t, int64(100), b)
}
