package reinvest

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorker struct {
	name    string
	err     error
	callers []string
}

func (f *fakeWorker) Name() string { return f.name }

func (f *fakeWorker) Reinvest(ctx context.Context, caller string) (decimal.Decimal, error) {
	f.callers = append(f.callers, caller)
	return decimal.NewFromInt(1), f.err
}

func TestReinvest(t *testing.T) {
	broken := &fakeWorker{name: "broken", err: errors.New("farm closed")}
	healthy := &fakeWorker{name: "healthy"}

	w, err := New("UTC", "", "keeper", broken, healthy)
	require.Nil(t, err)

	assert.Equal(t, broken.err, w.onWork(context.Background()))
	assert.Equal(t, []string{"keeper"}, broken.callers)
	assert.Equal(t, []string{"keeper"}, healthy.callers)
}
