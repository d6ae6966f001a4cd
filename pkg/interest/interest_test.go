package interest

import (
	"testing"

	"huski/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFlat(t *testing.T) {
	m := NewFlat(dec("0.3"), decimal.NewFromInt(100))

	assert.Equal(t, "0.003", m.RatePerBlock(dec("0.5")).String())
	assert.Equal(t, "30", Accrue(m, dec("1000"), 10, dec("0.1")).String())
	assert.True(t, Accrue(m, dec("1000"), 0, dec("0.1")).IsZero())
	assert.True(t, Accrue(m, decimal.Zero, 10, dec("0.1")).IsZero())
	assert.Equal(t, "0.3", AnnualRate(m, dec("0.2")).String())
}

func TestAccrueRoundsUp(t *testing.T) {
	m := NewFlat(dec("1"), decimal.NewFromInt(3))
	// rate 0.333333333333333333 per block
	got := Accrue(m, dec("1"), 1, decimal.Zero)
	assert.Equal(t, "0.333333333333333333", got.String())

	got = Accrue(m, dec("0.1"), 1, decimal.Zero)
	assert.Equal(t, "0.033333333333333334", got.String())
}

func TestJumpRate(t *testing.T) {
	m := &JumpRate{
		BaseRate:       dec("0.02"),
		Multiplier:     dec("0.1"),
		JumpMultiplier: dec("1"),
		Kink:           dec("0.8"),
		BlocksPerYear:  decimal.NewFromInt(100),
	}

	assert.Equal(t, "0.0007", m.RatePerBlock(dec("0.5")).String())
	assert.Equal(t, "0.001", m.RatePerBlock(dec("0.8")).String())
	assert.Equal(t, "0.002", m.RatePerBlock(dec("0.9")).String())
}

func TestTripleSlope(t *testing.T) {
	m := NewTripleSlope(decimal.NewFromInt(100))

	cases := map[string]string{
		"0":    "0",
		"0.3":  "0.1",
		"0.6":  "0.2",
		"0.75": "0.2",
		"0.95": "0.85",
		"1":    "1.5",
		"1.2":  "1.5",
	}

	for u, apr := range cases {
		t.Run(u, func(t *testing.T) {
			assert.Equal(t, apr, AnnualRate(m, dec(u)).String())
		})
	}
}

func TestModelsMonotonic(t *testing.T) {
	blocks := decimal.NewFromInt(10512000)
	models := map[string]Model{
		"flat":   NewFlat(dec("0.3"), blocks),
		"triple": NewTripleSlope(blocks),
		"jump": &JumpRate{
			BaseRate:       dec("0.02"),
			Multiplier:     dec("0.2"),
			JumpMultiplier: dec("3"),
			Kink:           dec("0.8"),
			BlocksPerYear:  blocks,
		},
	}

	for name, m := range models {
		t.Run(name, func(t *testing.T) {
			prev := decimal.Zero
			for i := 0; i <= 100; i++ {
				rate := m.RatePerBlock(decimal.New(int64(i), -2))
				assert.True(t, rate.GreaterThanOrEqual(prev), "rate decreased at %d%%", i)
				prev = rate
			}
		})
	}
}

func TestUtilization(t *testing.T) {
	assert.Equal(t, "0.25", Utilization(dec("25"), dec("75")).String())
	assert.True(t, Utilization(decimal.Zero, decimal.Zero).IsZero())
	assert.Equal(t, "1", Utilization(dec("10"), dec("-5")).String())
}

func TestFromConfig(t *testing.T) {
	m, err := FromConfig(core.InterestModel{}, 3)
	require.Nil(t, err)
	_, ok := m.(*TripleSlope)
	assert.True(t, ok)

	m, err = FromConfig(core.InterestModel{Kind: "flat", APR: decimal.New(1, -1)}, 3)
	require.Nil(t, err)
	assert.Equal(t, "0.1", AnnualRate(m, decimal.Zero).Round(6).String())

	m, err = FromConfig(core.InterestModel{Kind: "Jump", Kink: decimal.New(8, -1)}, 3)
	require.Nil(t, err)
	_, ok = m.(*JumpRate)
	assert.True(t, ok)

	_, err = FromConfig(core.InterestModel{Kind: "curve"}, 3)
	assert.NotNil(t, err)
}
