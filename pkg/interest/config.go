package interest

import (
	"fmt"
	"strings"

	"huski/core"
)

// FromConfig build the model described by cfg
func FromConfig(cfg core.InterestModel, secondsPerBlock int64) (Model, error) {
	blocks := BlocksPerYearOf(secondsPerBlock)

	switch strings.ToLower(cfg.Kind) {
	case "", "triple":
		return NewTripleSlope(blocks), nil
	case "flat":
		return NewFlat(cfg.APR, blocks), nil
	case "jump":
		return &JumpRate{
			BaseRate:       cfg.BaseRate,
			Multiplier:     cfg.Multiplier,
			JumpMultiplier: cfg.JumpRate,
			Kink:           cfg.Kink,
			BlocksPerYear:  blocks,
		}, nil
	default:
		return nil, fmt.Errorf("unknown interest model %q", cfg.Kind)
	}
}
