package launcher

import (
	"fmt"
	"math"
)

const (
	StrategyPhysics = "physics"
	StrategyTable   = "table"
)

// Config selects and tunes a solver.
type Config struct {
	Strategy       string  `json:"strategy"`
	LaunchAngleDeg float64 `json:"launch_angle_deg"`
	WheelRadius    float64 `json:"wheel_radius"`
	Correction     float64 `json:"correction"`
	Table          []Entry `json:"table,omitempty"`
}

// DefaultConfig uses the physics model with a 30° launch angle and a
// 1 inch flywheel.
func DefaultConfig() Config {
	return Config{
		Strategy:       StrategyPhysics,
		LaunchAngleDeg: 30,
		WheelRadius:    0.0254,
		Correction:     1.0,
		Table:          DefaultEntries(),
	}
}

// AngleRadians returns the launch angle in radians.
func (c Config) AngleRadians() float64 {
	return c.LaunchAngleDeg * math.Pi / 180
}

// NewSolver builds the solver named by cfg.Strategy.
func NewSolver(cfg Config) (Solver, error) {
	switch cfg.Strategy {
	case StrategyPhysics, "":
		if cfg.WheelRadius <= 0 {
			return nil, fmt.Errorf("physics solver: wheel radius must be positive, got %f", cfg.WheelRadius)
		}
		return Physics{
			Angle:       cfg.AngleRadians(),
			WheelRadius: cfg.WheelRadius,
			Correction:  cfg.Correction,
		}, nil
	case StrategyTable:
		entries := cfg.Table
		if len(entries) == 0 {
			entries = DefaultEntries()
		}
		t, err := NewTable(entries)
		if err != nil {
			return nil, fmt.Errorf("table solver: %w", err)
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown launcher strategy %q", cfg.Strategy)
	}
}
