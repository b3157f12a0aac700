package approach

import (
	"math"
	"testing"
	"time"

	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/vision"
)

const dt = 20 * time.Millisecond

func seen(forward, lateral, yaw float64) vision.Observation {
	return vision.Observation{Acquired: true, Forward: forward, Lateral: lateral, Yaw: yaw, YawValid: true}
}

func TestSearchingWithoutTarget(t *testing.T) {
	c := New(DefaultConfig())
	res := c.Step(vision.Observation{}, dt)
	if res.State != Searching || res.AtTarget || !res.Command.IsZero() {
		t.Errorf("no target result = %+v", res)
	}
	if c.State() != Searching {
		t.Errorf("State() = %v", c.State())
	}
}

func TestConstantMode(t *testing.T) {
	c := New(DefaultConfig())
	tests := []struct {
		name string
		obs  vision.Observation
		want drive.Command
	}{
		{"far ahead", seen(1.0, 0, 0), drive.Command{Forward: 1}},
		{"overshot", seen(-0.5, 0, 0), drive.Command{Forward: -1}},
		{"right of tag", seen(0, 0.2, 0), drive.Command{Strafe: -1}},
		{"left of tag", seen(0, -0.2, 0), drive.Command{Strafe: 1}},
		{"tag to the right", seen(0, 0, 10), drive.Command{Rotate: 1}},
		{"tag to the left", seen(0, 0, -10), drive.Command{Rotate: -1}},
		{"all out", seen(2, 0.1, -6), drive.Command{Forward: 1, Strafe: -1, Rotate: -1}},
		{"inside tolerances", seen(0.1, 0.04, 4), drive.Command{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := c.Step(tt.obs, dt)
			if res.State != Approaching {
				t.Errorf("State = %v, want APPROACHING", res.State)
			}
			if res.Command != tt.want {
				t.Errorf("Command = %+v, want %+v", res.Command, tt.want)
			}
		})
	}
}

func TestAtTarget(t *testing.T) {
	c := New(DefaultConfig())
	tests := []struct {
		obs  vision.Observation
		want bool
	}{
		{seen(0.1, 0.04, 4), true},
		{seen(0.15, 0.05, 5), true},
		{seen(0.2, 0, 0), false},
		{seen(0, 0.06, 0), false},
		{seen(0, 0, 5.5), false},
	}
	for _, tt := range tests {
		res := c.Step(tt.obs, dt)
		if res.AtTarget != tt.want {
			t.Errorf("AtTarget(%+v) = %v, want %v", tt.obs, res.AtTarget, tt.want)
		}
		if tt.want && res.Status != "At target" {
			t.Errorf("Status = %q", res.Status)
		}
	}
}

func TestMissingYaw(t *testing.T) {
	c := New(DefaultConfig())
	obs := vision.Observation{Acquired: true, Forward: 1, Yaw: 20}
	res := c.Step(obs, dt)
	if res.Command.Rotate != 0 {
		t.Errorf("Rotate = %v without a valid yaw, want 0", res.Command.Rotate)
	}
	if res.Command.Forward != 1 {
		t.Errorf("Forward = %v, want 1", res.Command.Forward)
	}
}

func TestProportionalMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Axial = AxisConfig{Mode: Proportional, Tolerance: 0.05, Gain: 1.5, MinPower: 0.1, MaxPower: 0.8}
	c := New(cfg)

	tests := []struct {
		forward, want float64
	}{
		{0.4, 0.6},   // gain·error
		{2.0, 0.8},   // capped
		{0.06, 0.1},  // floored
		{-0.4, -0.6}, // sign follows error
		{-0.06, -0.1},
		{0.03, 0}, // inside tolerance
	}
	for _, tt := range tests {
		res := c.Step(seen(tt.forward, 0, 0), dt)
		if math.Abs(res.Command.Forward-tt.want) > 1e-9 {
			t.Errorf("forward error %v: power %v, want %v", tt.forward, res.Command.Forward, tt.want)
		}
	}
}

func TestProportionalInvert(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Lateral = AxisConfig{Mode: Proportional, Tolerance: 0.05, Gain: 2, MinPower: 0.1, MaxPower: 1, Invert: true}
	c := New(cfg)
	res := c.Step(seen(0, 0.2, 0), dt)
	if math.Abs(res.Command.Strafe+0.4) > 1e-9 {
		t.Errorf("Strafe = %v, want -0.4", res.Command.Strafe)
	}
}

func TestResetAndConfigure(t *testing.T) {
	c := New(DefaultConfig())
	c.Step(seen(1, 0, 0), dt)
	if c.State() != Approaching {
		t.Fatalf("State() = %v", c.State())
	}
	c.Reset()
	if c.State() != Searching {
		t.Errorf("State() after Reset = %v", c.State())
	}

	cfg := DefaultConfig()
	cfg.Axial.MaxPower = 0.5
	c.Configure(cfg)
	if res := c.Step(seen(1, 0, 0), dt); res.Command.Forward != 0.5 {
		t.Errorf("Forward after Configure = %v, want 0.5", res.Command.Forward)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := []func(*Config){
		func(c *Config) { c.Yaw.Mode = "fuzzy" },
		func(c *Config) { c.Axial.Tolerance = -1 },
		func(c *Config) { c.Lateral.MaxPower = 0 },
		func(c *Config) { c.Lateral.MaxPower = 1.5 },
		func(c *Config) { c.Axial.MinPower = 2 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}
