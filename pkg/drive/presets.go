package drive

import (
	"fmt"
	"strings"

	"github.com/gwillem/ftcbot/pkg/hw"
)

// PresetCount is the number of direction presets (one bit per wheel).
const PresetCount = 16

// DefaultPreset flips FL and FR, the combination that matches the
// competition robot's wiring.
const DefaultPreset Preset = 3

// Polarities holds one direction per wheel, indexed by Wheel.
type Polarities [4]hw.Direction

// BasePolarities are the wheel directions used when a preset bit is clear.
var BasePolarities = Polarities{hw.Reverse, hw.Forward, hw.Reverse, hw.Forward}

// Get returns the direction for wheel w.
func (p Polarities) Get(w Wheel) hw.Direction {
	return p[w]
}

// Preset is a 4-bit mask. Bit 0 flips FL, bit 1 FR, bit 2 BL and bit 3 BR
// relative to BasePolarities.
type Preset uint8

// NewPreset wraps any integer into the preset space. Negative values wrap
// around from the top.
func NewPreset(idx int) Preset {
	return Preset(idx & 0xF)
}

// Index returns the preset as an integer in [0, 16).
func (p Preset) Index() int {
	return int(p & 0xF)
}

// Cycle moves delta presets forward (or backward for negative delta).
func (p Preset) Cycle(delta int) Preset {
	return NewPreset(p.Index() + delta)
}

// Flipped reports whether wheel w is inverted by this preset.
func (p Preset) Flipped(w Wheel) bool {
	return p&(1<<uint(w)) != 0
}

// Polarities resolves the preset into one direction per wheel.
func (p Preset) Polarities() Polarities {
	var out Polarities
	for _, w := range AllWheels() {
		d := BasePolarities[w]
		if p.Flipped(w) {
			d = d.Invert()
		}
		out[w] = d
	}
	return out
}

// Name returns a short identifier such as DEFAULT, FL_FLIP or ALL_FLIP.
func (p Preset) Name() string {
	switch p.Index() {
	case 0:
		return "DEFAULT"
	case PresetCount - 1:
		return "ALL_FLIP"
	}
	var parts []string
	for _, w := range AllWheels() {
		if p.Flipped(w) {
			parts = append(parts, w.String())
		}
	}
	return strings.Join(parts, "_") + "_FLIP"
}

// String describes the preset and the resulting per-wheel directions.
func (p Preset) String() string {
	pol := p.Polarities()
	return fmt.Sprintf("%s: FL=%s FR=%s BL=%s BR=%s",
		p.Name(), pol[FrontLeft], pol[FrontRight], pol[BackLeft], pol[BackRight])
}

// AllPresets returns every preset in index order.
func AllPresets() []Preset {
	out := make([]Preset, PresetCount)
	for i := range out {
		out[i] = Preset(i)
	}
	return out
}
