package drive

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func powersEqual(a, b Powers) bool {
	aa, bb := a.Array(), b.Array()
	for i := range aa {
		if math.Abs(aa[i]-bb[i]) > eps {
			return false
		}
	}
	return true
}

func TestMecanum(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want Powers
	}{
		{"zero", Command{}, Powers{}},
		{"forward", Command{Forward: 1}, Powers{1, 1, 1, 1}},
		{"forward and strafe", Command{Forward: 1, Strafe: 1}, Powers{1, 0, 0, 1}},
		{"strafe right", Command{Strafe: 0.5}, Powers{0.5, -0.5, -0.5, 0.5}},
		{"rotate", Command{Rotate: 0.25}, Powers{0.25, -0.25, 0.25, -0.25}},
		{"all axes", Command{Forward: 1, Strafe: 1, Rotate: 1}, Powers{1, -1.0 / 3, 1.0 / 3, 1.0 / 3}},
	}

	for _, tt := range tests {
		got := Mecanum(tt.cmd)
		if !powersEqual(got, tt.want) {
			t.Errorf("%s: Mecanum(%+v) = %v, want %v", tt.name, tt.cmd, got, tt.want)
		}
	}
}

func TestMixRaw(t *testing.T) {
	got := Mix(Command{Forward: 1, Strafe: 1})
	want := Powers{2, 0, 0, 2}
	if !powersEqual(got, want) {
		t.Errorf("Mix = %v, want %v", got, want)
	}
}

func TestNormalizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		cmd := Command{
			Forward: rng.Float64()*6 - 3,
			Strafe:  rng.Float64()*6 - 3,
			Rotate:  rng.Float64()*6 - 3,
		}
		raw := Mix(cmd)
		got := Normalize(raw)

		if got.Max() > 1.0+eps {
			t.Fatalf("Normalize(%v) max = %f", raw, got.Max())
		}

		// Linear scaling only: every wheel is raw times the same factor.
		if raw.Max() > 1.0 {
			k := 1 / raw.Max()
			if !powersEqual(got, raw.Scale(k)) {
				t.Fatalf("ratios not preserved: raw %v got %v", raw, got)
			}
		} else if !powersEqual(got, raw) {
			t.Fatalf("in-range powers changed: raw %v got %v", raw, got)
		}
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{2, 1}, {-3, -1}, {0.4, 0.4}, {1, 1}, {-1, -1},
	}
	for _, tt := range tests {
		if got := Clamp(tt.in); got != tt.want {
			t.Errorf("Clamp(%f) = %f, want %f", tt.in, got, tt.want)
		}
	}
}

func TestCommandScale(t *testing.T) {
	got := Command{Forward: 1, Strafe: -0.5, Rotate: 0.2}.Scale(0.5)
	want := Command{Forward: 0.5, Strafe: -0.25, Rotate: 0.1}
	if math.Abs(got.Forward-want.Forward) > eps ||
		math.Abs(got.Strafe-want.Strafe) > eps ||
		math.Abs(got.Rotate-want.Rotate) > eps {
		t.Errorf("Scale = %+v, want %+v", got, want)
	}
}
