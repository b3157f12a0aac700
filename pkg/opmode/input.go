package opmode

import "time"

// Gamepad is one snapshot of the driver's controller. Stick Y axes are
// negative when pushed forward, as reported by the controller.
type Gamepad struct {
	LeftStickX, LeftStickY    float64
	RightStickX, RightStickY  float64
	LeftTrigger, RightTrigger float64

	DpadUp, DpadDown, DpadLeft, DpadRight bool

	A, B, X, Y bool

	LeftBumper, RightBumper bool
	Start, Back             bool
}

// GamepadSource supplies the current gamepad state to a running loop.
type GamepadSource interface {
	Gamepad() Gamepad
}

// GamepadFunc adapts a function to a GamepadSource.
type GamepadFunc func() Gamepad

func (f GamepadFunc) Gamepad() Gamepad { return f() }

// Input is everything an OpMode sees in one cycle.
type Input struct {
	Gamepad Gamepad
	Cycle   int
	// Elapsed is the time since the first loop cycle.
	Elapsed time.Duration
	// Dt is the time since the previous cycle.
	Dt time.Duration
}

// Button detects edges on a held input. Call Update once per cycle.
type Button struct {
	held     bool
	pressed  bool
	released bool
}

// Update records the current state and returns true on a rising edge.
func (b *Button) Update(down bool) bool {
	b.pressed = down && !b.held
	b.released = !down && b.held
	b.held = down
	return b.pressed
}

func (b *Button) Held() bool     { return b.held }
func (b *Button) Pressed() bool  { return b.pressed }
func (b *Button) Released() bool { return b.released }

// Toggle flips its state on every rising edge.
type Toggle struct {
	Button
	on bool
}

// Update records the current state and returns the toggle value.
func (t *Toggle) Update(down bool) bool {
	if t.Button.Update(down) {
		t.on = !t.on
	}
	return t.on
}

func (t *Toggle) On() bool { return t.on }

func (t *Toggle) Set(on bool) { t.on = on }
