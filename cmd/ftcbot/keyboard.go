package main

import (
	"sync"
	"time"

	"github.com/gwillem/ftcbot/pkg/opmode"
)

// holdWindow is how long a key counts as held after its last press.
// Terminals only report presses and auto-repeat, never releases.
const holdWindow = 250 * time.Millisecond

const keyHelp = "w/s/a/d drive · j/l turn · arrows d-pad · space shoot (X) · 1 A · 2 B · 4 Y · [ ] bumpers · + - start/back · esc quit"

// keyboardGamepad turns terminal key presses into a gamepad.
type keyboardGamepad struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func newKeyboardGamepad() *keyboardGamepad {
	return &keyboardGamepad{seen: make(map[string]time.Time), now: time.Now}
}

// Press records a key press.
func (k *keyboardGamepad) Press(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.seen[key] = k.now()
}

func (k *keyboardGamepad) Gamepad() opmode.Gamepad {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	held := func(key string) bool {
		t, ok := k.seen[key]
		return ok && now.Sub(t) <= holdWindow
	}
	axis := func(neg, pos string) float64 {
		v := 0.0
		if held(neg) {
			v--
		}
		if held(pos) {
			v++
		}
		return v
	}
	return opmode.Gamepad{
		LeftStickX:  axis("a", "d"),
		LeftStickY:  axis("w", "s"),
		RightStickX: axis("j", "l"),
		DpadUp:      held("up"),
		DpadDown:    held("down"),
		DpadLeft:    held("left"),
		DpadRight:   held("right"),
		A:           held("1"),
		B:           held("2"),
		X:           held(" ") || held("3"),
		Y:           held("4"),
		LeftBumper:  held("["),
		RightBumper: held("]"),
		Start:       held("+"),
		Back:        held("-"),
	}
}
