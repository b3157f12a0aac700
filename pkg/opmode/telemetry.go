package opmode

import (
	"fmt"
	"strings"

	"github.com/gwillem/ftcbot/pkg/robot"
)

// Line is one telemetry entry. Key is empty for free-form lines.
type Line struct {
	Key   string
	Value string
}

func (l Line) String() string {
	if l.Key == "" {
		return l.Value
	}
	return l.Key + ": " + l.Value
}

// Telemetry collects the lines an OpMode reports during one cycle. The
// runner clears it before every loop.
type Telemetry struct {
	lines []Line
}

func (t *Telemetry) Add(key, format string, args ...any) {
	t.lines = append(t.lines, Line{Key: key, Value: fmt.Sprintf(format, args...)})
}

// Line adds a line without a key.
func (t *Telemetry) Line(text string) {
	t.lines = append(t.lines, Line{Value: text})
}

// Lines returns a copy of the collected lines.
func (t *Telemetry) Lines() []Line {
	out := make([]Line, len(t.lines))
	copy(out, t.lines)
	return out
}

func (t *Telemetry) String() string {
	var b strings.Builder
	for _, l := range t.lines {
		b.WriteString(l.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func (t *Telemetry) Clear() { t.lines = t.lines[:0] }

// AddStatus adds the robot status lines.
func (t *Telemetry) AddStatus(s robot.Status) {
	for _, kv := range s.Lines() {
		t.Add(kv[0], "%s", kv[1])
	}
}
