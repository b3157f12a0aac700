package launcher

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrEmptyTable    = errors.New("lookup table is empty")
	ErrUnsortedTable = errors.New("lookup table distances must strictly increase")
)

// Entry is one measured (distance, RPM) pair.
type Entry struct {
	Distance float64 `json:"distance"`
	RPM      float64 `json:"rpm"`
}

// DefaultEntries were measured on the competition field.
func DefaultEntries() []Entry {
	return []Entry{
		{1.0, 2000},
		{1.5, 2800},
		{2.0, 3500},
		{2.5, 4200},
		{3.0, 5000},
	}
}

// Table interpolates RPM linearly between measured entries and clamps
// outside the measured range.
type Table struct {
	entries []Entry
}

// NewTable validates and copies entries.
func NewTable(entries []Entry) (*Table, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyTable
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Distance <= entries[i-1].Distance {
			return nil, fmt.Errorf("entry %d (%.2f m): %w", i, entries[i].Distance, ErrUnsortedTable)
		}
	}
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Table{entries: cp}, nil
}

// Lookup returns the RPM for distance. An empty table has no shot.
func (t *Table) Lookup(distance float64) float64 {
	if len(t.entries) == 0 {
		return 0
	}
	first, last := t.entries[0], t.entries[len(t.entries)-1]
	if math.IsNaN(distance) || distance <= first.Distance {
		return first.RPM
	}
	if distance >= last.Distance {
		return last.RPM
	}
	for i := 0; i < len(t.entries)-1; i++ {
		lo, hi := t.entries[i], t.entries[i+1]
		if distance <= hi.Distance {
			frac := (distance - lo.Distance) / (hi.Distance - lo.Distance)
			return lo.RPM + frac*(hi.RPM-lo.RPM)
		}
	}
	return last.RPM
}

// RequiredRPM implements Solver. The table is measured at the field's goal
// height, so height is ignored.
func (t *Table) RequiredRPM(distance, _ float64) float64 {
	return t.Lookup(distance)
}
