package feetech

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// ServoCalibration maps a servo's raw travel onto positions 0..1.
type ServoCalibration struct {
	ID int `json:"id"`
	// DriveMode 1 inverts the servo so that position 0 is RangeMax.
	DriveMode int `json:"drive_mode"`
	RangeMin  int `json:"range_min"`
	RangeMax  int `json:"range_max"`
}

// Calibration holds calibration data for all servos, keyed by hardware name.
type Calibration map[string]ServoCalibration

// LoadCalibration loads calibration data from a JSON file.
func LoadCalibration(path string) (Calibration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration file: %w", err)
	}
	var cal Calibration
	if err := json.Unmarshal(data, &cal); err != nil {
		return nil, fmt.Errorf("parse calibration JSON: %w", err)
	}
	return cal, nil
}

// Normalize converts a raw servo position to a position in [0, 1].
func (c ServoCalibration) Normalize(raw int) float64 {
	rangeSize := float64(c.RangeMax - c.RangeMin)
	if rangeSize == 0 {
		return 0
	}
	pos := float64(raw-c.RangeMin) / rangeSize
	if c.DriveMode == 1 {
		pos = 1 - pos
	}
	return pos
}

// Denormalize converts a position in [0, 1] to a raw servo position.
// Positions outside the range are clamped.
func (c ServoCalibration) Denormalize(pos float64) int {
	pos = math.Max(0, math.Min(1, pos))
	if c.DriveMode == 1 {
		pos = 1 - pos
	}
	rangeSize := float64(c.RangeMax - c.RangeMin)
	return int(math.Round(pos*rangeSize)) + c.RangeMin
}

// Names returns the calibrated servo names, sorted.
func (c Calibration) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IDs returns the servo IDs in Names order.
func (c Calibration) IDs() []int {
	ids := make([]int, 0, len(c))
	for _, name := range c.Names() {
		ids = append(ids, c[name].ID)
	}
	return ids
}

// ByID returns the servo name and calibration for a given servo ID.
func (c Calibration) ByID(id int) (string, ServoCalibration, bool) {
	for name, sc := range c {
		if sc.ID == id {
			return name, sc, true
		}
	}
	return "", ServoCalibration{}, false
}
