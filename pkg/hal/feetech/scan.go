package feetech

import (
	"context"
	"fmt"
	"strings"
	"time"

	ft "github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"
)

// Found is a serial port with servos answering on it.
type Found struct {
	Port   string
	Servos []ft.FoundServo
}

// FindBuses scans every serial port for servos with IDs in [minID, maxID].
func FindBuses(ctx context.Context, minID, maxID int) ([]Found, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list ports: %w", err)
	}

	var found []Found
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		servos, err := scanPort(ctx, port, minID, maxID)
		if err != nil {
			logger.Debugf("scan %s: %v", port, err)
			continue
		}
		if len(servos) > 0 {
			found = append(found, Found{Port: port, Servos: servos})
		}
	}
	return found, nil
}

func scanPort(ctx context.Context, port string, minID, maxID int) ([]ft.FoundServo, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	bus, err := ft.NewBus(ft.BusConfig{
		Port:     port,
		BaudRate: BaudRate,
		Protocol: ft.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, err
	}
	defer bus.Close()

	return bus.Scan(ctx, minID, maxID)
}

// DefaultCalibration assigns the found servos to names in ID order with the
// full raw travel of an STS3215 (0..4095).
func DefaultCalibration(servos []ft.FoundServo, names []string) Calibration {
	cal := make(Calibration, len(names))
	for i, s := range servos {
		if i >= len(names) {
			break
		}
		cal[names[i]] = ServoCalibration{ID: s.ID, RangeMin: 0, RangeMax: 4095}
	}
	return cal
}
