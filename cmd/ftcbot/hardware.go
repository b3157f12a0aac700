package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/gwillem/ftcbot/pkg/hal/feetech"
	"github.com/gwillem/ftcbot/pkg/hal/pca9685"
	"github.com/gwillem/ftcbot/pkg/hw"
	"github.com/gwillem/ftcbot/pkg/robot"
	"github.com/gwillem/ftcbot/pkg/sim"
)

// hardware is the filled hardware map plus whatever must be stepped or
// closed alongside it.
type hardware struct {
	m     *hw.Map
	world *sim.World // nil on real hardware
	board *pca9685.Board
	bus   *feetech.Bus
}

// openHardware fills a hardware map from the configured backend. A Feetech
// bus, when configured, is opened last so its servos replace any PWM servo
// of the same name.
func openHardware(ctx context.Context, cfg robot.HardwareConfig) (*hardware, error) {
	h := &hardware{}
	if err := h.open(ctx, cfg); err != nil {
		if cerr := h.Close(); cerr != nil {
			logger.Warnf("release hardware: %v", cerr)
		}
		return nil, err
	}
	return h, nil
}

func (h *hardware) open(ctx context.Context, cfg robot.HardwareConfig) error {
	switch cfg.Backend {
	case robot.BackendSim:
		h.world = sim.NewWorld(sim.DefaultConfig())
		h.m = h.world.Map()
		logger.Info("using simulator")
	case robot.BackendPCA9685:
		board, err := pca9685.Open(cfg.PCA9685)
		if err != nil {
			return err
		}
		h.board = board
		h.m = hw.NewMap()
		if err := board.Register(h.m, cfg.PCA9685); err != nil {
			return err
		}
		logger.Infof("using PCA9685 at 0x%02x on %s", cfg.PCA9685.Address, cfg.PCA9685.I2CDevice)
	default:
		return fmt.Errorf("unknown hardware backend %q", cfg.Backend)
	}

	if cfg.Feetech == nil || cfg.Feetech.Port == "" {
		return nil
	}
	fc := *cfg.Feetech
	if !fc.IsCalibrated() {
		logger.Warnf("feetech bus %s has no calibration, skipped. Run 'ftcbot setup'.", fc.Port)
		return nil
	}
	if err := fc.ResolveCalibration(); err != nil {
		return err
	}
	bus, err := feetech.Open(fc)
	if err != nil {
		return err
	}
	h.bus = bus
	if err := bus.Enable(ctx); err != nil {
		logger.Warnf("enable feetech servos: %v", err)
	}
	bus.Register(h.m)
	logger.Infof("feetech bus on %s: %v", fc.Port, fc.Calibration.Names())
	return nil
}

// Close releases whatever open managed to acquire.
func (h *hardware) Close() error {
	var errs []error
	if h.bus != nil {
		if err := h.bus.Disable(context.Background()); err != nil {
			logger.Warnf("disable feetech servos: %v", err)
		}
		errs = append(errs, h.bus.Close())
		h.bus = nil
	}
	if h.board != nil {
		errs = append(errs, h.board.Close())
		h.board = nil
	}
	return errors.Join(errs...)
}
