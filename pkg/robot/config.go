package robot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/drive"
	"github.com/gwillem/ftcbot/pkg/hal/feetech"
	"github.com/gwillem/ftcbot/pkg/hal/pca9685"
	"github.com/gwillem/ftcbot/pkg/launcher"
	"github.com/gwillem/ftcbot/pkg/vision"
)

const (
	DefaultConfigFile = "ftcbot.json"
	// EnvPrefix prefixes every environment override, e.g. FTCBOT_SHOOTER_TARGET_RPM.
	EnvPrefix = "FTCBOT_"
)

const (
	BackendSim     = "sim"
	BackendPCA9685 = "pca9685"
)

// Config holds every tunable of the robot.
type Config struct {
	Hardware HardwareConfig  `json:"hardware"`
	Drive    DriveConfig     `json:"drive"`
	Intake   IntakeConfig    `json:"intake"`
	Shooter  ShooterConfig   `json:"shooter"`
	Turret   TurretConfig    `json:"turret"`
	Loader   LoaderConfig    `json:"loader"`
	Launcher launcher.Config `json:"launcher"`
	Vision   vision.Config   `json:"vision"`
	Approach approach.Config `json:"approach"`
	Auto     AutoConfig      `json:"auto"`
	LoopHz   int             `json:"loop_hz"`
}

// HardwareConfig selects the backend that fills the hardware map.
type HardwareConfig struct {
	Backend string          `json:"backend"`
	PCA9685 pca9685.Config  `json:"pca9685"`
	Feetech *feetech.Config `json:"feetech,omitempty"`
}

type DriveConfig struct {
	Preset         int            `json:"preset"`
	SpeedNormal    float64        `json:"speed_normal"`
	SpeedSlow      float64        `json:"speed_slow"`
	Geometry       drive.Geometry `json:"geometry"`
	EncoderPower   float64        `json:"encoder_power"`
	SegmentTimeout float64        `json:"segment_timeout"` // seconds
}

type IntakeConfig struct {
	Power float64 `json:"power"`
}

type ShooterConfig struct {
	TargetRPM   float64 `json:"target_rpm"`
	MaxRPM      float64 `json:"max_rpm"`
	TicksPerRev float64 `json:"ticks_per_rev"`
	// AutoRPM takes the target from the launch solver while a tag is
	// acquired.
	AutoRPM bool `json:"auto_rpm"`
}

type TurretConfig struct {
	Power        float64 `json:"power"`
	AimGain      float64 `json:"aim_gain"`      // power per degree of tx
	AimTolerance float64 `json:"aim_tolerance"` // degrees
}

type LoaderConfig struct {
	Raised  float64 `json:"raised"`
	Lowered float64 `json:"lowered"`
}

// AutoConfig times the open-loop autonomous routine. Durations in seconds.
type AutoConfig struct {
	DrivePower     float64 `json:"drive_power"`
	DriveBackward  float64 `json:"drive_backward"`
	SpinUpPause    float64 `json:"spin_up_pause"`
	FirePause      float64 `json:"fire_pause"`
	Strafe         float64 `json:"strafe"`
	FireOnApproach bool    `json:"fire_on_approach"`
}

// Default returns the competition configuration.
func Default() Config {
	return Config{
		Hardware: HardwareConfig{
			Backend: BackendSim,
			PCA9685: pca9685.DefaultConfig(),
		},
		Drive: DriveConfig{
			Preset:         int(drive.DefaultPreset),
			SpeedNormal:    1.0,
			SpeedSlow:      0.5,
			Geometry:       drive.DefaultGeometry(),
			EncoderPower:   0.5,
			SegmentTimeout: 5,
		},
		Intake:   IntakeConfig{Power: 1.0},
		Shooter:  ShooterConfig{TargetRPM: 3000, MaxRPM: 8000, TicksPerRev: 28, AutoRPM: true},
		Turret:   TurretConfig{Power: 1.0, AimGain: 0.02, AimTolerance: 1.0},
		Loader:   LoaderConfig{Raised: 1.0, Lowered: 0.0},
		Launcher: launcher.DefaultConfig(),
		Vision:   vision.DefaultConfig(),
		Approach: approach.DefaultConfig(),
		Auto: AutoConfig{
			DrivePower:    0.5,
			DriveBackward: 1.5,
			SpinUpPause:   2.0,
			FirePause:     2.0,
			Strafe:        2.0,
		},
		LoopHz: 50,
	}
}

// Validate checks the configuration for values the robot cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Hardware.Backend {
	case BackendSim, BackendPCA9685:
	default:
		errs = append(errs, fmt.Errorf("unknown hardware backend %q", c.Hardware.Backend))
	}
	if c.Drive.Preset < 0 || c.Drive.Preset >= drive.PresetCount {
		errs = append(errs, fmt.Errorf("drive preset %d outside 0..%d", c.Drive.Preset, drive.PresetCount-1))
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"drive.speed_normal", c.Drive.SpeedNormal},
		{"drive.speed_slow", c.Drive.SpeedSlow},
		{"intake.power", c.Intake.Power},
		{"turret.power", c.Turret.Power},
		{"auto.drive_power", c.Auto.DrivePower},
	} {
		if f.v < 0 || f.v > 1 {
			errs = append(errs, fmt.Errorf("%s %v outside [0, 1]", f.name, f.v))
		}
	}
	if c.Shooter.TicksPerRev <= 0 {
		errs = append(errs, fmt.Errorf("shooter.ticks_per_rev must be positive"))
	}
	if c.Shooter.TargetRPM < 0 || c.Shooter.TargetRPM > c.Shooter.MaxRPM {
		errs = append(errs, fmt.Errorf("shooter.target_rpm %v outside [0, %v]", c.Shooter.TargetRPM, c.Shooter.MaxRPM))
	}
	if c.LoopHz <= 0 {
		errs = append(errs, fmt.Errorf("loop_hz must be positive"))
	}
	if _, err := launcher.NewSolver(c.Launcher); err != nil {
		errs = append(errs, err)
	}
	if err := c.Approach.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from the default config file
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigFile)
}

// LoadConfigFrom loads configuration from a specific file. Missing fields
// keep their defaults.
func LoadConfigFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigFile)
}

// SaveTo saves configuration to a specific file
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigExists returns true if the default config file exists
func ConfigExists() bool {
	_, err := os.Stat(DefaultConfigFile)
	return err == nil
}

// ApplyEnv overrides fields from FTCBOT_* environment variables.
func (c *Config) ApplyEnv() {
	c.Hardware.Backend = GetStringEnv("BACKEND", c.Hardware.Backend)
	c.Drive.Preset = GetIntEnv("DRIVE_PRESET", c.Drive.Preset)
	c.Drive.SpeedNormal = GetFloatEnv("DRIVE_SPEED_NORMAL", c.Drive.SpeedNormal)
	c.Drive.SpeedSlow = GetFloatEnv("DRIVE_SPEED_SLOW", c.Drive.SpeedSlow)
	c.Shooter.TargetRPM = GetFloatEnv("SHOOTER_TARGET_RPM", c.Shooter.TargetRPM)
	c.Shooter.AutoRPM = GetBoolEnv("SHOOTER_AUTO_RPM", c.Shooter.AutoRPM)
	c.Launcher.Strategy = GetStringEnv("LAUNCHER_STRATEGY", c.Launcher.Strategy)
	c.Launcher.LaunchAngleDeg = GetFloatEnv("LAUNCHER_ANGLE", c.Launcher.LaunchAngleDeg)
	c.Launcher.Correction = GetFloatEnv("LAUNCHER_CORRECTION", c.Launcher.Correction)
	c.Vision.TargetTag = GetIntEnv("VISION_TARGET_TAG", c.Vision.TargetTag)
	c.Vision.Standoff = GetFloatEnv("VISION_STANDOFF", c.Vision.Standoff)
	c.LoopHz = GetIntEnv("LOOP_HZ", c.LoopHz)
}

func GetIntEnv(env string, defaultValue int) int {
	envValue, found := os.LookupEnv(EnvPrefix + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(envValue))
	if err != nil {
		logger.Warnf("%s%s not parsed: %v", EnvPrefix, env, err)
		return defaultValue
	}
	return value
}

func GetBoolEnv(env string, defaultValue bool) bool {
	envValue, found := os.LookupEnv(EnvPrefix + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(envValue))
	if err != nil {
		logger.Warnf("%s%s not parsed: %v", EnvPrefix, env, err)
		return defaultValue
	}
	return value
}

func GetStringEnv(env string, defaultValue string) string {
	envValue, found := os.LookupEnv(EnvPrefix + env)
	if !found {
		return defaultValue
	}
	return strings.ToLower(strings.TrimSpace(envValue))
}

func GetFloatEnv(env string, defaultValue float64) float64 {
	envValue, found := os.LookupEnv(EnvPrefix + env)
	if !found {
		return defaultValue
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(envValue), 64)
	if err != nil {
		logger.Warnf("%s%s not parsed: %v", EnvPrefix, env, err)
		return defaultValue
	}
	return value
}
