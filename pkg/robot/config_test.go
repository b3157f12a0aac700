package robot

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gwillem/ftcbot/pkg/approach"
	"github.com/gwillem/ftcbot/pkg/launcher"
)

func TestDefaultValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestConfigSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	cfg := Default()
	cfg.Shooter.TargetRPM = 3500
	cfg.Launcher.Strategy = launcher.StrategyTable
	cfg.Approach.Axial.Mode = approach.Proportional
	if err := cfg.SaveTo(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Shooter.TargetRPM != 3500 {
		t.Errorf("TargetRPM = %v", loaded.Shooter.TargetRPM)
	}
	if loaded.Launcher.Strategy != launcher.StrategyTable {
		t.Errorf("Strategy = %q", loaded.Launcher.Strategy)
	}
	if loaded.Approach.Axial.Mode != approach.Proportional {
		t.Errorf("Axial mode = %q", loaded.Approach.Axial.Mode)
	}
	if len(loaded.Launcher.Table) != len(launcher.DefaultEntries()) {
		t.Errorf("table has %d entries", len(loaded.Launcher.Table))
	}
}

func TestConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.json")
	if err := os.WriteFile(path, []byte(`{"shooter": {"target_rpm": 2500}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Shooter.TargetRPM != 2500 {
		t.Errorf("TargetRPM = %v", cfg.Shooter.TargetRPM)
	}
	if cfg.Shooter.TicksPerRev != 28 || cfg.LoopHz != 50 {
		t.Errorf("defaults lost: ticks=%v hz=%d", cfg.Shooter.TicksPerRev, cfg.LoopHz)
	}
	if err := cfg.Validate(); err != nil {
		t.Error(err)
	}
}

func TestConfigLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadConfigFrom(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	bad := filepath.Join(dir, "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadConfigFrom(bad); err == nil {
		t.Error("bad JSON should fail")
	}
}

func TestConfigExists(t *testing.T) {
	dir := t.TempDir()
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if ConfigExists() {
		t.Fatal("config should not exist in empty dir")
	}
	cfg := Default()
	if err := cfg.Save(); err != nil {
		t.Fatal(err)
	}
	if !ConfigExists() {
		t.Error("config should exist after Save")
	}
	if _, err := LoadConfig(); err != nil {
		t.Error(err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FTCBOT_SHOOTER_TARGET_RPM", "4200")
	t.Setenv("FTCBOT_DRIVE_PRESET", "5")
	t.Setenv("FTCBOT_SHOOTER_AUTO_RPM", "false")
	t.Setenv("FTCBOT_LAUNCHER_STRATEGY", " TABLE ")
	t.Setenv("FTCBOT_LOOP_HZ", "fast")

	cfg := Default()
	cfg.ApplyEnv()
	if cfg.Shooter.TargetRPM != 4200 {
		t.Errorf("TargetRPM = %v", cfg.Shooter.TargetRPM)
	}
	if cfg.Drive.Preset != 5 {
		t.Errorf("Preset = %d", cfg.Drive.Preset)
	}
	if cfg.Shooter.AutoRPM {
		t.Error("AutoRPM should be false")
	}
	if cfg.Launcher.Strategy != launcher.StrategyTable {
		t.Errorf("Strategy = %q", cfg.Launcher.Strategy)
	}
	if cfg.LoopHz != 50 {
		t.Errorf("unparseable LOOP_HZ should keep default, got %d", cfg.LoopHz)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"backend", func(c *Config) { c.Hardware.Backend = "arduino" }},
		{"preset", func(c *Config) { c.Drive.Preset = 16 }},
		{"slow speed", func(c *Config) { c.Drive.SpeedSlow = 1.5 }},
		{"ticks", func(c *Config) { c.Shooter.TicksPerRev = 0 }},
		{"target above max", func(c *Config) { c.Shooter.TargetRPM = 9000 }},
		{"loop", func(c *Config) { c.LoopHz = 0 }},
		{"launcher", func(c *Config) { c.Launcher.Strategy = "guess" }},
		{"approach", func(c *Config) { c.Approach.Yaw.MaxPower = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateErrorOrder(t *testing.T) {
	cfg := Default()
	cfg.Drive.SpeedNormal = 2
	cfg.Drive.SpeedSlow = -1
	cfg.Intake.Power = 3
	cfg.Turret.Power = 4
	cfg.Auto.DrivePower = 5

	want := cfg.Validate().Error()
	for i := 0; i < 20; i++ {
		if got := cfg.Validate().Error(); got != want {
			t.Fatalf("error order changed:\n%s\nvs\n%s", got, want)
		}
	}
	lines := strings.Split(want, "\n")
	order := []string{"drive.speed_normal", "drive.speed_slow", "intake.power", "turret.power", "auto.drive_power"}
	if len(lines) != len(order) {
		t.Fatalf("got %d errors: %s", len(lines), want)
	}
	for i, name := range order {
		if !strings.HasPrefix(lines[i], name) {
			t.Errorf("error %d = %q, want %s first", i, lines[i], name)
		}
	}
}

func TestIntakeModeCycle(t *testing.T) {
	m := IntakeRegular
	for i := 0; i < 3; i++ {
		m = m.Next()
	}
	if m != IntakeRegular {
		t.Errorf("three cycles = %v, want REGULAR", m)
	}
	if IntakeReverse.Power(0.8) != -0.8 || IntakeOff.Power(1) != 0 {
		t.Error("unexpected intake mode power")
	}
}
