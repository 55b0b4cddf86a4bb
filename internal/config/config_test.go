package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config is invalid: %v", err)
	}
	if cfg.BusinessStartHour != 9 || cfg.BusinessEndHour != 18 {
		t.Errorf("business hours %d-%d, want 9-18", cfg.BusinessStartHour, cfg.BusinessEndHour)
	}
	if got := cfg.ConsensusWeight + cfg.FairnessWeight; got != 1.0 {
		t.Errorf("weights sum to %v, want 1.0", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error for a missing file: %v", err)
	}
	if cfg != Default() {
		t.Error("missing file did not yield the defaults")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	body := `
business_start_hour: 8
business_end_hour: 20
slot_step_minutes: 30
consensus_weight: 0.6
fairness_weight: 0.4
top_alternatives: 3
default_timezone: "UTC"
oracle_timeout: 5s
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.BusinessStartHour != 8 || cfg.BusinessEndHour != 20 {
		t.Errorf("business hours %d-%d, want 8-20", cfg.BusinessStartHour, cfg.BusinessEndHour)
	}
	if cfg.SlotStepMinutes != 30 {
		t.Errorf("SlotStepMinutes = %d, want 30", cfg.SlotStepMinutes)
	}
	if cfg.TopAlternatives != 3 {
		t.Errorf("TopAlternatives = %d, want 3", cfg.TopAlternatives)
	}
	if cfg.OracleTimeout.Std() != 5*time.Second {
		t.Errorf("OracleTimeout = %s, want 5s", cfg.OracleTimeout)
	}
	// Unset keys keep their defaults.
	if cfg.DefaultBufferMinutes != 15 {
		t.Errorf("DefaultBufferMinutes = %d, want default 15", cfg.DefaultBufferMinutes)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	if err := os.WriteFile(path, []byte("business_start_hour: [not a number"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted malformed YAML")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheduler.yaml")
	if err := os.WriteFile(path, []byte("oracle_timeout: banana"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() accepted an unparseable duration")
	}
}

func TestValidate(t *testing.T) {
	mutate := func(f func(*Config)) Config {
		cfg := Default()
		f(&cfg)
		return cfg
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"inverted business hours", mutate(func(c *Config) { c.BusinessStartHour = 18; c.BusinessEndHour = 9 })},
		{"end hour past midnight", mutate(func(c *Config) { c.BusinessEndHour = 25 })},
		{"zero slot step", mutate(func(c *Config) { c.SlotStepMinutes = 0 })},
		{"negative weight", mutate(func(c *Config) { c.FairnessWeight = -0.1 })},
		{"zero alternatives", mutate(func(c *Config) { c.TopAlternatives = 0 })},
		{"negative buffer", mutate(func(c *Config) { c.DefaultBufferMinutes = -5 })},
		{"unknown timezone", mutate(func(c *Config) { c.DefaultTimezone = "Mars/Olympus" })},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate() accepted an invalid config")
			}
		})
	}
}
