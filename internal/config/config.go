// Package config loads the scheduling parameters that have no single correct
// value: scoring weights, business hours, slot granularity, and collaborator
// timeouts. Values come from an optional YAML file layered over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values can be written as "30s" or
// "2m" instead of raw nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML parses durations in time.ParseDuration syntax.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config carries every tunable the negotiation engine reads.
type Config struct {
	// BusinessStartHour and BusinessEndHour bound candidate slots in each
	// participant's local time, half-open [start, end).
	BusinessStartHour int `yaml:"business_start_hour"`
	BusinessEndHour   int `yaml:"business_end_hour"`

	// SlotStepMinutes is the granularity at which candidate start times are
	// enumerated.
	SlotStepMinutes int `yaml:"slot_step_minutes"`

	// ConsensusWeight and FairnessWeight combine the two slot scores into one
	// ranked value. They should sum to 1.
	ConsensusWeight float64 `yaml:"consensus_weight"`
	FairnessWeight  float64 `yaml:"fairness_weight"`

	// TopAlternatives is how many ranked slots are kept and offered to the
	// reasoning oracle.
	TopAlternatives int `yaml:"top_alternatives"`

	// DefaultBufferMinutes pads existing events when a participant has no
	// stored buffer preference.
	DefaultBufferMinutes int `yaml:"default_buffer_minutes"`

	// DefaultTimezone applies to participants without a stored timezone.
	DefaultTimezone string `yaml:"default_timezone"`

	// OracleTimeout bounds calls to the reasoning oracle; exceeding it falls
	// back to the deterministic selection.
	OracleTimeout Duration `yaml:"oracle_timeout"`

	// ProviderTimeout bounds calendar provider fetches per participant.
	ProviderTimeout Duration `yaml:"provider_timeout"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		BusinessStartHour:    9,
		BusinessEndHour:      18,
		SlotStepMinutes:      15,
		ConsensusWeight:      0.7,
		FairnessWeight:       0.3,
		TopAlternatives:      5,
		DefaultBufferMinutes: 15,
		DefaultTimezone:      "Asia/Kolkata",
		OracleTimeout:        Duration(30 * time.Second),
		ProviderTimeout:      Duration(10 * time.Second),
	}
}

// Load reads the YAML config at path, layering it over the defaults. A
// missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants the engine assumes.
func (c Config) Validate() error {
	if c.BusinessStartHour < 0 || c.BusinessEndHour > 24 || c.BusinessStartHour >= c.BusinessEndHour {
		return fmt.Errorf("business hours %d-%d are not a valid range", c.BusinessStartHour, c.BusinessEndHour)
	}
	if c.SlotStepMinutes <= 0 {
		return fmt.Errorf("slot step must be positive, got %d", c.SlotStepMinutes)
	}
	if c.ConsensusWeight < 0 || c.FairnessWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.TopAlternatives <= 0 {
		return fmt.Errorf("top alternatives must be positive, got %d", c.TopAlternatives)
	}
	if c.DefaultBufferMinutes < 0 {
		return fmt.Errorf("default buffer must be non-negative, got %d", c.DefaultBufferMinutes)
	}
	if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
		return fmt.Errorf("invalid default timezone %q: %w", c.DefaultTimezone, err)
	}
	return nil
}
