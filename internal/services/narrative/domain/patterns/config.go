package patterns

import (
	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/config"
)

// Config tunes behavioral pattern analysis.
type Config struct {
	// MinCategoryEventsForRatio is the minimum combined count an opposing
	// pair needs before its ratio carries signal. Below it the ratio is a
	// neutral zero.
	MinCategoryEventsForRatio int `env:"TABLEMIND_PATTERNS_MIN_CATEGORY_EVENTS" envDefault:"3"`
	// MinEventsForAnalysis is the minimum social event count before a
	// social approach other than "minimal" is assigned.
	MinEventsForAnalysis int `env:"TABLEMIND_PATTERNS_MIN_EVENTS_FOR_ANALYSIS" envDefault:"5"`
	// DefaultLimit caps how many actor events one analysis pulls when the
	// caller does not set a limit.
	DefaultLimit int `env:"TABLEMIND_PATTERNS_DEFAULT_LIMIT" envDefault:"1000"`
}

// DefaultConfig returns pattern analysis defaults.
func DefaultConfig() Config {
	return Config{
		MinCategoryEventsForRatio: 3,
		MinEventsForAnalysis:      5,
		DefaultLimit:              1000,
	}
}

// ConfigFromEnv loads pattern analysis configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every tunable is usable.
func (c Config) Validate() error {
	if c.MinCategoryEventsForRatio < 1 {
		return apperrors.New(apperrors.CodeConfigThresholdInvalid, "min category events for ratio must be at least 1")
	}
	if c.MinEventsForAnalysis < 1 {
		return apperrors.New(apperrors.CodeConfigThresholdInvalid, "min events for analysis must be at least 1")
	}
	if c.DefaultLimit < 1 {
		return apperrors.New(apperrors.CodeConfigWindowInvalid, "default limit must be at least 1")
	}
	return nil
}
