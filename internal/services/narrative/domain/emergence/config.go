package emergence

import (
	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/config"
)

// Config tunes emergence detection thresholds.
type Config struct {
	// VillainFearThreshold and VillainResentmentThreshold are the inbound
	// dimension floors for a villain opportunity.
	VillainFearThreshold       float64 `env:"TABLEMIND_EMERGENCE_VILLAIN_FEAR_THRESHOLD" envDefault:"0.6"`
	VillainResentmentThreshold float64 `env:"TABLEMIND_EMERGENCE_VILLAIN_RESENTMENT_THRESHOLD" envDefault:"0.6"`
	// AllyTrustThreshold and AllyAffectionThreshold are the inbound
	// dimension floors for an ally opportunity.
	AllyTrustThreshold     float64 `env:"TABLEMIND_EMERGENCE_ALLY_TRUST_THRESHOLD" envDefault:"0.7"`
	AllyAffectionThreshold float64 `env:"TABLEMIND_EMERGENCE_ALLY_AFFECTION_THRESHOLD" envDefault:"0.6"`
}

// DefaultConfig returns emergence detection defaults.
func DefaultConfig() Config {
	return Config{
		VillainFearThreshold:       0.6,
		VillainResentmentThreshold: 0.6,
		AllyTrustThreshold:         0.7,
		AllyAffectionThreshold:     0.6,
	}
}

// ConfigFromEnv loads emergence detection configuration from the environment.
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

// Validate checks that every threshold is usable. Thresholds of exactly 1
// are rejected because confidence normalizes over the headroom above them.
func (c Config) Validate() error {
	for _, threshold := range []float64{
		c.VillainFearThreshold,
		c.VillainResentmentThreshold,
		c.AllyTrustThreshold,
		c.AllyAffectionThreshold,
	} {
		if threshold < 0 || threshold >= 1 {
			return apperrors.New(apperrors.CodeConfigThresholdInvalid, "emergence thresholds must be within [0,1)")
		}
	}
	return nil
}
