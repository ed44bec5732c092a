package boundary

import (
	apperrors "github.com/louisbranch/tablemind/internal/platform/errors"
	"github.com/louisbranch/tablemind/internal/platform/config"
)

// Config tunes scene boundary detection. Weights are the full strength a
// fired signal contributes before rank decay.
type Config struct {
	// RecentEventWindow is how many trailing events one analysis inspects.
	RecentEventWindow int `env:"TABLEMIND_BOUNDARY_RECENT_EVENT_WINDOW" envDefault:"10"`
	// ConfidenceThreshold is the aggregate confidence at or above which a
	// scene end is suggested.
	ConfidenceThreshold float64 `env:"TABLEMIND_BOUNDARY_CONFIDENCE_THRESHOLD" envDefault:"0.6"`

	LocationChangeWeight        float64 `env:"TABLEMIND_BOUNDARY_LOCATION_CHANGE_WEIGHT" envDefault:"0.9"`
	ConfrontationResolvedWeight float64 `env:"TABLEMIND_BOUNDARY_CONFRONTATION_RESOLVED_WEIGHT" envDefault:"0.8"`
	MoodShiftWeight             float64 `env:"TABLEMIND_BOUNDARY_MOOD_SHIFT_WEIGHT" envDefault:"0.6"`
	LongDurationWeight          float64 `env:"TABLEMIND_BOUNDARY_LONG_DURATION_WEIGHT" envDefault:"0.4"`

	// SceneTurnLimit is the turn count at which a scene reads as long-running.
	SceneTurnLimit int `env:"TABLEMIND_BOUNDARY_SCENE_TURN_LIMIT" envDefault:"8"`
	// SceneEventLimit is the event count fallback when the turn check
	// does not fire.
	SceneEventLimit int `env:"TABLEMIND_BOUNDARY_SCENE_EVENT_LIMIT" envDefault:"15"`
}

// DefaultConfig returns boundary detection defaults.
func DefaultConfig() Config {
	return Config{
		RecentEventWindow:           10,
		ConfidenceThreshold:         0.6,
		LocationChangeWeight:        0.9,
		ConfrontationResolvedWeight: 0.8,
		MoodShiftWeight:             0.6,
		LongDurationWeight:          0.4,
		SceneTurnLimit:              8,
		SceneEventLimit:             15,
	}
}

// ConfigFromEnv loads boundary detection configuration from the environment.
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
	if c.RecentEventWindow < 1 {
		return apperrors.New(apperrors.CodeConfigWindowInvalid, "recent event window must be at least 1")
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return apperrors.New(apperrors.CodeConfigThresholdInvalid, "confidence threshold must be within [0,1]")
	}
	for _, weight := range []float64{
		c.LocationChangeWeight,
		c.ConfrontationResolvedWeight,
		c.MoodShiftWeight,
		c.LongDurationWeight,
	} {
		if weight < 0 || weight > 1 {
			return apperrors.New(apperrors.CodeConfigThresholdInvalid, "signal weights must be within [0,1]")
		}
	}
	if c.SceneTurnLimit < 1 {
		return apperrors.New(apperrors.CodeConfigThresholdInvalid, "scene turn limit must be at least 1")
	}
	if c.SceneEventLimit < 1 {
		return apperrors.New(apperrors.CodeConfigThresholdInvalid, "scene event limit must be at least 1")
	}
	return nil
}
