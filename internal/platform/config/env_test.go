package config

import "testing"

type testConfig struct {
	Window    int     `env:"TABLEMIND_TEST_WINDOW" envDefault:"10"`
	Threshold float64 `env:"TABLEMIND_TEST_THRESHOLD" envDefault:"0.6"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Window != 10 {
		t.Fatalf("window = %d, want 10", cfg.Window)
	}
	if cfg.Threshold != 0.6 {
		t.Fatalf("threshold = %v, want 0.6", cfg.Threshold)
	}
}

func TestParseEnvOverride(t *testing.T) {
	t.Setenv("TABLEMIND_TEST_WINDOW", "25")

	var cfg testConfig
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Window != 25 {
		t.Fatalf("window = %d, want 25", cfg.Window)
	}
}

func TestParseEnvRejectsMalformedValue(t *testing.T) {
	t.Setenv("TABLEMIND_TEST_THRESHOLD", "not-a-number")

	var cfg testConfig
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected parse error for malformed float")
	}
}
