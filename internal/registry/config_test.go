package registry_test

import (
	"testing"
	"time"

	"github.com/jmcallister/orcview/internal/registry"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := &registry.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.BaseURL != "https://pub.orcid.org/v3.0" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.TimeoutDuration() != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.TimeoutDuration())
	}
	if cfg.RequestsPerSecond != 10 {
		t.Errorf("rps = %v, want 10", cfg.RequestsPerSecond)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("concurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.MaxResults != 1000 {
		t.Errorf("max results = %d, want 1000", cfg.MaxResults)
	}
}

func TestConfigFinalizeEnv(t *testing.T) {
	t.Setenv("TEST_REGISTRY_BASE_URL", "https://registry.test/v3.0")
	t.Setenv("TEST_REGISTRY_RPS", "2.5")
	t.Setenv("TEST_REGISTRY_MAX_RESULTS", "50")

	cfg := &registry.Config{}
	err := cfg.Finalize(&registry.Env{
		BaseURL:           "TEST_REGISTRY_BASE_URL",
		RequestsPerSecond: "TEST_REGISTRY_RPS",
		MaxResults:        "TEST_REGISTRY_MAX_RESULTS",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.BaseURL != "https://registry.test/v3.0" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.RequestsPerSecond != 2.5 {
		t.Errorf("rps = %v, want 2.5", cfg.RequestsPerSecond)
	}
	if cfg.MaxResults != 50 {
		t.Errorf("max results = %d, want 50", cfg.MaxResults)
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("concurrency = %d, want default 4", cfg.MaxConcurrency)
	}
}

func TestConfigFinalizeValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  registry.Config
	}{
		{"bad timeout", registry.Config{Timeout: "soon"}},
		{"negative rps", registry.Config{RequestsPerSecond: -1}},
		{"negative concurrency", registry.Config{MaxConcurrency: -2}},
		{"negative max results", registry.Config{MaxResults: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := &registry.Config{}
	if err := base.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	base.Merge(&registry.Config{
		BaseURL:    "https://sandbox.test/v3.0",
		MaxResults: 250,
	})

	if base.BaseURL != "https://sandbox.test/v3.0" {
		t.Errorf("base url = %q", base.BaseURL)
	}
	if base.MaxResults != 250 {
		t.Errorf("max results = %d, want 250", base.MaxResults)
	}
	if base.Timeout != "30s" {
		t.Errorf("timeout = %q, want untouched default", base.Timeout)
	}
}
