package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// TestNewConfig tests that defaults are populated.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("sets inference defaults", func(t *testing.T) {
		t.Parallel()
		if cfg.Endpoint != DefaultEndpoint {
			t.Errorf("got %q, expected %q", cfg.Endpoint, DefaultEndpoint)
		}
		if cfg.Model != DefaultModel {
			t.Errorf("got %q, expected %q", cfg.Model, DefaultModel)
		}
		if cfg.InferenceTimeout != DefaultInferenceTimeout {
			t.Errorf("got %v, expected %v", cfg.InferenceTimeout, DefaultInferenceTimeout)
		}
	})

	t.Run("sets pipeline defaults", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxCandidates != DefaultMaxCandidates {
			t.Errorf("got %d, expected %d", cfg.MaxCandidates, DefaultMaxCandidates)
		}
		if cfg.Style != DefaultStyle {
			t.Errorf("got %q, expected %q", cfg.Style, DefaultStyle)
		}
		if cfg.Concurrency != 1 {
			t.Errorf("got %d, expected 1", cfg.Concurrency)
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	// valid returns a config that passes validation; tests mutate it.
	valid := func() *Config {
		cfg := NewConfig()
		cfg.Objectives = []string{"vegan pancakes"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: nil,
		},
		{
			name:    "no objectives",
			mutate:  func(c *Config) { c.Objectives = nil },
			wantErr: ErrNoObjective,
		},
		{
			name:    "empty objective",
			mutate:  func(c *Config) { c.Objectives = []string{"   "} },
			wantErr: ErrEmptyObjective,
		},
		{
			name:    "numeric objective",
			mutate:  func(c *Config) { c.Objectives = []string{"12345 678"} },
			wantErr: ErrObjectiveNotText,
		},
		{
			name:    "missing endpoint",
			mutate:  func(c *Config) { c.Endpoint = "" },
			wantErr: ErrNoEndpoint,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative inference timeout",
			mutate:  func(c *Config) { c.InferenceTimeout = -time.Second },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero max candidates",
			mutate:  func(c *Config) { c.MaxCandidates = 0 },
			wantErr: ErrInvalidMaxCandidates,
		},
		{
			name:    "servings below sentinel",
			mutate:  func(c *Config) { c.Servings = -2 },
			wantErr: ErrInvalidServings,
		},
		{
			name:    "derive sentinel is valid",
			mutate:  func(c *Config) { c.Servings = -1 },
			wantErr: nil,
		},
		{
			name:    "unknown style",
			mutate:  func(c *Config) { c.Style = "haiku" },
			wantErr: ErrInvalidStyle,
		},
		{
			name:    "conflicting report formats",
			mutate:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: ErrInvalidConcurrency,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateObjective tests objective quality rules.
func TestValidateObjective(t *testing.T) {
	t.Parallel()

	longObjective := make([]byte, 201)
	for i := range longObjective {
		longObjective[i] = 'a'
	}

	tests := []struct {
		name      string
		objective string
		wantErr   error
	}{
		{name: "valid", objective: "gluten-free bread", wantErr: nil},
		{name: "empty", objective: "", wantErr: ErrEmptyObjective},
		{name: "whitespace", objective: "  \t ", wantErr: ErrEmptyObjective},
		{name: "single char", objective: "a", wantErr: ErrObjectiveTooShort},
		{name: "too long", objective: string(longObjective), wantErr: ErrObjectiveTooLong},
		{name: "no letters", objective: "1234!", wantErr: ErrObjectiveNotText},
		{name: "unicode letters accepted", objective: "crème brûlée", wantErr: nil},
		{name: "length counts runes not bytes", objective: strings.Repeat("é", 150), wantErr: nil},
		{name: "201 runes too long", objective: strings.Repeat("é", 201), wantErr: ErrObjectiveTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateObjective(tt.objective)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, expected %v", err, tt.wantErr)
			}
		})
	}
}

// TestDedupeConstraints tests order-preserving constraint deduplication.
func TestDedupeConstraints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: nil},
		{name: "already unique", in: []string{"vegan", "keto"}, want: []string{"vegan", "keto"}},
		{name: "case-insensitive dupes", in: []string{"Vegan", "vegan", "KETO"}, want: []string{"vegan", "keto"}},
		{name: "whitespace and empties", in: []string{" vegan ", "", "  "}, want: []string{"vegan"}},
		{name: "order preserved", in: []string{"keto", "vegan", "keto"}, want: []string{"keto", "vegan"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DedupeConstraints(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, expected %v", got, tt.want)
			}
		})
	}
}

// TestLoadConfigFile tests the YAML loader.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads fields and applies over defaults", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, ".souschef")
		content := []byte(`endpoint: "https://api.example.com/v1"
model: "test-model"
style: simple
blockedDomains:
  - spamrecipes.example
constraints:
  - vegan
`)
		if err := os.WriteFile(path, content, 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.Endpoint != "https://api.example.com/v1" {
			t.Errorf("got %q, expected file endpoint", cfg.Endpoint)
		}
		if cfg.Model != "test-model" {
			t.Errorf("got %q, expected %q", cfg.Model, "test-model")
		}
		if cfg.Style != "simple" {
			t.Errorf("got %q, expected %q", cfg.Style, "simple")
		}
		if len(cfg.BlockedDomains) != 1 || cfg.BlockedDomains[0] != "spamrecipes.example" {
			t.Errorf("blocked domains not applied: %v", cfg.BlockedDomains)
		}
		if len(cfg.Constraints) != 1 || cfg.Constraints[0] != "vegan" {
			t.Errorf("constraints not applied: %v", cfg.Constraints)
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("got %v, expected ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".souschef")
		if err := os.WriteFile(path, []byte("endpoint: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}
