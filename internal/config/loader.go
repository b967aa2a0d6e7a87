package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fluentia-ai/cadence/internal/fluency"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return cfg, Validate(cfg)
		}
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	for name, tc := range cfg.Contexts {
		prefix := fmt.Sprintf("contexts[%q]", name)
		if !fluency.Context(name).IsValid() {
			slog.Warn("unknown speaking context in config — it will only match analyses that request it by this exact name",
				"context", name)
		}
		if tc.PauseTolerance <= 0 || tc.PauseTolerance > 2 {
			errs = append(errs, fmt.Errorf("%s.pause_tolerance %.2f is out of range (0, 2]", prefix, tc.PauseTolerance))
		}
		if tc.PauseVariabilityTolerance <= 0 || tc.PauseVariabilityTolerance > 2 {
			errs = append(errs, fmt.Errorf("%s.pause_variability_tolerance %.2f is out of range (0, 2]", prefix, tc.PauseVariabilityTolerance))
		}
	}

	for i, w := range cfg.Lexicon.ExtraFillers {
		if strings.TrimSpace(w) == "" {
			errs = append(errs, fmt.Errorf("lexicon.extra_fillers[%d] is empty", i))
		}
	}
	for label, word := range cfg.Lexicon.LabelWords {
		if strings.TrimSpace(label) == "" {
			errs = append(errs, errors.New("lexicon.label_words contains an empty label"))
		}
		if strings.TrimSpace(word) == "" {
			errs = append(errs, fmt.Errorf("lexicon.label_words[%q] maps to an empty word", label))
		}
	}

	if cfg.Calibration.MinHistory < 0 {
		errs = append(errs, fmt.Errorf("calibration.min_history %d must not be negative", cfg.Calibration.MinHistory))
	}
	if cfg.Calibration.PostgresDSN == "" {
		slog.Info("calibration.postgres_dsn is empty; score history will be kept in memory only")
	}

	return errors.Join(errs...)
}

// ContextOverrides converts the configured tolerance table into the form
// consumed by [fluency.ResolveContext].
func (c *Config) ContextOverrides() map[fluency.Context]fluency.ContextConfig {
	if len(c.Contexts) == 0 {
		return nil
	}
	out := make(map[fluency.Context]fluency.ContextConfig, len(c.Contexts))
	for name, tc := range c.Contexts {
		out[fluency.Context(name)] = fluency.ContextConfig{
			PauseTolerance:            tc.PauseTolerance,
			PauseVariabilityTolerance: tc.PauseVariabilityTolerance,
		}
	}
	return out
}
