// Package fluency converts normalized speech metrics into five bounded
// subscores, a 0–100 fluency score, ranked issues, and a readiness verdict.
//
// The whole package is a pure function pipeline: identical inputs always
// produce identical results.
package fluency

import "log/slog"

// Context identifies the speaking situation. It scales how much pausing and
// pause variability are tolerated — a presentation is judged more strictly
// than a casual conversation.
type Context string

const (
	ContextConversational Context = "conversational"
	ContextPresentation   Context = "presentation"
	ContextInterview      Context = "interview"
)

// DefaultContext is used when the caller supplies an unknown context key.
const DefaultContext = ContextConversational

// IsValid reports whether c is a recognised speaking context.
func (c Context) IsValid() bool {
	switch c {
	case ContextConversational, ContextPresentation, ContextInterview:
		return true
	}
	return false
}

// ContextConfig holds the tolerance multipliers for one speaking context.
type ContextConfig struct {
	// PauseTolerance scales the allowed long-pause rate. Values above 1
	// tolerate more pausing.
	PauseTolerance float64 `yaml:"pause_tolerance"`

	// PauseVariabilityTolerance scales the allowed pause-duration spread.
	PauseVariabilityTolerance float64 `yaml:"pause_variability_tolerance"`
}

// defaultContextConfigs is the built-in tolerance table. Configuration may
// override entries but unknown keys still resolve through [ResolveContext].
var defaultContextConfigs = map[Context]ContextConfig{
	ContextConversational: {PauseTolerance: 1.0, PauseVariabilityTolerance: 1.0},
	ContextPresentation:   {PauseTolerance: 0.7, PauseVariabilityTolerance: 0.8},
	ContextInterview:      {PauseTolerance: 0.85, PauseVariabilityTolerance: 0.9},
}

// ResolveContext returns the tolerance config for key, falling back to
// [DefaultContext] with a warning when the key is unknown. Unknown contexts
// are never fatal.
//
// overrides, when non-nil, takes precedence over the built-in table for keys
// it contains.
func ResolveContext(key Context, overrides map[Context]ContextConfig) ContextConfig {
	if overrides != nil {
		if cfg, ok := overrides[key]; ok {
			return cfg
		}
	}
	if cfg, ok := defaultContextConfigs[key]; ok {
		return cfg
	}
	slog.Warn("fluency: unknown speaking context, using default",
		"context", string(key), "default", string(DefaultContext))
	if overrides != nil {
		if cfg, ok := overrides[DefaultContext]; ok {
			return cfg
		}
	}
	return defaultContextConfigs[DefaultContext]
}
