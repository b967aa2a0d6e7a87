// Package analysis orchestrates the full scoring pipeline for one utterance:
// filler marking, acoustic candidate normalisation and suppression, fusion,
// metric normalisation, fluency subscoring, and band scoring.
//
// The pipeline is deterministic: identical inputs always produce identical
// results. The only shared state is the calibration history behind the band
// aggregator.
package analysis

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluentia-ai/cadence/internal/band"
	"github.com/fluentia-ai/cadence/internal/calibration"
	"github.com/fluentia-ai/cadence/internal/event"
	"github.com/fluentia-ai/cadence/internal/fluency"
	"github.com/fluentia-ai/cadence/internal/fusion"
	"github.com/fluentia-ai/cadence/internal/metrics"
	"github.com/fluentia-ai/cadence/internal/observe"
	"github.com/fluentia-ai/cadence/pkg/timeline"
)

// Sample minimums below which scoring is not meaningful.
const (
	minSampleSeconds = 5.0
	minSampleWords   = 3
)

// Input carries the four collaborator outputs for one utterance plus the
// utterance length and the speaking context. All fields are treated as
// read-only.
type Input struct {
	// Words is the transcription word timeline.
	Words []timeline.Word `json:"words"`

	// Segments is the transcription segment timeline.
	Segments []timeline.Segment `json:"segments"`

	// Tokens is the frame-level acoustic token stream. Ignored when
	// Candidates is non-empty.
	Tokens []timeline.AcousticToken `json:"tokens,omitempty"`

	// Candidates holds pre-merged acoustic candidate events. When empty,
	// candidates are derived from Tokens.
	Candidates []event.Candidate `json:"candidates,omitempty"`

	// Spans holds the annotation span counts.
	Spans timeline.SpanCounts `json:"spans"`

	// TotalDuration is the utterance length in seconds.
	TotalDuration float64 `json:"total_duration"`

	// Context is the speaking context. Empty or unknown values resolve to
	// the default context with a warning.
	Context fluency.Context `json:"context,omitempty"`
}

// Result is the complete output of one analysis. For terminal results
// (no speech, insufficient sample) only Fluency.Readiness is meaningful and
// Band is nil.
type Result struct {
	Metrics metrics.NormalizedMetrics `json:"metrics"`
	Fluency fluency.Result            `json:"fluency"`

	// Criteria holds the per-criterion diagnostics. Nil for terminal
	// results.
	Criteria []band.CriterionResult `json:"criteria,omitempty"`

	// Band is the aggregated overall band. Nil for terminal results.
	Band *band.OverallBandResult `json:"band,omitempty"`

	// Events is the fused disfluency stream, exposed for feedback
	// generation.
	Events []event.TimedEvent `json:"events"`
}

// Analyzer runs the scoring pipeline. Construct with [New]; the zero value
// is not usable.
type Analyzer struct {
	lexicon          *timeline.FillerLexicon
	labelWords       map[string]string
	contextOverrides map[fluency.Context]fluency.ContextConfig
	aggregator       *band.Aggregator
	obs              *observe.Metrics
	minHistory       int
}

// Option is a functional option for configuring an [Analyzer].
type Option func(*Analyzer)

// WithExtraFillers extends the built-in filler lexicon with additional
// words.
func WithExtraFillers(words []string) Option {
	return func(a *Analyzer) {
		if len(words) > 0 {
			a.lexicon = timeline.NewFillerLexicon(append(append([]string{}, timeline.DefaultFillerLexicon...), words...))
		}
	}
}

// WithLabelWords overrides entries of the built-in acoustic label→word map.
func WithLabelWords(overrides map[string]string) Option {
	return func(a *Analyzer) {
		if len(overrides) == 0 {
			return
		}
		merged := make(map[string]string, len(event.DefaultLabelWords)+len(overrides))
		for k, v := range event.DefaultLabelWords {
			merged[k] = v
		}
		for k, v := range overrides {
			merged[k] = v
		}
		a.labelWords = merged
	}
}

// WithContextOverrides replaces tolerance entries of the built-in speaking
// context table.
func WithContextOverrides(overrides map[fluency.Context]fluency.ContextConfig) Option {
	return func(a *Analyzer) { a.contextOverrides = overrides }
}

// WithObserveMetrics sets the metric instruments the analyzer records to.
// Default: [observe.DefaultMetrics].
func WithObserveMetrics(m *observe.Metrics) Option {
	return func(a *Analyzer) {
		if m != nil {
			a.obs = m
		}
	}
}

// WithMinHistory forwards the calibration activation threshold to the band
// aggregator.
func WithMinHistory(n int) Option {
	return func(a *Analyzer) { a.minHistory = n }
}

// New creates an [Analyzer] recording awarded bands in store. The store must
// not be nil; callers without persistence use [calibration.NewMemoryStore].
func New(store calibration.Store, opts ...Option) *Analyzer {
	a := &Analyzer{
		lexicon:    timeline.NewFillerLexicon(timeline.DefaultFillerLexicon),
		labelWords: event.DefaultLabelWords,
	}
	for _, o := range opts {
		o(a)
	}
	if a.obs == nil {
		a.obs = observe.DefaultMetrics()
	}
	aggOpts := []band.AggregatorOption{}
	if a.minHistory > 0 {
		aggOpts = append(aggOpts, band.WithMinHistory(a.minHistory))
	}
	a.aggregator = band.NewAggregator(store, aggOpts...)
	return a
}

// Analyze scores one utterance. It never fails on malformed events or
// unknown contexts; those recover locally. The returned error is reserved
// for structural faults such as a mis-sized criterion set.
func (a *Analyzer) Analyze(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	ctx, span := observe.StartSpan(ctx, "analysis.Analyze",
		trace.WithAttributes(attribute.String("context", string(a.resolveContextKey(in.Context)))))
	defer span.End()

	log := observe.Logger(ctx)

	if len(in.Words) == 0 && len(in.Segments) == 0 {
		log.Info("analysis: no speech detected")
		return a.terminal(ctx, in, fluency.ReadinessNoSpeechDetected, start), nil
	}
	if in.TotalDuration < minSampleSeconds || len(in.Words) < minSampleWords {
		log.Info("analysis: sample below scoring minimum",
			"duration", in.TotalDuration, "words", len(in.Words))
		return a.terminal(ctx, in, fluency.ReadinessInsufficientSample, start), nil
	}

	// MarkFillers mutates in place; clone so the caller's timeline stays
	// untouched.
	words := timeline.MarkFillers(slices.Clone(in.Words), a.lexicon)

	lexical, dropped := event.LexicalFillers(words)
	for _, err := range dropped {
		log.Warn("analysis: dropped malformed lexical event", "error", err)
	}

	candidates := in.Candidates
	if len(candidates) == 0 && len(in.Tokens) > 0 {
		candidates = event.MergeAdjacent(in.Tokens)
	}
	candidates = event.FilterCandidates(candidates, words)

	var acoustic []event.TimedEvent
	for _, c := range candidates {
		ev, ok := event.Classify(c, a.labelWords)
		if !ok {
			continue
		}
		if err := ev.Validate(); err != nil {
			log.Warn("analysis: dropped malformed acoustic event", "error", err)
			continue
		}
		acoustic = append(acoustic, ev)
	}

	fused := fusion.Fuse(lexical, acoustic)
	for _, ev := range fused {
		a.obs.RecordFusedEvent(ctx, string(ev.Source), string(ev.Kind))
	}

	m := metrics.Normalize(words, timeline.ContentWords(words), in.Segments, fused, in.TotalDuration)

	ctxCfg := fluency.ResolveContext(a.resolveContextKey(in.Context), a.contextOverrides)
	fl := fluency.Evaluate(m, ctxCfg)

	criteria := band.ScoreAll(m, in.Spans)
	overall, err := a.aggregator.Aggregate(ctx, criteria)
	if err != nil {
		return nil, err
	}

	a.obs.RecordBand(ctx, overall.OverallBand, overall.CalibrationClamped)
	a.obs.RecordAnalysis(ctx, time.Since(start).Seconds(),
		string(a.resolveContextKey(in.Context)), string(fl.Readiness))

	return &Result{
		Metrics:  m,
		Fluency:  fl,
		Criteria: criteria,
		Band:     &overall,
		Events:   fused,
	}, nil
}

// terminal builds the typed result for analyses that cannot be scored.
func (a *Analyzer) terminal(ctx context.Context, in Input, readiness fluency.Readiness, start time.Time) *Result {
	a.obs.RecordAnalysis(ctx, time.Since(start).Seconds(),
		string(a.resolveContextKey(in.Context)), string(readiness))
	return &Result{
		Fluency: fluency.Result{
			Readiness:  readiness,
			Issues:     []fluency.Issue{},
			ActionPlan: []string{},
		},
		Events: []event.TimedEvent{},
	}
}

func (a *Analyzer) resolveContextKey(key fluency.Context) fluency.Context {
	if key == "" {
		return fluency.DefaultContext
	}
	return key
}
