// Package observe provides application-wide observability primitives for
// cadence: OpenTelemetry metrics, tracing, and trace-aware structured
// logging.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still
// be scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all cadence metrics.
const meterName = "github.com/fluentia-ai/cadence"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// AnalysisDuration tracks end-to-end analysis latency. Use with
	// attribute: attribute.String("context", ...)
	AnalysisDuration metric.Float64Histogram

	// Analyses counts completed analyses. Use with attributes:
	//   attribute.String("context", ...), attribute.String("readiness", ...)
	Analyses metric.Int64Counter

	// FusedEvents counts disfluency events surviving fusion. Use with
	// attributes: attribute.String("source", ...), attribute.String("kind", ...)
	FusedEvents metric.Int64Counter

	// CalibrationClamps counts analyses where the population guard lowered
	// the overall band.
	CalibrationClamps metric.Int64Counter

	// BandDistribution tracks awarded overall bands across the population.
	BandDistribution metric.Float64Histogram
}

// analysisBuckets defines histogram bucket boundaries (in seconds) for the
// pure-computation analysis pipeline, which runs well under a second.
var analysisBuckets = []float64{
	0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1,
}

// bandBuckets covers the half-band score scale.
var bandBuckets = []float64{
	1, 2, 3, 4, 4.5, 5, 5.5, 6, 6.5, 7, 7.5, 8, 8.5, 9,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.AnalysisDuration, err = m.Float64Histogram("cadence.analysis.duration",
		metric.WithDescription("End-to-end latency of one utterance analysis."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.Analyses, err = m.Int64Counter("cadence.analyses",
		metric.WithDescription("Total completed analyses by speaking context and readiness."),
	); err != nil {
		return nil, err
	}
	if met.FusedEvents, err = m.Int64Counter("cadence.fusion.events",
		metric.WithDescription("Total disfluency events surviving fusion, by source and kind."),
	); err != nil {
		return nil, err
	}
	if met.CalibrationClamps, err = m.Int64Counter("cadence.calibration.clamps",
		metric.WithDescription("Total analyses where population calibration lowered the overall band."),
	); err != nil {
		return nil, err
	}
	if met.BandDistribution, err = m.Float64Histogram("cadence.band.distribution",
		metric.WithDescription("Distribution of awarded overall bands."),
		metric.WithExplicitBucketBoundaries(bandBuckets...),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordAnalysis records one completed analysis with its duration in
// seconds, speaking context, and readiness verdict.
func (m *Metrics) RecordAnalysis(ctx context.Context, seconds float64, speakingContext, readiness string) {
	attrs := metric.WithAttributes(
		attribute.String("context", speakingContext),
		attribute.String("readiness", readiness),
	)
	m.Analyses.Add(ctx, 1, attrs)
	m.AnalysisDuration.Record(ctx, seconds,
		metric.WithAttributes(attribute.String("context", speakingContext)))
}

// RecordFusedEvent records one disfluency event that survived fusion.
func (m *Metrics) RecordFusedEvent(ctx context.Context, source, kind string) {
	m.FusedEvents.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("kind", kind),
		),
	)
}

// RecordBand records one awarded overall band, incrementing the clamp
// counter when the population guard lowered it.
func (m *Metrics) RecordBand(ctx context.Context, band float64, clamped bool) {
	m.BandDistribution.Record(ctx, band)
	if clamped {
		m.CalibrationClamps.Add(ctx, 1)
	}
}
