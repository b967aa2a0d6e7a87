package band

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/fluentia-ai/cadence/internal/calibration"
)

// Gap-weighting: a wide spread between the strongest and weakest criterion
// pulls the overall band toward the weakest.
const (
	wideGap         = 2.0
	moderateGap     = 1.5
	wideGapMinW     = 0.4
	moderateGapMinW = 0.3
)

// Weak-criteria caps.
const (
	weakBand   = 5.0
	capTwoWeak = 5.0
	capOneWeak = 6.0
)

// Population calibration thresholds. They only activate once the history
// holds at least [calibration.MinHistory] samples.
const (
	calHighBand    = 8.0
	calHighMaxFrac = 0.05
	calHighClamp   = 7.5
	calTopBand     = 9.0
	calTopMaxFrac  = 0.01
	calTopClamp    = 8.5
	calAllCriteria = 7.5
)

// OverallBandResult pairs the overall band with the per-criterion bands.
type OverallBandResult struct {
	OverallBand    float64               `json:"overall_band"`
	CriterionBands map[Criterion]float64 `json:"criterion_bands"`

	// CalibrationClamped reports whether the population guard lowered the
	// overall band.
	CalibrationClamped bool `json:"calibration_clamped,omitempty"`
}

// Aggregator combines the four criterion results into an overall band and
// records it in the calibration store.
type Aggregator struct {
	store      calibration.Store
	minHistory int
}

// AggregatorOption is a functional option for configuring an [Aggregator].
type AggregatorOption func(*Aggregator)

// WithMinHistory overrides the number of recorded bands required before the
// population calibration thresholds activate. Default:
// [calibration.MinHistory].
func WithMinHistory(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.minHistory = n
		}
	}
}

// NewAggregator creates an [Aggregator] backed by store. The store must not
// be nil; callers without persistence use [calibration.NewMemoryStore].
func NewAggregator(store calibration.Store, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{store: store, minHistory: calibration.MinHistory}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Aggregate computes the overall band from the four criterion results.
//
// The stages run in fixed order: mean and gap-weighting, weak-criteria
// caps, hard ceilings (strictest wins), population calibration, the final
// bounds check against the criterion extremes, and half-band rounding.
// The result is appended to the calibration history as a side effect.
//
// Calibration store failures are soft: the guard is statistical, so a
// failed read or append logs a warning and the aggregate proceeds.
func (a *Aggregator) Aggregate(ctx context.Context, results []CriterionResult) (OverallBandResult, error) {
	if len(results) != len(Criteria) {
		return OverallBandResult{}, fmt.Errorf("band: aggregate needs %d criterion results, got %d", len(Criteria), len(results))
	}

	bands := make(map[Criterion]float64, len(results))
	var sum float64
	minB, maxB := math.Inf(1), math.Inf(-1)
	for _, r := range results {
		bands[r.Criterion] = r.Score
		sum += r.Score
		minB = math.Min(minB, r.Score)
		maxB = math.Max(maxB, r.Score)
	}
	avg := sum / float64(len(results))
	gap := maxB - minB

	overall := avg
	switch {
	case gap >= wideGap:
		overall = wideGapMinW*minB + (1-wideGapMinW)*avg
	case gap >= moderateGap:
		overall = moderateGapMinW*minB + (1-moderateGapMinW)*avg
	}

	// Weak-criteria caps only lower, never raise.
	weak := 0
	for _, b := range bands {
		if b <= weakBand {
			weak++
		}
	}
	switch {
	case weak >= 2:
		overall = math.Min(overall, capTwoWeak)
	case weak == 1:
		overall = math.Min(overall, capOneWeak)
	}

	// Hard ceilings keyed off specific criteria; the strictest fired
	// ceiling wins.
	ceiling := math.Inf(1)
	if bands[CriterionFluencyCoherence] < 5.0 {
		ceiling = math.Min(ceiling, 6.0)
	}
	if bands[CriterionGrammar] < 5.0 {
		ceiling = math.Min(ceiling, 5.5)
	}
	if minB <= 4.0 {
		ceiling = math.Min(ceiling, 5.0)
	}
	if bands[CriterionLexicalResource] <= 6.0 && maxB >= 8.0 {
		ceiling = math.Min(ceiling, 7.0)
	}
	overall = math.Min(overall, ceiling)

	overall, clamped := a.calibrate(ctx, overall, bands)

	// Final bounds: the overall band may not exceed the best criterion by
	// more than half a band nor trail the worst by more than one.
	overall = math.Min(overall, maxB+0.5)
	overall = math.Max(overall, minB-1.0)

	overall = RoundHalf(overall)

	if err := a.store.Append(ctx, overall); err != nil {
		slog.Warn("band: failed to record band in calibration history", "error", err)
	}

	return OverallBandResult{
		OverallBand:        overall,
		CriterionBands:     bands,
		CalibrationClamped: clamped,
	}, nil
}

// calibrate applies the population guard: when too many recent results land
// in the top bands, borderline results are clamped back down. Any store
// failure disables the guard for this analysis.
func (a *Aggregator) calibrate(ctx context.Context, overall float64, bands map[Criterion]float64) (float64, bool) {
	n, err := a.store.Len(ctx)
	if err != nil {
		slog.Warn("band: calibration history unavailable", "error", err)
		return overall, false
	}
	if n < a.minHistory {
		return overall, false
	}

	clamped := false

	fracHigh, err := a.store.FractionAtOrAbove(ctx, calHighBand)
	if err != nil {
		slog.Warn("band: calibration query failed", "threshold", calHighBand, "error", err)
		return overall, false
	}
	if fracHigh > calHighMaxFrac && overall > calHighClamp && !allAtLeast(bands, calAllCriteria) {
		slog.Info("band: population calibration clamped overall band",
			"from", overall, "to", calHighClamp, "frac_high", fracHigh)
		overall = calHighClamp
		clamped = true
	}

	fracTop, err := a.store.FractionAtOrAbove(ctx, calTopBand)
	if err != nil {
		slog.Warn("band: calibration query failed", "threshold", calTopBand, "error", err)
		return overall, clamped
	}
	if fracTop > calTopMaxFrac && overall >= calTopBand {
		slog.Info("band: population calibration clamped top band",
			"from", overall, "to", calTopClamp, "frac_top", fracTop)
		overall = calTopClamp
		clamped = true
	}

	return overall, clamped
}

func allAtLeast(bands map[Criterion]float64, threshold float64) bool {
	for _, b := range bands {
		if b < threshold {
			return false
		}
	}
	return true
}
