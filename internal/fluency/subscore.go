package fluency

import (
	"math"

	"github.com/fluentia-ai/cadence/internal/metrics"
)

// Subscore category names.
const (
	CategorySpeechRate = "speech_rate"
	CategoryPause      = "pause"
	CategoryFiller     = "filler"
	CategoryStability  = "stability"
	CategoryLexical    = "lexical"
)

// Weights is the fixed contribution of each subscore to the overall fluency
// score. The values must sum to 1.0 — a property covered by tests.
var Weights = map[string]float64{
	CategoryPause:      0.30,
	CategoryFiller:     0.25,
	CategoryStability:  0.20,
	CategorySpeechRate: 0.15,
	CategoryLexical:    0.10,
}

// Speech-rate piecewise-linear shape (content words per minute).
const (
	rateTooSlowFloor = 60.0  // at or below → 0
	rateComfortable  = 100.0 // reaches 1.0
	rateOptimalCeil  = 160.0 // flat at 1.0 through here
	rateDecayRange   = 60.0  // linear decay back to 0 over this range
)

// Allowance baselines scaled by the context tolerances.
const (
	maxLongPausesPerMinute = 4.0
	maxFillersPerMinute    = 6.0
	pauseVariabilityBase   = 0.8 // seconds of stddev
)

// Compound penalty thresholds (applied to the weighted sum, not per-subscore).
const (
	lostControlPenalty      = 0.12
	lostControlRepetition   = 0.06
	fillerHeavyPenalty      = 0.08
	fillerHeavyRateMin      = 3.0
	compoundSubscoreCeiling = 0.75
	compoundPauseFloor      = 0.8
)

// Subscores holds the five bounded [0, 1] component scores.
type Subscores struct {
	SpeechRate float64 `json:"speech_rate"`
	Pause      float64 `json:"pause"`
	Filler     float64 `json:"filler"`
	Stability  float64 `json:"stability"`
	Lexical    float64 `json:"lexical"`
}

// AsMap returns the subscores keyed by category name.
func (s Subscores) AsMap() map[string]float64 {
	return map[string]float64{
		CategorySpeechRate: s.SpeechRate,
		CategoryPause:      s.Pause,
		CategoryFiller:     s.Filler,
		CategoryStability:  s.Stability,
		CategoryLexical:    s.Lexical,
	}
}

// ComputeSubscores derives the five subscores from normalized metrics under
// the given context tolerances. Each result is clamped to [0, 1].
func ComputeSubscores(m metrics.NormalizedMetrics, ctx ContextConfig) Subscores {
	return Subscores{
		SpeechRate: speechRateScore(m.WordsPerMinute),
		Pause:      clamp01(1 - m.LongPauseRate/(maxLongPausesPerMinute*ctx.PauseTolerance)),
		Filler:     clamp01(1 - m.FillersPerMinute/maxFillersPerMinute),
		Stability:  clamp01(1 - m.PauseVariability/(pauseVariabilityBase*ctx.PauseVariabilityTolerance)),
		Lexical:    clamp01(0.65*m.VocabularyRichness + 0.35*(1-m.RepetitionRatio)),
	}
}

// speechRateScore is the piecewise-linear trapezoid over WPM: 0 below the
// too-slow floor, rising to 1.0 at the comfortable rate, flat through the
// optimal ceiling, then decaying linearly back to 0.
func speechRateScore(wpm float64) float64 {
	switch {
	case wpm <= rateTooSlowFloor:
		return 0
	case wpm < rateComfortable:
		return (wpm - rateTooSlowFloor) / (rateComfortable - rateTooSlowFloor)
	case wpm <= rateOptimalCeil:
		return 1.0
	case wpm < rateOptimalCeil+rateDecayRange:
		return 1.0 - (wpm-rateOptimalCeil)/rateDecayRange
	default:
		return 0
	}
}

// Score combines the subscores into the 0–100 fluency score, applying the
// compound penalties that individual subscores cannot express:
//
//   - "lost control": fillers and stability both degraded while the speaker
//     loops on the same words (repetition ratio above 6 %) → −0.12;
//   - "fluent but filler-heavy": pausing is fine yet fillers exceed 3/min,
//     masking hesitation inside a fluent cadence → −0.08.
func Score(s Subscores, m metrics.NormalizedMetrics) int {
	weighted := Weights[CategoryPause]*s.Pause +
		Weights[CategoryFiller]*s.Filler +
		Weights[CategoryStability]*s.Stability +
		Weights[CategorySpeechRate]*s.SpeechRate +
		Weights[CategoryLexical]*s.Lexical

	var penalty float64
	if s.Filler < compoundSubscoreCeiling &&
		s.Stability < compoundSubscoreCeiling &&
		m.RepetitionRatio > lostControlRepetition {
		penalty += lostControlPenalty
	}
	if s.Pause > compoundPauseFloor && m.FillersPerMinute > fillerHeavyRateMin {
		penalty += fillerHeavyPenalty
	}

	return int(math.Round(100 * clamp01(weighted-penalty)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
