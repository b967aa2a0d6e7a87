package fluency_test

import (
	"math"
	"testing"

	"github.com/fluentia-ai/cadence/internal/fluency"
	"github.com/fluentia-ai/cadence/internal/metrics"
)

var defaultCtx = fluency.ResolveContext(fluency.ContextConversational, nil)

func TestWeights_SumToOne(t *testing.T) {
	t.Parallel()

	var sum float64
	for _, w := range fluency.Weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-12 {
		t.Errorf("weights sum to %f, want 1.0", sum)
	}
	if len(fluency.Weights) != 5 {
		t.Errorf("weight table has %d entries, want 5", len(fluency.Weights))
	}
}

func TestComputeSubscores_SpeechRateShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wpm  float64
		want float64
	}{
		{0, 0},
		{60, 0},       // at the too-slow floor
		{80, 0.5},     // halfway up the rise
		{100, 1.0},    // comfortable
		{130, 1.0},    // inside the optimal plateau
		{160, 1.0},    // at the ceiling
		{190, 0.5},    // halfway down the decay
		{220, 0},      // decay exhausted
		{300, 0},
	}

	for _, tc := range tests {
		m := metrics.NormalizedMetrics{WordsPerMinute: tc.wpm}
		s := fluency.ComputeSubscores(m, defaultCtx)
		if math.Abs(s.SpeechRate-tc.want) > 1e-9 {
			t.Errorf("speech_rate(%g wpm) = %f, want %f", tc.wpm, s.SpeechRate, tc.want)
		}
	}
}

func TestComputeSubscores_PauseContextScaling(t *testing.T) {
	t.Parallel()

	m := metrics.NormalizedMetrics{LongPauseRate: 2.0}

	conv := fluency.ComputeSubscores(m, fluency.ResolveContext(fluency.ContextConversational, nil))
	pres := fluency.ComputeSubscores(m, fluency.ResolveContext(fluency.ContextPresentation, nil))

	// Presentations tolerate less pausing, so the same rate scores lower.
	if pres.Pause >= conv.Pause {
		t.Errorf("presentation pause %f should be below conversational %f", pres.Pause, conv.Pause)
	}
}

func TestComputeSubscores_FillerMonotonicity(t *testing.T) {
	t.Parallel()

	// Increasing filler rate never increases the filler subscore.
	prev := math.Inf(1)
	for rate := 0.0; rate <= 12.0; rate += 0.25 {
		m := metrics.NormalizedMetrics{FillersPerMinute: rate}
		s := fluency.ComputeSubscores(m, defaultCtx)
		if s.Filler > prev {
			t.Fatalf("filler subscore rose from %f to %f at rate %f", prev, s.Filler, rate)
		}
		prev = s.Filler
	}
}

func TestComputeSubscores_Bounds(t *testing.T) {
	t.Parallel()

	extremes := []metrics.NormalizedMetrics{
		{},
		{WordsPerMinute: 500, FillersPerMinute: 100, LongPauseRate: 50, PauseVariability: 10, RepetitionRatio: 1},
		{WordsPerMinute: 120, VocabularyRichness: 1},
	}
	for _, m := range extremes {
		s := fluency.ComputeSubscores(m, defaultCtx)
		for name, v := range s.AsMap() {
			if v < 0 || v > 1 {
				t.Errorf("subscore %s = %f outside [0, 1] for %+v", name, v, m)
			}
		}
	}
}

func TestScore_PerfectMetrics(t *testing.T) {
	t.Parallel()

	m := metrics.NormalizedMetrics{
		WordsPerMinute:     130,
		VocabularyRichness: 1.0,
	}
	s := fluency.ComputeSubscores(m, defaultCtx)
	if got := fluency.Score(s, m); got != 100 {
		t.Errorf("Score = %d, want 100", got)
	}
}

func TestScore_LostControlPenalty(t *testing.T) {
	t.Parallel()

	// Filler and stability both degraded plus repetition over 6 %.
	m := metrics.NormalizedMetrics{
		WordsPerMinute:   120,
		FillersPerMinute: 3.0,  // filler subscore 0.5
		PauseVariability: 0.6,  // stability 0.25
		RepetitionRatio:  0.10, // above the 0.06 trigger
	}
	s := fluency.ComputeSubscores(m, defaultCtx)

	base := fluency.Weights["pause"]*s.Pause +
		fluency.Weights["filler"]*s.Filler +
		fluency.Weights["stability"]*s.Stability +
		fluency.Weights["speech_rate"]*s.SpeechRate +
		fluency.Weights["lexical"]*s.Lexical

	want := int(math.Round(100 * (base - 0.12)))
	if got := fluency.Score(s, m); got != want {
		t.Errorf("Score = %d, want %d (lost-control penalty applied)", got, want)
	}
}

func TestScore_FillerHeavyPenalty(t *testing.T) {
	t.Parallel()

	// No pausing trouble (pause subscore 1.0 > 0.8) but fillers over 3/min.
	m := metrics.NormalizedMetrics{
		WordsPerMinute:     130,
		FillersPerMinute:   3.5,
		VocabularyRichness: 1.0,
	}
	s := fluency.ComputeSubscores(m, defaultCtx)

	base := 0.30*s.Pause + 0.25*s.Filler + 0.20*s.Stability + 0.15*s.SpeechRate + 0.10*s.Lexical
	want := int(math.Round(100 * (base - 0.08)))
	if got := fluency.Score(s, m); got != want {
		t.Errorf("Score = %d, want %d (filler-heavy penalty applied)", got, want)
	}
}

func TestScore_ClampedToZero(t *testing.T) {
	t.Parallel()

	m := metrics.NormalizedMetrics{
		FillersPerMinute: 50,
		LongPauseRate:    50,
		PauseVariability: 10,
		RepetitionRatio:  0.5,
	}
	s := fluency.ComputeSubscores(m, defaultCtx)
	if got := fluency.Score(s, m); got < 0 {
		t.Errorf("Score = %d, must never be negative", got)
	}
}

func TestResolveContext_UnknownFallsBack(t *testing.T) {
	t.Parallel()

	got := fluency.ResolveContext(fluency.Context("boardroom"), nil)
	want := fluency.ResolveContext(fluency.DefaultContext, nil)
	if got != want {
		t.Errorf("unknown context resolved to %+v, want default %+v", got, want)
	}
}

func TestResolveContext_OverridesWin(t *testing.T) {
	t.Parallel()

	overrides := map[fluency.Context]fluency.ContextConfig{
		fluency.ContextPresentation: {PauseTolerance: 0.5, PauseVariabilityTolerance: 0.5},
	}
	got := fluency.ResolveContext(fluency.ContextPresentation, overrides)
	if got.PauseTolerance != 0.5 {
		t.Errorf("override ignored: %+v", got)
	}
}
