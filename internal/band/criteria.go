package band

import (
	"github.com/fluentia-ai/cadence/internal/metrics"
	"github.com/fluentia-ai/cadence/pkg/timeline"
)

// ScoreAll runs all four criterion scorers and returns their results in
// canonical order.
func ScoreAll(m metrics.NormalizedMetrics, spans timeline.SpanCounts) []CriterionResult {
	return []CriterionResult{
		ScoreFluencyCoherence(m, spans),
		ScoreLexicalResource(m, spans),
		ScoreGrammar(m, spans),
		ScorePronunciation(m, spans),
	}
}

// ScoreFluencyCoherence grades pacing, pausing, hesitation, and discourse
// coherence.
func ScoreFluencyCoherence(m metrics.NormalizedMetrics, spans timeline.SpanCounts) CriterionResult {
	var deds []Deduction
	var gates []Gate

	if d, ok := deepestAtOrAbove(m.LongPauseRate, []bracket{
		{1.0, 0.5, "frequent long pauses"},
		{2.0, 1.0, "long pauses dominate delivery"},
		{4.0, 2.0, "speech repeatedly stalls"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(m.FillersPerMinute, []bracket{
		{3.0, 0.5, "noticeable filler rate"},
		{6.0, 1.0, "heavy filler rate"},
		{10.0, 2.0, "fillers pervade delivery"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(m.StuttersPerMinute, []bracket{
		{2.0, 0.5, "recurring stutter onsets"},
		{5.0, 1.0, "frequent stutter onsets"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestBelow(m.WordsPerMinute, []bracket{
		{90.0, 0.5, "slow delivery"},
		{70.0, 1.0, "laboured delivery"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(float64(spans.CoherenceBreaks), []bracket{
		{1, 0.5, "occasional coherence break"},
		{3, 1.5, "repeated coherence breaks"},
		{5, 2.5, "discourse frequently loses its thread"},
	}); ok {
		deds = append(deds, d)
	}

	if m.WordsPerMinute > 0 && m.WordsPerMinute < 50 {
		gates = append(gates, Gate{Reason: "delivery too slow to sustain discourse", Ceiling: 4.0})
	}
	if m.LongPauseRate >= 6 {
		gates = append(gates, Gate{Reason: "pausing breaks down delivery", Ceiling: 4.5})
	}
	if spans.CoherenceBreaks >= 6 {
		gates = append(gates, Gate{Reason: "response lacks coherent structure", Ceiling: 5.0})
	}
	if !spans.TopicRelevant {
		gates = append(gates, Gate{Reason: "response off topic", Ceiling: 5.5})
	}

	excellent := m.LongPauseRate <= 0.5 &&
		m.FillersPerMinute <= 1.0 &&
		spans.CoherenceBreaks == 0 &&
		m.WordsPerMinute >= 100 && m.WordsPerMinute <= 180

	return finalize(CriterionFluencyCoherence, deds, gates, excellent, map[string]float64{
		"words_per_minute":    m.WordsPerMinute,
		"long_pause_rate":     m.LongPauseRate,
		"fillers_per_minute":  m.FillersPerMinute,
		"stutters_per_minute": m.StuttersPerMinute,
		"coherence_breaks":    float64(spans.CoherenceBreaks),
	})
}

// ScoreLexicalResource grades vocabulary range, precision, and repetition.
func ScoreLexicalResource(m metrics.NormalizedMetrics, spans timeline.SpanCounts) CriterionResult {
	var deds []Deduction
	var gates []Gate

	if d, ok := deepestBelow(m.VocabularyRichness, []bracket{
		{0.55, 0.5, "limited vocabulary range"},
		{0.45, 1.0, "narrow vocabulary range"},
		{0.35, 2.0, "highly repetitive vocabulary"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(m.RepetitionRatio, []bracket{
		{0.08, 0.5, "leans on a favourite word"},
		{0.15, 1.0, "recycles the same word"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(float64(spans.WordChoiceErrors), []bracket{
		{1, 0.5, "occasional imprecise word choice"},
		{3, 1.0, "recurring word-choice errors"},
		{6, 2.0, "word choice frequently obscures intent"},
	}); ok {
		deds = append(deds, d)
	}
	if m.LexicalDensity > 0 && m.LexicalDensity < 0.3 {
		deds = append(deds, Deduction{Reason: "low content density", Amount: 0.5})
	}

	if m.VocabularyRichness > 0 && m.VocabularyRichness < 0.3 {
		gates = append(gates, Gate{Reason: "vocabulary too narrow for the task", Ceiling: 4.5})
	}
	if spans.WordChoiceErrors >= 10 {
		gates = append(gates, Gate{Reason: "word choice breaks down", Ceiling: 5.0})
	}

	excellent := spans.AdvancedVocabulary >= 3 &&
		spans.WordChoiceErrors == 0 &&
		m.VocabularyRichness >= 0.65

	return finalize(CriterionLexicalResource, deds, gates, excellent, map[string]float64{
		"vocabulary_richness": m.VocabularyRichness,
		"repetition_ratio":    m.RepetitionRatio,
		"lexical_density":     m.LexicalDensity,
		"word_choice_errors":  float64(spans.WordChoiceErrors),
		"advanced_vocabulary": float64(spans.AdvancedVocabulary),
	})
}

// ScoreGrammar grades grammatical range and accuracy.
func ScoreGrammar(m metrics.NormalizedMetrics, spans timeline.SpanCounts) CriterionResult {
	var deds []Deduction
	var gates []Gate

	if d, ok := deepestAtOrAbove(float64(spans.GrammarErrors), []bracket{
		{2, 0.5, "occasional grammar slips"},
		{5, 1.0, "recurring grammar errors"},
		{10, 2.0, "grammar errors throughout"},
	}); ok {
		deds = append(deds, d)
	}
	if d, ok := deepestAtOrAbove(spans.MeaningBlockingErrorRatio, []bracket{
		{0.2, 1.0, "errors sometimes obscure meaning"},
		{0.5, 2.0, "errors regularly obscure meaning"},
	}); ok {
		deds = append(deds, d)
	}
	if spans.ComplexAttempted == 0 {
		deds = append(deds, Deduction{Reason: "no complex structures attempted", Amount: 1.0})
	}

	if spans.ComplexAttempted > 0 && spans.ComplexAccurate == 0 {
		gates = append(gates, Gate{Reason: "no complex structure produced accurately", Ceiling: 4.5})
	}
	if spans.MeaningBlockingErrorRatio >= 0.5 {
		gates = append(gates, Gate{Reason: "meaning frequently blocked by errors", Ceiling: 5.0})
	}

	excellent := spans.GrammarErrors == 0 &&
		spans.MeaningBlockingErrorRatio == 0 &&
		spans.ComplexAccurate >= 3

	return finalize(CriterionGrammar, deds, gates, excellent, map[string]float64{
		"grammar_errors":               float64(spans.GrammarErrors),
		"meaning_blocking_error_ratio": spans.MeaningBlockingErrorRatio,
		"complex_attempted":            float64(spans.ComplexAttempted),
		"complex_accurate":             float64(spans.ComplexAccurate),
	})
}

// Pronunciation quality blend weights: segmental confidence carries 0.4,
// prosody 0.6.
const (
	segmentalWeight = 0.4
	prosodyWeight   = 0.6

	monotoneProsody   = 0.4
	prosodyCeiling    = 0.8
	prosodyConfFactor = 0.9
)

// PronunciationQuality blends a segmental confidence term with a prosody
// term. The segmental term is 0.7·meanConfidence + 0.3·(1−lowConfidence
// ratio); the prosody term is a fixed 0.4 when monotone delivery was
// detected, otherwise min(0.8, meanConfidence·0.9).
func PronunciationQuality(m metrics.NormalizedMetrics, monotone bool) float64 {
	segmental := 0.7*m.MeanConfidence + 0.3*(1-m.LowConfidenceRatio)
	prosody := monotoneProsody
	if !monotone {
		p := m.MeanConfidence * prosodyConfFactor
		if p > prosodyCeiling {
			p = prosodyCeiling
		}
		prosody = p
	}
	return segmentalWeight*segmental + prosodyWeight*prosody
}

// ScorePronunciation grades intelligibility from transcriber confidence and
// prosody.
func ScorePronunciation(m metrics.NormalizedMetrics, spans timeline.SpanCounts) CriterionResult {
	quality := PronunciationQuality(m, spans.Monotone)

	var deds []Deduction
	var gates []Gate

	if d, ok := deepestBelow(quality, []bracket{
		{0.80, 0.5, "pronunciation slightly effortful to follow"},
		{0.70, 1.0, "pronunciation takes effort to follow"},
		{0.60, 2.0, "pronunciation impedes understanding"},
		{0.45, 3.0, "pronunciation frequently unintelligible"},
	}); ok {
		deds = append(deds, d)
	}
	if m.LowConfidenceRatio >= 0.3 {
		deds = append(deds, Deduction{Reason: "many words unclear to the transcriber", Amount: 0.5})
	}
	if m.StuttersPerMinute >= 3 {
		deds = append(deds, Deduction{Reason: "stutter onsets disrupt articulation", Amount: 0.5})
	}

	if quality < 0.35 {
		gates = append(gates, Gate{Reason: "intelligibility breaks down", Ceiling: 4.0})
	}
	if spans.Monotone && quality < 0.5 {
		gates = append(gates, Gate{Reason: "flat, unclear delivery", Ceiling: 5.5})
	}

	excellent := quality >= 0.8 && !spans.Monotone && m.LowConfidenceRatio <= 0.05

	return finalize(CriterionPronunciation, deds, gates, excellent, map[string]float64{
		"quality":              quality,
		"mean_confidence":      m.MeanConfidence,
		"low_confidence_ratio": m.LowConfidenceRatio,
		"stutters_per_minute":  m.StuttersPerMinute,
	})
}
