// Package metrics computes the normalized speech metrics consumed by the
// fluency subscorer and the band criterion scorers.
//
// All metrics are derived once per analysis from the word timeline, segment
// timeline, and fused disfluency stream, and are read-only afterwards.
// Internal computation uses full float precision; values are rounded to
// their published precision only at the boundary.
package metrics

import "math"

// NormalizedMetrics is the flat set of speech metrics. Every ratio field is
// in [0, 1]; every rate field is ≥ 0.
type NormalizedMetrics struct {
	// WordsPerMinute is the content-word rate (fillers excluded).
	WordsPerMinute float64 `json:"words_per_minute"`

	// FillersPerMinute is the duration-weighted filler rate: short blips
	// count 0.2, medium fillers 0.6, long fillers 1.0.
	FillersPerMinute float64 `json:"fillers_per_minute"`

	// StuttersPerMinute counts grouped stutter events per speaking-minute.
	StuttersPerMinute float64 `json:"stutters_per_minute"`

	// LongPauseRate counts pauses over 1.0 s per speaking-minute.
	LongPauseRate float64 `json:"long_pause_rate"`

	// VeryLongPauseRate counts pauses over 2.0 s per speaking-minute.
	VeryLongPauseRate float64 `json:"very_long_pause_rate"`

	// PauseVariability is the standard deviation of pause durations,
	// reported only when more than 5 pauses exist (0 otherwise — an
	// insufficient-sample rule, not "no variability").
	PauseVariability float64 `json:"pause_variability"`

	// PauseTimeRatio is total pause time over total duration.
	PauseTimeRatio float64 `json:"pause_time_ratio"`

	// VocabularyRichness is unique lowercase content words over total
	// content words.
	VocabularyRichness float64 `json:"vocabulary_richness"`

	// RepetitionRatio is the frequency of the single most common
	// non-stopword content word over all non-stopword content words.
	RepetitionRatio float64 `json:"repetition_ratio"`

	// MeanUtteranceLength is the mean word count between pause boundaries
	// (gap > 0.5 s).
	MeanUtteranceLength float64 `json:"mean_utterance_length"`

	// MeanConfidence and LowConfidenceRatio summarise transcriber word
	// confidence over the full timeline.
	MeanConfidence     float64 `json:"mean_confidence"`
	LowConfidenceRatio float64 `json:"low_confidence_ratio"`

	// LexicalDensity is non-stopword content words over the full-timeline
	// word count (fillers included in the denominator).
	LexicalDensity float64 `json:"lexical_density"`

	// SpeakingTime is total duration minus total pause time, in seconds.
	SpeakingTime float64 `json:"speaking_time"`

	// PauseAfterFillerRate is intentionally disabled and always 0. The
	// upstream computation was dead code; the field is carried for contract
	// stability only.
	PauseAfterFillerRate float64 `json:"pause_after_filler_rate"`
}

// AsMap returns the metrics as a name → value mapping for the reporting
// layer. Keys match the JSON field names.
func (m NormalizedMetrics) AsMap() map[string]float64 {
	return map[string]float64{
		"words_per_minute":        m.WordsPerMinute,
		"fillers_per_minute":      m.FillersPerMinute,
		"stutters_per_minute":     m.StuttersPerMinute,
		"long_pause_rate":         m.LongPauseRate,
		"very_long_pause_rate":    m.VeryLongPauseRate,
		"pause_variability":       m.PauseVariability,
		"pause_time_ratio":        m.PauseTimeRatio,
		"vocabulary_richness":     m.VocabularyRichness,
		"repetition_ratio":        m.RepetitionRatio,
		"mean_utterance_length":   m.MeanUtteranceLength,
		"mean_confidence":         m.MeanConfidence,
		"low_confidence_ratio":    m.LowConfidenceRatio,
		"lexical_density":         m.LexicalDensity,
		"speaking_time":           m.SpeakingTime,
		"pause_after_filler_rate": m.PauseAfterFillerRate,
	}
}

// round2 and round3 round to the published precision. Applied at the
// boundary only, never mid-computation.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
