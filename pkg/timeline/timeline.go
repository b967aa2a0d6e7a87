// Package timeline defines the data contracts the cadence scoring core
// consumes from its upstream collaborators: the word timeline produced by
// transcription, the segment timeline, the acoustic token stream produced by
// phoneme/CTC inference, and the span counts produced by LLM annotation.
//
// All timestamps are float64 seconds from the start of the utterance. The
// core never performs model inference itself — these types are the complete
// surface through which detector output reaches it.
package timeline

// FrameSeconds is the fixed frame resolution of the acoustic token stream.
// Token start times are StartFrame * FrameSeconds.
const FrameSeconds = 0.02

// Word is a single entry of the word timeline as produced by transcription.
//
// IsFiller is false as delivered; it is set exactly once by [MarkFillers]
// before fusion and must not be mutated afterwards.
type Word struct {
	// Word is the transcribed token text.
	Word string `json:"word"`

	// Start and End bound the word in seconds. End must be greater than Start.
	Start float64 `json:"start"`
	End   float64 `json:"end"`

	// Confidence is the transcriber's word confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// IsFiller marks the word as a lexical hesitation token ("um", "uh", …).
	IsFiller bool `json:"is_filler"`
}

// Duration returns the word's length in seconds.
func (w Word) Duration() float64 { return w.End - w.Start }

// Segment is one transcription segment (roughly a breath group or clause).
type Segment struct {
	Text          string  `json:"text"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	AvgConfidence float64 `json:"avg_confidence"`
}

// AcousticToken is one frame-level label emitted by the acoustic detector.
// Consecutive same-label tokens are merged into candidate events by the
// event normalizer.
type AcousticToken struct {
	// Label is the detector's label, typically a single phoneme-class
	// character or a short cluster (e.g. "A", "MM", "T").
	Label string `json:"label"`

	// StartFrame is the frame index at fixed [FrameSeconds] resolution.
	StartFrame int `json:"start_frame"`
}

// Start returns the token's start time in seconds.
func (t AcousticToken) Start() float64 { return float64(t.StartFrame) * FrameSeconds }

// SpanCounts carries the LLM-derived span annotations consumed by the band
// criterion scorers. The counts are already aggregated per category; the core
// never sees the underlying spans.
type SpanCounts struct {
	// CoherenceBreaks counts abrupt topic or logic discontinuities.
	CoherenceBreaks int `json:"coherence_breaks"`

	// WordChoiceErrors counts lexically inappropriate word selections.
	WordChoiceErrors int `json:"word_choice_errors"`

	// AdvancedVocabulary counts less-common, precise vocabulary items used
	// appropriately.
	AdvancedVocabulary int `json:"advanced_vocabulary_count"`

	// ComplexAttempted and ComplexAccurate count complex grammatical
	// structures attempted and produced without error.
	ComplexAttempted int `json:"complex_structures_attempted"`
	ComplexAccurate  int `json:"complex_structures_accurate"`

	// GrammarErrors counts grammatical errors across the utterance.
	GrammarErrors int `json:"grammar_errors"`

	// MeaningBlockingErrorRatio is the fraction of errors that obscure
	// meaning, in [0, 1].
	MeaningBlockingErrorRatio float64 `json:"meaning_blocking_error_ratio"`

	// TopicRelevant reports whether the response addressed the prompt.
	TopicRelevant bool `json:"topic_relevance"`

	// Monotone reports whether the prosody detector flagged flat intonation.
	Monotone bool `json:"monotone"`
}
