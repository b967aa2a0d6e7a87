// Package event canonicalises raw detector output into timed events and
// filters acoustic candidates that are already covered by the transcription.
//
// The package implements the first two stages of the disfluency pipeline:
//
//  1. Normalisation: frame-level acoustic tokens are merged into candidate
//     events, and lexical filler words become filler events directly.
//  2. Suppression: candidates that overlap transcribed words are discarded
//     (the word already captured the sound), and ultra-short non-filler
//     artifacts immediately preceding a word onset are dropped as
//     co-articulation noise.
//
// Surviving candidates are classified as filler or stutter events by label
// shape and handed to the fusion engine.
package event

import (
	"fmt"
	"strings"

	"github.com/fluentia-ai/cadence/pkg/timeline"
)

// Source identifies which detector produced an event.
type Source string

const (
	// SourceLexical marks events derived from the transcription word timeline.
	SourceLexical Source = "lexical"

	// SourceAcoustic marks events derived from the phoneme-level detector.
	SourceAcoustic Source = "acoustic"
)

// Kind is the event variant tag.
type Kind string

const (
	KindWord    Kind = "word"
	KindFiller  Kind = "filler"
	KindStutter Kind = "stutter"
)

// Style distinguishes how prominently a disfluency surfaced. Lexical
// detections were loud enough to be transcribed; acoustic-only detections
// were not.
type Style string

const (
	StyleClear  Style = "clear"
	StyleSubtle Style = "subtle"
)

// TimedEvent is the canonical event shape shared by every pipeline stage.
// Events are immutable once produced by the normalizer.
type TimedEvent struct {
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`

	// Text is the displayable token ("um", "t"). For acoustic events it is
	// resolved from the label via the label→word map.
	Text string `json:"text"`

	// Label is the raw acoustic label the event was built from. Empty for
	// lexical events. Stutter grouping compares raw labels, not text.
	Label string `json:"label,omitempty"`

	Source Source `json:"source"`
	Kind   Kind   `json:"kind"`
	Style  Style  `json:"style,omitempty"`

	// RepeatCount is the number of repetitions a grouped stutter represents.
	// Always ≥ 1 for stutters, 0 otherwise.
	RepeatCount int `json:"repeat_count,omitempty"`
}

// Validate reports whether the event satisfies the base invariants.
// Used to drop malformed events without aborting the analysis.
func (e TimedEvent) Validate() error {
	if e.End <= e.Start {
		return &MalformedEventError{Event: e, Reason: "end must be greater than start"}
	}
	if e.Kind == "" {
		return &MalformedEventError{Event: e, Reason: "missing kind"}
	}
	return nil
}

// MalformedEventError describes a single event that failed validation.
// The analysis drops the event and continues; the error exists so callers
// can log which event was discarded and why.
type MalformedEventError struct {
	Event  TimedEvent
	Reason string
}

func (e *MalformedEventError) Error() string {
	return fmt.Sprintf("event: malformed event [%0.3f, %0.3f] %q: %s",
		e.Event.Start, e.Event.End, e.Event.Text, e.Reason)
}

// FromWord converts a filler-marked word into a clear lexical filler event.
func FromWord(w timeline.Word) TimedEvent {
	return TimedEvent{
		Start:    w.Start,
		End:      w.End,
		Duration: w.End - w.Start,
		Text:     strings.ToLower(strings.Trim(w.Word, ".,!?;:'\"()- ")),
		Source:   SourceLexical,
		Kind:     KindFiller,
		Style:    StyleClear,
	}
}

// LexicalFillers converts every filler-marked word of the timeline into a
// lexical filler event, dropping malformed entries. The returned slice
// preserves timeline order.
func LexicalFillers(words []timeline.Word) ([]TimedEvent, []error) {
	var events []TimedEvent
	var dropped []error
	for _, w := range words {
		if !w.IsFiller {
			continue
		}
		ev := FromWord(w)
		if err := ev.Validate(); err != nil {
			dropped = append(dropped, err)
			continue
		}
		events = append(events, ev)
	}
	return events, dropped
}
