package event

import (
	"regexp"
	"strings"

	"github.com/fluentia-ai/cadence/pkg/timeline"
)

const (
	// mergeGapSec is the maximum silence between two same-label token runs
	// that still merges them into one candidate.
	mergeGapSec = 0.05

	// maxStutterDuration bounds a single stutter burst. Longer consonant
	// stretches are sustained sounds, not repeated onsets.
	maxStutterDuration = 0.15
)

// Candidate is an unclassified acoustic event produced by [MergeAdjacent].
type Candidate struct {
	Label string
	Start float64
	End   float64
}

// Duration returns the candidate's length in seconds.
func (c Candidate) Duration() float64 { return c.End - c.Start }

// fillerShape matches collapsed labels that sound like hesitation vowels or
// nasals. Labels are collapsed (repeated characters removed) before testing.
var fillerShape = regexp.MustCompile(`^(?:[AEIOUH]+|M+|N+)$`)

// DefaultLabelWords maps collapsed filler labels to displayable filler words.
// Labels without an entry resolve to "uh".
var DefaultLabelWords = map[string]string{
	"A":  "ah",
	"E":  "eh",
	"U":  "uh",
	"M":  "mm",
	"N":  "nn",
	"H":  "hm",
	"UH": "uh",
	"AH": "ah",
	"EH": "eh",
	"HM": "hmm",
	"MH": "mhm",
}

// stutterConsonants is the set of collapsed labels treated as repeated-onset
// stutter candidates.
var stutterConsonants = map[string]struct{}{
	"B": {}, "D": {}, "G": {}, "K": {}, "P": {}, "T": {},
	"S": {}, "F": {}, "V": {}, "Z": {}, "L": {}, "R": {}, "W": {},
}

// collapseLabel uppercases the label and removes consecutive duplicate
// characters ("TTT" → "T", "aah" → "AH").
func collapseLabel(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	if upper == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(upper))
	var prev rune
	for i, r := range upper {
		if i == 0 || r != prev {
			b.WriteRune(r)
		}
		prev = r
	}
	return b.String()
}

// MergeAdjacent folds the frame-level token stream into candidate events.
// Consecutive tokens merge into the current candidate when they carry the
// same label and the gap to the candidate's end is at most 0.05 s. Tokens
// with empty labels are skipped.
//
// The input is assumed ordered by frame index, as delivered by the detector.
func MergeAdjacent(tokens []timeline.AcousticToken) []Candidate {
	var out []Candidate
	var cur *Candidate

	for _, tok := range tokens {
		label := strings.TrimSpace(tok.Label)
		if label == "" {
			continue
		}
		start := tok.Start()
		end := start + timeline.FrameSeconds

		if cur != nil && cur.Label == label && start-cur.End <= mergeGapSec {
			if end > cur.End {
				cur.End = end
			}
			continue
		}

		if cur != nil {
			out = append(out, *cur)
		}
		cur = &Candidate{Label: label, Start: start, End: end}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// Classify resolves a surviving candidate into a filler or stutter event.
// The third return value is false when the candidate matches neither shape
// and should be discarded.
//
// Rules (label collapsed first):
//   - vowel/nasal shapes ([AEIOUH]+, M+, N+) → filler, text from labelWords
//     (default "uh");
//   - member of the stutter-consonant set, not also a filler word label, and
//     shorter than 0.15 s → stutter, text is the lowercase consonant;
//   - anything else → discarded.
func Classify(c Candidate, labelWords map[string]string) (TimedEvent, bool) {
	collapsed := collapseLabel(c.Label)
	if collapsed == "" {
		return TimedEvent{}, false
	}
	if labelWords == nil {
		labelWords = DefaultLabelWords
	}

	if fillerShape.MatchString(collapsed) {
		text, ok := labelWords[collapsed]
		if !ok {
			text = "uh"
		}
		return TimedEvent{
			Start:    c.Start,
			End:      c.End,
			Duration: c.End - c.Start,
			Text:     text,
			Label:    c.Label,
			Source:   SourceAcoustic,
			Kind:     KindFiller,
		}, true
	}

	if _, isStutter := stutterConsonants[collapsed]; isStutter {
		if _, isFillerWord := labelWords[collapsed]; !isFillerWord && c.Duration() < maxStutterDuration {
			return TimedEvent{
				Start:       c.Start,
				End:         c.End,
				Duration:    c.End - c.Start,
				Text:        strings.ToLower(collapsed),
				Label:       c.Label,
				Source:      SourceAcoustic,
				Kind:        KindStutter,
				RepeatCount: 1,
			}, true
		}
	}

	return TimedEvent{}, false
}
