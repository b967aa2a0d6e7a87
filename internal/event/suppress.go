package event

import (
	"log/slog"

	"github.com/fluentia-ai/cadence/pkg/timeline"
)

const (
	// wordOverlapTol relaxes the candidate-vs-word overlap test by 0.02 s on
	// each side, so candidates brushing a word boundary still count as
	// lexically captured.
	wordOverlapTol = 0.02

	// wordOnsetWindow is how far before a word start a candidate may end and
	// still be considered a word-onset artifact.
	wordOnsetWindow = 0.12

	// minArtifactDuration: onset-adjacent candidates at least this long are
	// kept; only shorter non-filler-shaped blips are suppressed.
	minArtifactDuration = 0.03
)

// FilterCandidates removes candidates already captured by the transcription
// and word-onset artifacts.
//
// A candidate overlapping any word (relaxed by [wordOverlapTol] on each side)
// is discarded — the transcriber already emitted a token for that span. A
// non-overlapping candidate ending within [wordOnsetWindow] before a word
// start is suppressed only when it is NOT filler-shaped AND shorter than
// [minArtifactDuration]: genuine filler sounds are never suppressed for mere
// adjacency.
//
// Word entries with end ≤ start are ignored for the tests and logged once.
func FilterCandidates(candidates []Candidate, words []timeline.Word) []Candidate {
	valid := words[:0:0]
	for _, w := range words {
		if w.End <= w.Start {
			slog.Warn("event: ignoring malformed word in suppression filter",
				"word", w.Word, "start", w.Start, "end", w.End)
			continue
		}
		valid = append(valid, w)
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if overlapsAnyWord(c, valid) {
			continue
		}
		if isOnsetArtifact(c, valid) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// overlapsAnyWord applies the relaxed overlap test against every word.
func overlapsAnyWord(c Candidate, words []timeline.Word) bool {
	for _, w := range words {
		if c.Start < w.End+wordOverlapTol && c.End > w.Start-wordOverlapTol {
			return true
		}
	}
	return false
}

// isOnsetArtifact reports whether c is an ultra-short, non-filler-shaped
// blip immediately preceding a word start.
func isOnsetArtifact(c Candidate, words []timeline.Word) bool {
	if c.Duration() >= minArtifactDuration {
		return false
	}
	if fillerShape.MatchString(collapseLabel(c.Label)) {
		return false
	}
	for _, w := range words {
		lead := w.Start - c.End
		if lead >= 0 && lead <= wordOnsetWindow {
			return true
		}
	}
	return false
}
