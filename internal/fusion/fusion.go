// Package fusion reconciles the lexical and acoustic disfluency detectors
// into a single deduplicated, chronologically ordered event stream.
//
// Lexical detections are authoritative: the transcriber heard the sound
// clearly enough to emit a token, so its events are always kept and tagged
// "clear". Acoustic detections fill the gaps the transcriber missed; each is
// appended only when it does not duplicate an already-accepted event, and is
// tagged "subtle". After merging, consecutive repeated-consonant events are
// grouped into single stutter events carrying a repeat count.
package fusion

import (
	"sort"

	"github.com/fluentia-ai/cadence/internal/event"
)

const (
	// overlapTol is the intrusion depth two events must share before the
	// later one counts as a duplicate. Events that merely touch — or overlap
	// by less than this — are distinct sounds.
	overlapTol = 0.05

	// groupGapSec is the maximum silence between two same-label stutter
	// bursts that still joins them into one repetition group.
	groupGapSec = 0.15

	// minStutterDuration: singleton groups shorter than this are noise.
	minStutterDuration = 0.15
)

// overlaps reports whether a and b overlap by more than [overlapTol].
// Both inequalities are strict: exactly-touching events never overlap, and
// an intrusion of exactly the tolerance does not count.
func overlaps(a, b event.TimedEvent) bool {
	return a.Start < b.End-overlapTol && b.Start < a.End-overlapTol
}

// Merge combines lexical filler events with classified acoustic candidates
// into one unified stream, first-writer-wins: all lexical events are accepted
// up front, then each acoustic candidate (in its original order) is accepted
// only if it does not overlap any already-accepted event within tolerance.
//
// Accepted acoustic events are tagged [event.StyleSubtle]; lexical events
// keep their [event.StyleClear] tag. The result is sorted ascending by start.
// Empty inputs are fine and yield an empty, non-nil stream.
func Merge(lexical, acoustic []event.TimedEvent) []event.TimedEvent {
	accepted := make([]event.TimedEvent, 0, len(lexical)+len(acoustic))
	accepted = append(accepted, lexical...)

	for _, cand := range acoustic {
		dup := false
		for _, a := range accepted {
			if overlaps(cand, a) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		cand.Style = event.StyleSubtle
		accepted = append(accepted, cand)
	}

	sort.SliceStable(accepted, func(i, j int) bool {
		return accepted[i].Start < accepted[j].Start
	})
	return accepted
}

// stutterGroup is the left-fold accumulator used while grouping consecutive
// repeated-consonant events.
type stutterGroup struct {
	ev event.TimedEvent
}

// extend absorbs e into the group, stretching its end and counting the
// repetition.
func (g *stutterGroup) extend(e event.TimedEvent) {
	if e.End > g.ev.End {
		g.ev.End = e.End
	}
	g.ev.Duration = g.ev.End - g.ev.Start
	g.ev.RepeatCount++
}

// GroupStutters folds the stutter subset of stream into repetition groups and
// recombines them with the untouched non-stutter events.
//
// Two consecutive stutters join the current group when they carry the same
// raw label and the gap from the group's end to the event's start is at most
// [groupGapSec]. After grouping, singleton groups shorter than
// [minStutterDuration] are dropped as noise. The result is re-sorted by start.
func GroupStutters(stream []event.TimedEvent) []event.TimedEvent {
	var stutters, rest []event.TimedEvent
	for _, e := range stream {
		if e.Kind == event.KindStutter {
			stutters = append(stutters, e)
		} else {
			rest = append(rest, e)
		}
	}
	if len(stutters) == 0 {
		out := make([]event.TimedEvent, len(rest))
		copy(out, rest)
		return out
	}

	sort.SliceStable(stutters, func(i, j int) bool {
		return stutters[i].Start < stutters[j].Start
	})

	var groups []stutterGroup
	var cur *stutterGroup
	for _, s := range stutters {
		if cur != nil && s.Label == cur.ev.Label && s.Start-cur.ev.End <= groupGapSec {
			cur.extend(s)
			continue
		}
		if cur != nil {
			groups = append(groups, *cur)
		}
		g := stutterGroup{ev: s}
		if g.ev.RepeatCount < 1 {
			g.ev.RepeatCount = 1
		}
		cur = &g
	}
	groups = append(groups, *cur)

	out := make([]event.TimedEvent, 0, len(rest)+len(groups))
	out = append(out, rest...)
	for _, g := range groups {
		if g.ev.RepeatCount < 2 && g.ev.Duration < minStutterDuration {
			continue
		}
		out = append(out, g.ev)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

// Fuse runs the full fusion stage: merge the two detector streams, then
// group stutter repetitions. The returned stream is the authoritative
// disfluency timeline consumed by the metrics normalizer; it is never
// mutated downstream.
func Fuse(lexical, acoustic []event.TimedEvent) []event.TimedEvent {
	return GroupStutters(Merge(lexical, acoustic))
}
