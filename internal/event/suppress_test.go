package event_test

import (
	"testing"

	"github.com/fluentia-ai/cadence/internal/event"
	"github.com/fluentia-ai/cadence/pkg/timeline"
)

func TestFilterCandidates_OverlappingWordDiscarded(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{{Word: "hello", Start: 1.0, End: 1.5}}
	candidates := []event.Candidate{
		{Label: "A", Start: 1.1, End: 1.3},  // inside the word
		{Label: "A", Start: 1.51, End: 1.6}, // within the 0.02 s relaxation
		{Label: "A", Start: 2.0, End: 2.2},  // clear of the word
	}

	got := event.FilterCandidates(candidates, words)
	if len(got) != 1 {
		t.Fatalf("FilterCandidates kept %d candidates, want 1: %+v", len(got), got)
	}
	if got[0].Start != 2.0 {
		t.Errorf("kept candidate starts at %f, want 2.0", got[0].Start)
	}
}

func TestFilterCandidates_OnsetArtifactSuppressed(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{{Word: "table", Start: 3.0, End: 3.5}}

	// Ultra-short non-filler-shaped blip ending 0.05 s before the word.
	artifact := event.Candidate{Label: "T", Start: 2.93, End: 2.95}

	got := event.FilterCandidates([]event.Candidate{artifact}, words)
	if len(got) != 0 {
		t.Errorf("onset artifact kept: %+v, want suppressed", got)
	}
}

func TestFilterCandidates_FillerShapeNeverSuppressed(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{{Word: "table", Start: 3.0, End: 3.5}}

	// Same timing as an artifact, but filler-shaped — must survive.
	filler := event.Candidate{Label: "M", Start: 2.93, End: 2.95}

	got := event.FilterCandidates([]event.Candidate{filler}, words)
	if len(got) != 1 {
		t.Errorf("filler-shaped candidate suppressed, want kept: %+v", got)
	}
}

func TestFilterCandidates_LongArtifactKept(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{{Word: "table", Start: 3.0, End: 3.5}}

	// Non-filler shape preceding the word, but 0.04 s ≥ the 0.03 s floor.
	c := event.Candidate{Label: "T", Start: 2.90, End: 2.94}

	got := event.FilterCandidates([]event.Candidate{c}, words)
	if len(got) != 1 {
		t.Errorf("candidate of sufficient duration suppressed, want kept: %+v", got)
	}
}

func TestFilterCandidates_OutsideOnsetWindowKept(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{{Word: "table", Start: 3.0, End: 3.5}}

	// Ends 0.2 s before the word — beyond the 0.12 s onset window.
	c := event.Candidate{Label: "T", Start: 2.78, End: 2.80}

	got := event.FilterCandidates([]event.Candidate{c}, words)
	if len(got) != 1 {
		t.Errorf("candidate outside onset window suppressed, want kept: %+v", got)
	}
}

func TestFilterCandidates_MalformedWordIgnored(t *testing.T) {
	t.Parallel()

	words := []timeline.Word{
		{Word: "bad", Start: 2.0, End: 1.0}, // end before start
	}
	c := event.Candidate{Label: "A", Start: 1.2, End: 1.4}

	// The malformed word must not be used for overlap tests; the candidate
	// survives.
	got := event.FilterCandidates([]event.Candidate{c}, words)
	if len(got) != 1 {
		t.Errorf("candidate dropped against malformed word, want kept: %+v", got)
	}
}

func TestFilterCandidates_EmptyInputs(t *testing.T) {
	t.Parallel()

	if got := event.FilterCandidates(nil, nil); len(got) != 0 {
		t.Errorf("FilterCandidates(nil, nil) = %v, want empty", got)
	}

	c := []event.Candidate{{Label: "A", Start: 0.1, End: 0.3}}
	if got := event.FilterCandidates(c, nil); len(got) != 1 {
		t.Errorf("no words: candidate should be kept, got %v", got)
	}
}
