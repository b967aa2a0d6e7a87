package analysis_test

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/fluentia-ai/cadence/internal/analysis"
	"github.com/fluentia-ai/cadence/internal/calibration"
	"github.com/fluentia-ai/cadence/internal/event"
	"github.com/fluentia-ai/cadence/internal/fluency"
	"github.com/fluentia-ai/cadence/pkg/timeline"
)

// sampleInput builds a clean 8-second utterance: twenty words at a steady
// 150 wpm, one transcribed "um", and one acoustic filler candidate in a gap.
func sampleInput() analysis.Input {
	tokens := []string{
		"yesterday", "i", "visited", "the", "harbour", "with", "my", "brother",
		"and", "we", "watched", "um", "the", "fishing", "boats", "return",
		"before", "sunset", "over", "the", "water",
	}
	words := make([]timeline.Word, len(tokens))
	for i, tok := range tokens {
		start := float64(i) * 0.35
		words[i] = timeline.Word{
			Word:       tok,
			Start:      start,
			End:        start + 0.25,
			Confidence: 0.9,
		}
	}
	return analysis.Input{
		Words: words,
		Segments: []timeline.Segment{
			{Text: "yesterday i visited the harbour", Start: 0, End: 3.5, AvgConfidence: 0.9},
			{Text: "we watched the fishing boats", Start: 3.5, End: 8.0, AvgConfidence: 0.9},
		},
		// A short filler sound in the gap after the last word.
		Candidates: []event.Candidate{
			{Label: "UH", Start: 7.40, End: 7.52},
		},
		Spans: timeline.SpanCounts{
			AdvancedVocabulary: 2,
			ComplexAttempted:   3,
			ComplexAccurate:    3,
			TopicRelevant:      true,
		},
		TotalDuration: 8.0,
		Context:       fluency.ContextConversational,
	}
}

func TestAnalyze_NoSpeechDetected(t *testing.T) {
	t.Parallel()

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), analysis.Input{TotalDuration: 10})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fluency.Readiness != fluency.ReadinessNoSpeechDetected {
		t.Errorf("readiness = %q, want no_speech_detected", res.Fluency.Readiness)
	}
	if res.Fluency.Score != nil {
		t.Errorf("score = %v, want nil", *res.Fluency.Score)
	}
	if res.Band != nil {
		t.Errorf("band = %+v, want nil", res.Band)
	}
}

func TestAnalyze_InsufficientSample(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.TotalDuration = 3.0

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fluency.Readiness != fluency.ReadinessInsufficientSample {
		t.Errorf("readiness = %q, want insufficient_sample", res.Fluency.Readiness)
	}
	if res.Fluency.Score != nil || res.Band != nil || res.Criteria != nil {
		t.Error("insufficient sample must leave every score nil")
	}
}

func TestAnalyze_TooFewWords(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Words = in.Words[:2]

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fluency.Readiness != fluency.ReadinessInsufficientSample {
		t.Errorf("readiness = %q, want insufficient_sample", res.Fluency.Readiness)
	}
}

func TestAnalyze_FullPipeline(t *testing.T) {
	t.Parallel()

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), sampleInput())
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if res.Fluency.Score == nil {
		t.Fatal("fluency score is nil")
	}
	if *res.Fluency.Score < 0 || *res.Fluency.Score > 100 {
		t.Errorf("fluency score = %d, want within [0, 100]", *res.Fluency.Score)
	}
	if res.Band == nil {
		t.Fatal("band result is nil")
	}
	if b := res.Band.OverallBand; b < 1 || b > 9 || math.Mod(b*2, 1) != 0 {
		t.Errorf("overall band = %v, want a half band in [1, 9]", b)
	}
	if len(res.Criteria) != 4 {
		t.Fatalf("got %d criteria, want 4", len(res.Criteria))
	}

	// Twenty content words over 8 s: the transcribed "um" is excluded.
	if got := res.Metrics.WordsPerMinute; got != 150 {
		t.Errorf("words per minute = %v, want 150", got)
	}

	// Both the transcribed "um" and the acoustic candidate survive fusion.
	var lexical, acoustic int
	for _, ev := range res.Events {
		switch ev.Source {
		case event.SourceLexical:
			lexical++
		case event.SourceAcoustic:
			acoustic++
		}
	}
	if lexical != 1 || acoustic != 1 {
		t.Errorf("fused events = %d lexical / %d acoustic, want 1/1 (%+v)",
			lexical, acoustic, res.Events)
	}
}

func TestAnalyze_SuppressesCandidatesUnderWords(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	// Candidate fully inside the first word: the transcription already
	// captured this sound.
	in.Candidates = []event.Candidate{{Label: "UH", Start: 0.05, End: 0.15}}

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	for _, ev := range res.Events {
		if ev.Source == event.SourceAcoustic {
			t.Errorf("acoustic event %+v should have been suppressed", ev)
		}
	}
}

func TestAnalyze_DerivesCandidatesFromTokens(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Candidates = nil
	// Frames at 0.02 s: a run of "U" frames in the trailing gap merges into
	// one filler candidate.
	in.Tokens = []timeline.AcousticToken{
		{Label: "U", StartFrame: 370}, // 7.40 s
		{Label: "U", StartFrame: 371},
		{Label: "U", StartFrame: 372},
		{Label: "U", StartFrame: 373},
		{Label: "U", StartFrame: 374},
	}

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	var acoustic int
	for _, ev := range res.Events {
		if ev.Source == event.SourceAcoustic && ev.Kind == event.KindFiller {
			acoustic++
		}
	}
	if acoustic != 1 {
		t.Errorf("acoustic filler events = %d, want 1 (%+v)", acoustic, res.Events)
	}
}

func TestAnalyze_ExtraFillerLexicon(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Words[4].Word = "nja" // not in the built-in lexicon

	base := analysis.New(calibration.NewMemoryStore())
	extended := analysis.New(calibration.NewMemoryStore(),
		analysis.WithExtraFillers([]string{"nja"}))

	baseRes, err := base.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze (base): %v", err)
	}
	extRes, err := extended.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze (extended): %v", err)
	}

	count := func(res *analysis.Result) int {
		n := 0
		for _, ev := range res.Events {
			if ev.Source == event.SourceLexical {
				n++
			}
		}
		return n
	}
	if count(extRes) != count(baseRes)+1 {
		t.Errorf("lexical fillers = %d with extended lexicon, want %d",
			count(extRes), count(baseRes)+1)
	}
}

func TestAnalyze_UnknownContextRecovers(t *testing.T) {
	t.Parallel()

	in := sampleInput()
	in.Context = "campfire_story"

	a := analysis.New(calibration.NewMemoryStore())
	res, err := a.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Fluency.Score == nil {
		t.Error("unknown context must recover to the default, not abort")
	}
}

func TestAnalyze_Deterministic(t *testing.T) {
	t.Parallel()

	// Fresh stores per run so calibration history cannot diverge.
	run := func() *analysis.Result {
		a := analysis.New(calibration.NewMemoryStore())
		res, err := a.Analyze(context.Background(), sampleInput())
		if err != nil {
			t.Fatalf("Analyze: %v", err)
		}
		return res
	}

	first, second := run(), run()
	if !reflect.DeepEqual(first.Metrics, second.Metrics) {
		t.Errorf("metrics differ between runs:\n%+v\n%+v", first.Metrics, second.Metrics)
	}
	if !reflect.DeepEqual(first.Band, second.Band) {
		t.Errorf("bands differ between runs:\n%+v\n%+v", first.Band, second.Band)
	}
	if !reflect.DeepEqual(first.Events, second.Events) {
		t.Errorf("fused events differ between runs:\n%+v\n%+v", first.Events, second.Events)
	}
}

func TestAnalyze_RecordsBandInHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := calibration.NewMemoryStore()
	a := analysis.New(store)

	if _, err := a.Analyze(ctx, sampleInput()); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	n, err := store.Len(ctx)
	if err != nil || n != 1 {
		t.Errorf("history length = %d, %v; want 1", n, err)
	}
}

func TestGather_CollectsAllInputs(t *testing.T) {
	t.Parallel()

	want := sampleInput()
	in, err := analysis.Gather(context.Background(), analysis.Suppliers{
		Words: func(context.Context) ([]timeline.Word, error) {
			return want.Words, nil
		},
		Segments: func(context.Context) ([]timeline.Segment, error) {
			return want.Segments, nil
		},
		Tokens: func(context.Context) ([]timeline.AcousticToken, error) {
			return want.Tokens, nil
		},
		Spans: func(context.Context) (timeline.SpanCounts, error) {
			return want.Spans, nil
		},
	})
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(in.Words) != len(want.Words) || len(in.Segments) != len(want.Segments) {
		t.Errorf("gathered input incomplete: %d words, %d segments", len(in.Words), len(in.Segments))
	}
	if !reflect.DeepEqual(in.Spans, want.Spans) {
		t.Errorf("spans = %+v, want %+v", in.Spans, want.Spans)
	}
}

func TestGather_PropagatesSupplierError(t *testing.T) {
	t.Parallel()

	boom := fmt.Errorf("transcriber unavailable")
	_, err := analysis.Gather(context.Background(), analysis.Suppliers{
		Words: func(context.Context) ([]timeline.Word, error) {
			return nil, boom
		},
		Spans: func(context.Context) (timeline.SpanCounts, error) {
			return timeline.SpanCounts{}, nil
		},
	})
	if err == nil {
		t.Fatal("expected supplier error, got nil")
	}
}

func TestGather_NilSuppliers(t *testing.T) {
	t.Parallel()

	in, err := analysis.Gather(context.Background(), analysis.Suppliers{})
	if err != nil {
		t.Fatalf("Gather with no suppliers: %v", err)
	}
	if len(in.Words) != 0 {
		t.Errorf("expected zero-valued input, got %+v", in)
	}
}
