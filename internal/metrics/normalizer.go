package metrics

import (
	"math"

	"github.com/fluentia-ai/cadence/internal/event"
	"github.com/fluentia-ai/cadence/pkg/timeline"
)

const (
	// pauseThreshold is the minimum inter-word gap that counts as a pause.
	pauseThreshold = 0.3

	// longPauseThreshold and veryLongPauseThreshold grade pause severity.
	longPauseThreshold     = 1.0
	veryLongPauseThreshold = 2.0

	// utteranceGap is the inter-word gap that starts a new utterance.
	utteranceGap = 0.5

	// pauseOverlapTol relaxes the pause-vs-disfluency overlap test: a filler
	// occupying a gap means the speaker was vocalising, not silent.
	pauseOverlapTol = 0.05

	// minSpeakingMinutes floors the per-minute denominators so very short
	// clips do not explode the rates.
	minSpeakingMinutes = 0.5

	// minPausesForVariability: the pause-duration standard deviation is only
	// meaningful with more samples than this.
	minPausesForVariability = 5

	// lowConfidenceThreshold marks a word as low-confidence.
	lowConfidenceThreshold = 0.5

	// Filler perceptual weights by duration.
	shortFillerMax    = 0.08
	mediumFillerMax   = 0.3
	shortFillerWeight = 0.2
	midFillerWeight   = 0.6
)

// Normalize computes every metric from the detector outputs. fullWords is
// the complete filler-marked word timeline; contentWords excludes fillers;
// fused is the disfluency stream from the fusion engine. totalDuration is
// the utterance length in seconds.
//
// All inputs are treated as read-only. Empty inputs yield a well-typed
// zero-valued result, never a panic.
func Normalize(
	fullWords, contentWords []timeline.Word,
	segments []timeline.Segment,
	fused []event.TimedEvent,
	totalDuration float64,
) NormalizedMetrics {
	var m NormalizedMetrics
	if totalDuration <= 0 {
		return m
	}

	minutes := totalDuration / 60
	speakingMinutes := math.Max(minutes, minSpeakingMinutes)

	pauses := detectPauses(fullWords, fused)

	var totalPause float64
	var longCount, veryLongCount int
	for _, p := range pauses {
		totalPause += p
		if p > longPauseThreshold {
			longCount++
		}
		if p > veryLongPauseThreshold {
			veryLongCount++
		}
	}

	m.WordsPerMinute = round2(float64(len(contentWords)) * 60 / totalDuration)
	m.FillersPerMinute = round2(fillerWeightSum(fused) / speakingMinutes)
	m.StuttersPerMinute = round2(float64(countKind(fused, event.KindStutter)) / speakingMinutes)
	m.LongPauseRate = round2(float64(longCount) / speakingMinutes)
	m.VeryLongPauseRate = round2(float64(veryLongCount) / speakingMinutes)
	if len(pauses) > minPausesForVariability {
		m.PauseVariability = round3(stddev(pauses))
	}
	m.PauseTimeRatio = round3(clamp01(totalPause / totalDuration))
	m.VocabularyRichness = round3(vocabularyRichness(contentWords))
	m.RepetitionRatio = round3(repetitionRatio(contentWords))
	m.MeanUtteranceLength = round2(meanUtteranceLength(fullWords))
	m.MeanConfidence = round3(meanConfidence(fullWords, segments))
	m.LowConfidenceRatio = round3(lowConfidenceRatio(fullWords))
	m.LexicalDensity = round3(lexicalDensity(fullWords, contentWords))
	m.SpeakingTime = round2(math.Max(totalDuration-totalPause, 0))
	m.PauseAfterFillerRate = 0 // disabled upstream; see package docs

	return m
}

// detectPauses returns the durations of qualifying pauses: inter-word gaps
// over [pauseThreshold] in the full timeline (fillers included — a filler in
// a gap is not silence) that do not overlap any fused disfluency event.
func detectPauses(fullWords []timeline.Word, fused []event.TimedEvent) []float64 {
	var pauses []float64
	for i := 1; i < len(fullWords); i++ {
		gapStart := fullWords[i-1].End
		gapEnd := fullWords[i].Start
		gap := gapEnd - gapStart
		if gap <= pauseThreshold {
			continue
		}
		if gapCoveredByDisfluency(gapStart, gapEnd, fused) {
			continue
		}
		pauses = append(pauses, gap)
	}
	return pauses
}

// gapCoveredByDisfluency reports whether any fused event intrudes into the
// gap, relaxed by [pauseOverlapTol] on each side.
func gapCoveredByDisfluency(gapStart, gapEnd float64, fused []event.TimedEvent) bool {
	for _, e := range fused {
		if e.Start < gapEnd+pauseOverlapTol && e.End > gapStart-pauseOverlapTol {
			return true
		}
	}
	return false
}

// fillerWeightSum sums the perceptual weight of every filler event: fillers
// under 0.08 s barely register (0.2), fillers under 0.3 s are noticeable
// (0.6), longer ones fully count (1.0).
func fillerWeightSum(fused []event.TimedEvent) float64 {
	var sum float64
	for _, e := range fused {
		if e.Kind != event.KindFiller {
			continue
		}
		switch {
		case e.Duration < shortFillerMax:
			sum += shortFillerWeight
		case e.Duration < mediumFillerMax:
			sum += midFillerWeight
		default:
			sum += 1.0
		}
	}
	return sum
}

func countKind(fused []event.TimedEvent, kind event.Kind) int {
	n := 0
	for _, e := range fused {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func vocabularyRichness(contentWords []timeline.Word) float64 {
	if len(contentWords) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(contentWords))
	for _, w := range contentWords {
		unique[normalizeToken(w.Word)] = struct{}{}
	}
	return float64(len(unique)) / float64(len(contentWords))
}

func repetitionRatio(contentWords []timeline.Word) float64 {
	freq := make(map[string]int)
	total := 0
	for _, w := range contentWords {
		tok := normalizeToken(w.Word)
		if tok == "" || isStopword(tok) {
			continue
		}
		freq[tok]++
		total++
	}
	if total == 0 {
		return 0
	}
	top := 0
	for _, n := range freq {
		if n > top {
			top = n
		}
	}
	return float64(top) / float64(total)
}

// meanUtteranceLength walks the full timeline drawing an utterance boundary
// at every gap over [utteranceGap] and averages the word counts between
// boundaries.
func meanUtteranceLength(fullWords []timeline.Word) float64 {
	if len(fullWords) == 0 {
		return 0
	}
	var lengths []int
	cur := 1
	for i := 1; i < len(fullWords); i++ {
		if fullWords[i].Start-fullWords[i-1].End > utteranceGap {
			lengths = append(lengths, cur)
			cur = 1
			continue
		}
		cur++
	}
	lengths = append(lengths, cur)

	sum := 0
	for _, n := range lengths {
		sum += n
	}
	return float64(sum) / float64(len(lengths))
}

// meanConfidence averages word confidence over the full timeline. When the
// transcriber reported no per-word confidence at all, the segment-level
// averages are used instead.
func meanConfidence(fullWords []timeline.Word, segments []timeline.Segment) float64 {
	if len(fullWords) > 0 {
		var sum float64
		anyReported := false
		for _, w := range fullWords {
			sum += w.Confidence
			if w.Confidence > 0 {
				anyReported = true
			}
		}
		if anyReported {
			return sum / float64(len(fullWords))
		}
	}
	if len(segments) == 0 {
		return 0
	}
	var sum float64
	for _, s := range segments {
		sum += s.AvgConfidence
	}
	return sum / float64(len(segments))
}

func lowConfidenceRatio(fullWords []timeline.Word) float64 {
	if len(fullWords) == 0 {
		return 0
	}
	n := 0
	for _, w := range fullWords {
		if w.Confidence < lowConfidenceThreshold {
			n++
		}
	}
	return float64(n) / float64(len(fullWords))
}

// lexicalDensity divides the non-stopword content-word count by the
// full-timeline word count. Fillers stay in the denominator: density
// measures how much of the spoken stream carries content.
func lexicalDensity(fullWords, contentWords []timeline.Word) float64 {
	if len(fullWords) == 0 {
		return 0
	}
	n := 0
	for _, w := range contentWords {
		tok := normalizeToken(w.Word)
		if tok != "" && !isStopword(tok) {
			n++
		}
	}
	return clamp01(float64(n) / float64(len(fullWords)))
}

func stddev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
