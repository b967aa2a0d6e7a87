package fluency

import (
	"math"
	"sort"

	"github.com/fluentia-ai/cadence/internal/metrics"
)

// Severity grades how badly a category drags the score down.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Readiness is the overall verdict of the fluency subscorer.
type Readiness string

const (
	ReadinessReady      Readiness = "ready"
	ReadinessBorderline Readiness = "borderline"
	ReadinessNotReady   Readiness = "not_ready"

	// Terminal states produced before scoring runs at all.
	ReadinessInsufficientSample Readiness = "insufficient_sample"
	ReadinessNoSpeechDetected   Readiness = "no_speech_detected"
)

// Issue describes one subscore that fell below its block threshold.
type Issue struct {
	Category    string   `json:"category"`
	Severity    Severity `json:"severity"`
	Subscore    float64  `json:"subscore"`
	ScoreImpact int      `json:"score_impact"`
}

// maxPoints is each category's share of the 100-point scale — the weights
// times 100. Used to translate a weak subscore into lost points.
var maxPoints = map[string]int{
	CategoryPause:      30,
	CategoryFiller:     25,
	CategoryStability:  20,
	CategorySpeechRate: 15,
	CategoryLexical:    10,
}

// Issue thresholds: a subscore below blockThreshold produces an issue; the
// severity bands grade it.
const (
	blockThreshold      = 0.70
	highSeverityBelow   = 0.40
	mediumSeverityBelow = 0.60
)

// DetectIssues produces one issue per subscore below the block threshold,
// sorted descending by score impact. The returned slice is non-nil.
func DetectIssues(s Subscores) []Issue {
	issues := []Issue{}
	for category, sub := range s.AsMap() {
		if sub >= blockThreshold {
			continue
		}
		issues = append(issues, Issue{
			Category:    category,
			Severity:    severityFor(sub),
			Subscore:    sub,
			ScoreImpact: int(math.Round((1 - sub) * float64(maxPoints[category]))),
		})
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].ScoreImpact != issues[j].ScoreImpact {
			return issues[i].ScoreImpact > issues[j].ScoreImpact
		}
		return issues[i].Category < issues[j].Category
	})
	return issues
}

func severityFor(subscore float64) Severity {
	switch {
	case subscore < highSeverityBelow:
		return SeverityHigh
	case subscore < mediumSeverityBelow:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// DecideReadiness applies the readiness state machine:
//
//	≥ 2 high-severity issues          → not_ready
//	exactly 1 high                    → borderline
//	≥ 2 medium (no high)              → borderline
//	otherwise ready iff score ≥ 80, else borderline
//
// No other transitions are reachable.
func DecideReadiness(score int, issues []Issue) Readiness {
	var high, medium int
	for _, is := range issues {
		switch is.Severity {
		case SeverityHigh:
			high++
		case SeverityMedium:
			medium++
		}
	}

	switch {
	case high >= 2:
		return ReadinessNotReady
	case high == 1:
		return ReadinessBorderline
	case medium >= 2:
		return ReadinessBorderline
	case score >= 80:
		return ReadinessReady
	default:
		return ReadinessBorderline
	}
}

// actionAdvice maps each category to a concrete practice drill. Keyed by
// category so the plan follows the issue ordering.
var actionAdvice = map[string]string{
	CategoryPause:      "Practice bridging thoughts with short connective phrases instead of long silences.",
	CategoryFiller:     "Record a one-minute answer and replace every filler with a silent beat; repeat until fillers drop below three per minute.",
	CategoryStability:  "Rehearse with a metronome pace: keep pauses short and evenly spaced rather than alternating rushes and stalls.",
	CategorySpeechRate: "Read a passage aloud at a measured pace, targeting roughly two to three words per second.",
	CategoryLexical:    "Paraphrase your last answer using different key nouns and verbs to widen active vocabulary.",
}

// BuildActionPlan returns one drill per detected issue, in issue order.
// The plan is empty (non-nil) when there are no issues.
func BuildActionPlan(issues []Issue) []string {
	plan := []string{}
	for _, is := range issues {
		if advice, ok := actionAdvice[is.Category]; ok {
			plan = append(plan, advice)
		}
	}
	return plan
}

// Result is the complete fluency subscorer output.
type Result struct {
	// Score is the 0–100 fluency score. Nil for terminal results
	// (insufficient sample, no speech).
	Score *int `json:"score"`

	Readiness  Readiness `json:"readiness"`
	Subscores  Subscores `json:"subscores"`
	Issues     []Issue   `json:"issues"`
	ActionPlan []string  `json:"action_plan"`
}

// Evaluate runs the full subscorer pipeline on normalized metrics.
func Evaluate(m metrics.NormalizedMetrics, ctx ContextConfig) Result {
	subs := ComputeSubscores(m, ctx)
	score := Score(subs, m)
	issues := DetectIssues(subs)
	return Result{
		Score:      &score,
		Readiness:  DecideReadiness(score, issues),
		Subscores:  subs,
		Issues:     issues,
		ActionPlan: BuildActionPlan(issues),
	}
}
