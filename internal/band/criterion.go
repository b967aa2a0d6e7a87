// Package band scores an analysed utterance on the four-criterion 1.0–9.0
// band scale and aggregates the criteria into one overall band.
//
// Every criterion runs the same deterministic three-stage procedure from a
// base of 9.0:
//
//  1. Deductions — each criterion owns bracket tables keyed by metric; for a
//     given metric only the deepest qualifying bracket applies (no
//     double-counting within a metric), but deductions for different
//     metrics stack freely.
//  2. Gates — independent ceiling rules; every fired gate contributes a
//     ceiling and the strictest (minimum) one wins.
//  3. Excellence check — a score of 8.0 or above requires every excellence
//     condition simultaneously; anything less clamps to 7.5.
//
// The final per-criterion score is rounded to the nearest half band and
// clamped to [1.0, 9.0].
package band

import "math"

// Criterion identifies one of the four scored criteria.
type Criterion string

const (
	CriterionFluencyCoherence Criterion = "fluency_coherence"
	CriterionLexicalResource  Criterion = "lexical_resource"
	CriterionGrammar          Criterion = "grammar"
	CriterionPronunciation    Criterion = "pronunciation"
)

// Criteria lists the four criteria in canonical order.
var Criteria = []Criterion{
	CriterionFluencyCoherence,
	CriterionLexicalResource,
	CriterionGrammar,
	CriterionPronunciation,
}

const (
	baseScore = 9.0
	minBand   = 1.0
	maxBand   = 9.0

	// excellenceFloor: scores at or above this require every excellence
	// condition; otherwise they clamp to excellenceClamp.
	excellenceFloor = 8.0
	excellenceClamp = 7.5
)

// Deduction records one applied deduction for diagnostics.
type Deduction struct {
	Reason string  `json:"reason"`
	Amount float64 `json:"amount"`
}

// Gate records one fired ceiling rule for diagnostics.
type Gate struct {
	Reason  string  `json:"reason"`
	Ceiling float64 `json:"ceiling"`
}

// CriterionResult is the immutable outcome of scoring one criterion.
type CriterionResult struct {
	Criterion  Criterion          `json:"criterion"`
	Score      float64            `json:"score"`
	Deductions []Deduction        `json:"deductions"`
	Gates      []Gate             `json:"gates"`
	Metrics    map[string]float64 `json:"metrics"`
}

// bracket is one row of a deduction table: value at or past Threshold (in
// the table's direction) deducts Amount.
type bracket struct {
	threshold float64
	amount    float64
	reason    string
}

// deepestAtOrAbove returns the deduction for the deepest bracket whose
// threshold the value reaches. Brackets must be ordered ascending by
// threshold. Returns false when no bracket qualifies.
func deepestAtOrAbove(value float64, brackets []bracket) (Deduction, bool) {
	var hit *bracket
	for i := range brackets {
		if value >= brackets[i].threshold {
			hit = &brackets[i]
		}
	}
	if hit == nil {
		return Deduction{}, false
	}
	return Deduction{Reason: hit.reason, Amount: hit.amount}, true
}

// deepestBelow returns the deduction for the deepest bracket the value falls
// under. Brackets must be ordered descending by threshold.
func deepestBelow(value float64, brackets []bracket) (Deduction, bool) {
	var hit *bracket
	for i := range brackets {
		if value < brackets[i].threshold {
			hit = &brackets[i]
		}
	}
	if hit == nil {
		return Deduction{}, false
	}
	return Deduction{Reason: hit.reason, Amount: hit.amount}, true
}

// finalize runs the shared scoring procedure: sum deductions, apply the
// strictest fired ceiling, enforce the excellence clamp, then round to the
// nearest half band within [1.0, 9.0].
func finalize(c Criterion, deductions []Deduction, gates []Gate, excellent bool, diag map[string]float64) CriterionResult {
	score := baseScore
	for _, d := range deductions {
		score -= d.Amount
	}

	ceiling := math.Inf(1)
	for _, g := range gates {
		if g.Ceiling < ceiling {
			ceiling = g.Ceiling
		}
	}
	score = math.Min(score, ceiling)

	if score >= excellenceFloor && !excellent {
		score = excellenceClamp
	}

	if deductions == nil {
		deductions = []Deduction{}
	}
	if gates == nil {
		gates = []Gate{}
	}
	return CriterionResult{
		Criterion:  c,
		Score:      RoundHalf(score),
		Deductions: deductions,
		Gates:      gates,
		Metrics:    diag,
	}
}

// RoundHalf rounds to the nearest 0.5 and clamps to the band range.
func RoundHalf(score float64) float64 {
	rounded := math.Round(score*2) / 2
	if rounded < minBand {
		return minBand
	}
	if rounded > maxBand {
		return maxBand
	}
	return rounded
}
