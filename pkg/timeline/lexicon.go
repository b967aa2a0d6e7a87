package timeline

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// fillerSimilarityThreshold is the minimum Jaro-Winkler score a phonetic
// candidate must reach before a token is accepted as a filler variant.
const fillerSimilarityThreshold = 0.85

// DefaultFillerLexicon lists the hesitation words recognised by the lexical
// filler detector. The list is intentionally short: transcription models emit
// a small, stable set of filler spellings.
var DefaultFillerLexicon = []string{
	"um", "uh", "uhm", "er", "erm", "ah", "eh", "mm", "hmm", "mhm",
}

// FillerLexicon matches transcribed words against a set of known hesitation
// words. Matching is two-stage: exact (case-insensitive) lookup first, then
// Double Metaphone overlap ranked by Jaro-Winkler similarity, so variant
// spellings of the same hesitation sound ("umm", "uhhh", "ehm") are caught
// without enumerating them all, while real short words ("me", "ham") that
// merely share a phonetic code are rejected by the similarity threshold.
//
// A FillerLexicon is read-only after construction and safe for concurrent use.
type FillerLexicon struct {
	words []string
	exact map[string]struct{}
	codes map[string][]string // metaphone code → lexicon words producing it
}

// NewFillerLexicon builds a lexicon from the given words. Pass
// [DefaultFillerLexicon], optionally extended from configuration.
func NewFillerLexicon(words []string) *FillerLexicon {
	l := &FillerLexicon{
		exact: make(map[string]struct{}, len(words)),
		codes: make(map[string][]string, len(words)*2),
	}
	for _, w := range words {
		lw := strings.ToLower(strings.TrimSpace(w))
		if lw == "" {
			continue
		}
		l.words = append(l.words, lw)
		l.exact[lw] = struct{}{}
		p, s := matchr.DoubleMetaphone(lw)
		if p != "" {
			l.codes[p] = append(l.codes[p], lw)
		}
		if s != "" && s != p {
			l.codes[s] = append(l.codes[s], lw)
		}
	}
	return l
}

// Contains reports whether word is a hesitation token. Surrounding
// punctuation is stripped before matching; matching is case-insensitive.
func (l *FillerLexicon) Contains(word string) bool {
	cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"()- "))
	if cleaned == "" {
		return false
	}
	if _, ok := l.exact[cleaned]; ok {
		return true
	}

	// Phonetic stage: a metaphone code overlap nominates candidates, the
	// Jaro-Winkler threshold decides. Single letters and long tokens are
	// never filler variants.
	if len(cleaned) < 2 || len(cleaned) > 5 {
		return false
	}
	p, s := matchr.DoubleMetaphone(cleaned)
	for _, code := range []string{p, s} {
		if code == "" {
			continue
		}
		for _, candidate := range l.codes[code] {
			if matchr.JaroWinkler(cleaned, candidate, false) >= fillerSimilarityThreshold {
				return true
			}
		}
	}
	return false
}

// MarkFillers sets IsFiller on every word the lexicon recognises and returns
// the same slice. This is the single is_filler mutation of the word timeline;
// it must run exactly once, before fusion.
func MarkFillers(words []Word, lexicon *FillerLexicon) []Word {
	for i := range words {
		words[i].IsFiller = lexicon.Contains(words[i].Word)
	}
	return words
}

// ContentWords returns the words not marked as fillers. The returned slice
// shares no backing storage with words.
func ContentWords(words []Word) []Word {
	content := make([]Word, 0, len(words))
	for _, w := range words {
		if !w.IsFiller {
			content = append(content, w)
		}
	}
	return content
}

// FillerWords returns the words marked as fillers.
func FillerWords(words []Word) []Word {
	fillers := make([]Word, 0, 4)
	for _, w := range words {
		if w.IsFiller {
			fillers = append(fillers, w)
		}
	}
	return fillers
}
