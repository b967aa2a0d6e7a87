package metrics

import "strings"

// stopwords lists high-frequency function words excluded from the
// repetition-ratio and lexical-density numerators. Repeating "the" is not a
// sign of limited vocabulary.
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "it": {}, "we": {}, "they": {},
	"me": {}, "him": {}, "her": {}, "us": {}, "them": {},
	"my": {}, "your": {}, "his": {}, "its": {}, "our": {}, "their": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"is": {}, "am": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"do": {}, "does": {}, "did": {}, "have": {}, "has": {}, "had": {},
	"will": {}, "would": {}, "can": {}, "could": {}, "should": {}, "shall": {}, "may": {}, "might": {}, "must": {},
	"and": {}, "or": {}, "but": {}, "if": {}, "so": {}, "because": {}, "as": {}, "than": {}, "then": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "of": {}, "for": {}, "with": {}, "by": {}, "from": {},
	"up": {}, "down": {}, "out": {}, "off": {}, "over": {}, "under": {}, "about": {},
	"not": {}, "no": {}, "yes": {}, "just": {}, "very": {}, "really": {},
	"there": {}, "here": {}, "what": {}, "which": {}, "who": {}, "when": {}, "where": {}, "how": {}, "why": {},
	"all": {}, "some": {}, "any": {}, "more": {}, "most": {}, "other": {},
}

// isStopword reports whether the lowercased, punctuation-trimmed token is a
// function word.
func isStopword(word string) bool {
	_, ok := stopwords[normalizeToken(word)]
	return ok
}

// normalizeToken lowercases and strips surrounding punctuation.
func normalizeToken(word string) string {
	return strings.ToLower(strings.Trim(word, ".,!?;:'\"()- "))
}
