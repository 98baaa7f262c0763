package session

import (
	"sort"
	"strings"
)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "be": {}, "been": {}, "being": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "can": {}, "learn": {}, "study": {},
	"practice": {}, "master": {}, "understand": {}, "working": {}, "focus": {},
	"topic": {}, "subject": {},
}

// NormalizeKeyword lowercases and trims a focus keyword.
func NormalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// FocusWords derives the matching tokens for a keyword: meaningful words
// longer than two characters plus the whole keyword, without duplicates.
func FocusWords(keyword string) []string {
	keyword = NormalizeKeyword(keyword)
	if keyword == "" {
		return nil
	}

	seen := map[string]struct{}{keyword: {}}
	for _, word := range strings.Fields(keyword) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		seen[word] = struct{}{}
	}

	words := make([]string, 0, len(seen))
	for word := range seen {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}
