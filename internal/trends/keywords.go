package trends

import (
	"regexp"
	"strings"
)

// stopWords are filtered out of listing titles before counting. The list is
// deliberately small; marketplace titles are keyword-stuffed already and
// aggressive filtering loses product terms.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "up": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"before": {}, "after": {}, "above": {}, "below": {}, "between": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {},
	"being": {}, "have": {}, "has": {}, "had": {}, "do": {}, "does": {},
	"did": {}, "will": {}, "would": {}, "could": {}, "should": {},
}

var wordRegex = regexp.MustCompile(`\b[a-zA-Z]{2,}\b`)

// ExtractKeywords pulls lowercase keywords out of free text. Each keyword
// appears at most once per call regardless of repetition in the input.
func ExtractKeywords(text string) []string {
	words := wordRegex.FindAllString(strings.ToLower(text), -1)

	seen := make(map[string]struct{}, len(words))
	var keywords []string
	for _, word := range words {
		if _, stop := stopWords[word]; stop {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		keywords = append(keywords, word)
	}
	return keywords
}
