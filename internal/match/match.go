// Package match tests message text against word and phrase patterns. Text is
// normalized before matching, tokens are boundary-matched, and a token naming
// a vocabulary class (affirmation, negation, intent) matches any phrasing in
// that class instead of the literal word.
package match

import (
	"regexp"
	"strings"
	"sync"
)

// Pattern is one or more tokens. A single token matches if it appears as a
// whole word or phrase anywhere in the text; multiple tokens must all match
// independently (logical AND).
type Pattern []string

// P is shorthand for building a pattern in listener definitions.
func P(tokens ...string) Pattern {
	return Pattern(tokens)
}

// Vocabulary classes shared across listener patterns, so "sure thing" and
// "yeah" trigger the same way a literal "yes" would.
var vocab = map[string]string{
	"affirmation": `(?:yes|yeah|yep|yup|ya|sure|ok|okay|alright|aye|indeed|affirmative|of course|sounds good)`,
	"negation":    `(?:no|nope|nah|naw|never|negative|not really|no way|i dont think so)`,
	"intent":      `(?:i (?:want|wanna|need|would like|wish|am going|am gonna)|give me|gimme|can i (?:get|have)|id like)`,
}

var (
	punct  = regexp.MustCompile(`[^a-z0-9\s]`)
	spaces = regexp.MustCompile(`\s+`)

	cacheMu sync.Mutex
	cache   = map[string]*regexp.Regexp{}
)

// Normalize lowercases, strips punctuation, and collapses whitespace runs to
// single spaces.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = punct.ReplaceAllString(s, "")
	s = spaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

func tokenRegexp(token string) *regexp.Regexp {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if re, ok := cache[token]; ok {
		return re
	}

	body, class := vocab[Normalize(token)]
	if !class {
		body = regexp.QuoteMeta(Normalize(token))
	}
	re := regexp.MustCompile(`(?:^|\s)` + body + `(?:\s|$)`)
	cache[token] = re
	return re
}

// Match reports whether every token of the pattern boundary-matches the
// normalized content.
func Match(content string, pattern Pattern) bool {
	if len(pattern) == 0 {
		return false
	}
	normalized := Normalize(content)
	for _, token := range pattern {
		if !tokenRegexp(token).MatchString(normalized) {
			return false
		}
	}
	return true
}
