// Package vet is the deterministic safety net applied to every generated
// event. The generation model is instructed to self-validate against the
// same rules, but its claims are advisory; these checks are the only gate
// that cannot be bypassed. Pure functions, no I/O.
package vet

import (
	"strconv"
	"strings"
	"unicode"

	"chronle/domain/event"
)

// DefaultMaxWords is the word budget for a clue.
const DefaultMaxWords = 20

// forbiddenTerms are era markers that trivially leak the answer. Matched
// case-insensitively as whole tokens.
var forbiddenTerms = map[string]struct{}{
	"century": {},
	"decade":  {},
	"bc":      {},
	"ad":      {},
	"bce":     {},
	"ce":      {},
}

// vaguePatterns are generic phrasings that say nothing about the event.
var vaguePatterns = []string{
	"a major event occurs",
	"a major event happens",
	"something happens",
	"an important thing",
	"a significant development",
	"history is made",
}

// vagueMakings catches "a X is made/created/built/founded" with no detail
// beyond the bare noun.
var vagueMakings = []string{"is made", "is created", "is built", "is founded"}

// tokenize splits text into tokens, stripping surrounding punctuation but
// keeping interior characters so "1,200" and "don't" stay whole.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

// PassesLeakageCheck rejects text containing any numeral token with value
// >= 10, or any forbidden era term. Small numerals ("two", "9 ships") stay
// legal; anything that could spell out a year or century does not.
func PassesLeakageCheck(text string) bool {
	for _, token := range tokenize(text) {
		lower := strings.ToLower(token)
		if _, banned := forbiddenTerms[lower]; banned {
			return false
		}
		digits := strings.ReplaceAll(lower, ",", "")
		if n, err := strconv.Atoi(digits); err == nil {
			if n >= 10 || n <= -10 {
				return false
			}
		}
	}
	return true
}

// PassesProperNounCheck requires at least one capitalized token past the
// first, since sentence-initial capitalization proves nothing.
func PassesProperNounCheck(text string) bool {
	tokens := tokenize(text)
	for i, token := range tokens {
		if i == 0 {
			continue
		}
		runes := []rune(token)
		if unicode.IsUpper(runes[0]) {
			return true
		}
	}
	return false
}

// PassesWordCountCheck rejects text longer than maxWords tokens. A
// non-positive maxWords falls back to the default budget.
func PassesWordCountCheck(text string, maxWords int) bool {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	return len(strings.Fields(text)) <= maxWords
}

// PassesVaguenessCheck rejects generic filler text that matches any of the
// known vague patterns.
func PassesVaguenessCheck(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))

	for _, p := range vaguePatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}

	// "A thing is made." style: an indefinite article followed by a single
	// noun and a making-verb, with nothing after it.
	for _, making := range vagueMakings {
		idx := strings.Index(lower, making)
		if idx < 0 {
			continue
		}
		subject := strings.Fields(lower[:idx])
		tail := strings.TrimRight(strings.TrimSpace(lower[idx+len(making):]), ".!")
		if len(subject) <= 2 && tail == "" {
			return false
		}
	}

	return true
}

// Result explains a safety-net rejection.
type Result struct {
	Passed bool
	Reason string
}

// Check runs every deterministic validator over a candidate event. All
// four must pass for the event to survive.
func Check(e event.CandidateEvent, maxWords int) Result {
	if !PassesLeakageCheck(e.Text) {
		return Result{Reason: "leaks year or era marker"}
	}
	if !PassesProperNounCheck(e.Text) {
		return Result{Reason: "no proper noun"}
	}
	if !PassesWordCountCheck(e.Text, maxWords) {
		return Result{Reason: "too many words"}
	}
	if !PassesVaguenessCheck(e.Text) {
		return Result{Reason: "too vague"}
	}
	return Result{Passed: true}
}
