// Package classify decides whether a string literal is user-facing text that
// should be translated.
//
// The decision is rule based and explainable: every rejection carries a
// Reason naming the rule that fired, and every accepted literal carries a
// confidence score between 0 and 100.
package classify

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reasons reported for rejected literals. Exclusion rules report their own
// rule name instead.
const (
	ReasonKeywordArg     = "keyword-argument"
	ReasonIgnoreMarker   = "ignore-marker"
	ReasonIgnoredCall    = "ignored-call"
	ReasonBlank          = "blank"
	ReasonTooShort       = "too-short"
	ReasonBelowThreshold = "below-threshold"
)

// Rule is a named exclusion pattern.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// Policy holds the configurable classification rules.
type Policy struct {
	Exclude []Rule
	// IgnoreCalls lists path.Match patterns for callees whose arguments are
	// never user facing, e.g. "log::*" or "println!".
	IgnoreCalls []string
	// IgnoreMarker suppresses a literal when it appears in a comment on the
	// same line or the line above.
	IgnoreMarker string
	// UILabels are field or keyword names that hold display text.
	UILabels []string
	// UICalls are callee patterns whose arguments are display text.
	UICalls []string
	// MinLength is the minimum number of characters, counted in runes.
	MinLength int
	// MinWords is the minimum number of whitespace-separated words.
	MinWords int
	// Threshold is the minimum confidence to accept a literal.
	Threshold int
}

// Context is what the scanner knows about the syntax around a literal.
type Context struct {
	// Calls lists enclosing callees, innermost first.
	Calls []string
	// Label is the field or keyword the literal is assigned to.
	Label   string
	Comment string
	// InTranslationCall is set when the literal is already an argument of a
	// translation call.
	InTranslationCall bool
}

// Result is the outcome of classifying one literal.
type Result struct {
	Translatable bool
	Confidence   int
	Reason       string
}

func (r Result) String() string {
	if r.Translatable {
		return fmt.Sprintf("translatable (%d)", r.Confidence)
	}
	return fmt.Sprintf("ignored: %s", r.Reason)
}

// Classify applies the policy to text. The first rule that fires wins.
func (p Policy) Classify(text string, ctx Context) Result {
	if ctx.InTranslationCall {
		return Result{Reason: ReasonKeywordArg}
	}
	if p.IgnoreMarker != "" && strings.Contains(ctx.Comment, p.IgnoreMarker) {
		return Result{Reason: ReasonIgnoreMarker}
	}
	for _, c := range ctx.Calls {
		if MatchCall(p.IgnoreCalls, c) {
			return Result{Reason: ReasonIgnoredCall}
		}
	}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Result{Reason: ReasonBlank}
	}
	for _, r := range p.Exclude {
		if r.Pattern.MatchString(trimmed) {
			return Result{Reason: r.Name}
		}
	}
	if utf8.RuneCountInString(trimmed) < p.MinLength || len(strings.Fields(trimmed)) < p.MinWords {
		return Result{Reason: ReasonTooShort}
	}
	score := p.Confidence(trimmed, ctx)
	if score < p.Threshold {
		return Result{Confidence: score, Reason: ReasonBelowThreshold}
	}
	return Result{Translatable: true, Confidence: score}
}

// Confidence scores how likely text is to be display text.
func (p Policy) Confidence(text string, ctx Context) int {
	score := 40

	first, _ := utf8.DecodeRuneInString(text)
	if unicode.IsUpper(first) {
		score += 20
	}
	words := len(strings.Fields(text))
	if words >= 2 {
		score += 15
	}
	if words >= 4 {
		score += 10
	}
	if hasCJK(text) {
		score += 40
	}
	last, _ := utf8.DecodeLastRuneInString(text)
	if strings.ContainsRune(".!?…:", last) {
		score += 5
	}
	if ctx.Label != "" && containsFold(p.UILabels, ctx.Label) {
		score += 25
	}
	for _, c := range ctx.Calls {
		if MatchCall(p.UICalls, c) {
			score += 25
			break
		}
	}
	if words == 1 {
		if strings.Contains(text, "_") {
			score -= 20
		}
		if strings.ToLower(text) == text && !hasCJK(text) {
			score -= 10
		}
	}
	return max(0, min(100, score))
}

func hasCJK(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// MatchCall matches a callee against path.Match patterns, both as written
// and by its last path segment.
func MatchCall(patterns []string, callee string) bool {
	if callee == "" {
		return false
	}
	last := callee
	if i := strings.LastIndexAny(callee, ":."); i >= 0 {
		last = callee[i+1:]
	}
	for _, pat := range patterns {
		if ok, _ := path.Match(pat, callee); ok {
			return true
		}
		if ok, _ := path.Match(pat, last); ok {
			return true
		}
	}
	return false
}
