// Package classify implements the query classifier (C5): a pure,
// side-effect-free mapping from a query string to an intent, confidence
// score, and retrieval hints (spec §4.5). The pattern/match shape is
// adapted from ferg-cod3s-conexus's internal/orchestrator/intent package
// in the retrieval pack, which classifies natural-language requests into
// agent routes the same way this package classifies them into retrieval
// strategies.
package classify

import (
	"regexp"
	"strings"

	"github.com/open-rag/reporag/internal/chunk"
)

// Intent is one of the five retrieval strategies spec §4.5 names.
type Intent string

const (
	IntentEnumeration Intent = "enumeration"
	IntentExplanation Intent = "explanation"
	IntentCodeSearch  Intent = "code_search"
	IntentComparison  Intent = "comparison"
	IntentFactual     Intent = "factual"
)

// Hints carries the per-intent retrieval adjustments spec §4.5's table
// describes.
type Hints struct {
	ExpandSections bool
	TopK           int
	RestrictToCode bool

	// OrderBySectionThenNumeric applies to enumeration: order candidates
	// by section, then by any leading numeric prefix within it.
	OrderBySectionThenNumeric bool

	// Operands holds the two comparison subjects extracted from a
	// comparison query ("A vs B", "difference between A and B"), one
	// subquery per operand (spec §4.6 "dual subqueries, one per operand").
	Operands []string
}

// Result is the classifier's output: spec §4.5's (intent, confidence, hints).
type Result struct {
	Intent     Intent
	Confidence float64
	Hints      Hints
}

// pattern matches a normalized query and reports a confidence score
// derived from how specific the match was.
type pattern struct {
	intent Intent
	regex  *regexp.Regexp
	score  float64
}

func newPattern(intent Intent, expr string, score float64) pattern {
	return pattern{intent: intent, regex: regexp.MustCompile(expr), score: score}
}

var backtickIdentifier = regexp.MustCompile("`[^`]+`")

// defaultPatterns returns the patterns backing spec §4.5's trigger-pattern
// table, ordered so more specific expressions are declared (and thus
// scored) ahead of looser ones.
func defaultPatterns() []pattern {
	return []pattern{
		newPattern(IntentComparison, `\bdifference between\b`, 0.95),
		newPattern(IntentComparison, `\b\w+ (?:vs\.?|versus) \w+\b`, 0.9),

		newPattern(IntentEnumeration, `\blist all\b`, 0.95),
		newPattern(IntentEnumeration, `\bhow many\b`, 0.9),
		newPattern(IntentEnumeration, `\bwhat are the( \d+)?\b`, 0.85),

		newPattern(IntentCodeSearch, `\bfind (?:the )?function\b`, 0.95),
		newPattern(IntentCodeSearch, `\bshow (?:me )?(?:the )?code\b`, 0.9),

		newPattern(IntentFactual, `\bwhat is the default\b`, 0.95),
		newPattern(IntentFactual, `\bwhich port\b`, 0.9),

		newPattern(IntentExplanation, `\bhow does\b`, 0.9),
		newPattern(IntentExplanation, `\bexplain\b`, 0.85),
		newPattern(IntentExplanation, `\bwhy\b`, 0.75),
	}
}

// Classifier classifies queries per spec §4.5. Zero value is unusable;
// use New.
type Classifier struct {
	patterns []pattern
}

// New builds a Classifier with the default pattern set.
func New() *Classifier {
	return &Classifier{patterns: defaultPatterns()}
}

// Classify maps query to an intent, confidence, and hints. Classification
// is pure: no I/O, no randomness, same input always yields same output.
func (c *Classifier) Classify(query string) Result {
	normalized := strings.ToLower(strings.TrimSpace(query))

	var best *pattern
	if backtickIdentifier.MatchString(query) {
		best = &pattern{intent: IntentCodeSearch, score: 0.85}
	}
	for i := range c.patterns {
		p := c.patterns[i]
		if !p.regex.MatchString(normalized) {
			continue
		}
		if best == nil || p.score > best.score {
			best = &p
		}
	}

	if best == nil {
		return Result{
			Intent:     IntentExplanation,
			Confidence: 0.0,
			Hints:      hintsFor(IntentExplanation, query),
		}
	}

	return Result{
		Intent:     best.intent,
		Confidence: best.score,
		Hints:      hintsFor(best.intent, query),
	}
}

func hintsFor(intent Intent, query string) Hints {
	switch intent {
	case IntentEnumeration:
		return Hints{ExpandSections: true, TopK: 30, OrderBySectionThenNumeric: true}
	case IntentExplanation:
		return Hints{ExpandSections: true, TopK: 20}
	case IntentCodeSearch:
		return Hints{RestrictToCode: true, TopK: 20}
	case IntentComparison:
		operands := extractOperands(query)
		return Hints{ExpandSections: true, TopK: 20, Operands: operands}
	case IntentFactual:
		return Hints{TopK: 5}
	default:
		return Hints{ExpandSections: true, TopK: 20}
	}
}

var (
	vsPattern       = regexp.MustCompile(`(?i)^(.*?)\s+(?:vs\.?|versus)\s+(.*)$`)
	differenceRegex = regexp.MustCompile(`(?i)difference between\s+(.*?)\s+and\s+(.*)$`)
)

// extractOperands pulls the two comparison subjects out of a comparison
// query, e.g. "difference between chromem and qdrant" -> ["chromem",
// "qdrant"]. Returns nil if no two-operand shape is recognized.
func extractOperands(query string) []string {
	if m := differenceRegex.FindStringSubmatch(query); len(m) == 3 {
		return []string{strings.TrimSpace(m[1]), strings.TrimSpace(strings.TrimSuffix(m[2], "?"))}
	}
	if m := vsPattern.FindStringSubmatch(query); len(m) == 3 {
		return []string{strings.TrimSpace(m[1]), strings.TrimSpace(strings.TrimSuffix(m[2], "?"))}
	}
	return nil
}

// ContentTypeFilter returns the content_type filter code_search intent
// requires, and whether one applies.
func (h Hints) ContentTypeFilter() (chunk.ContentType, bool) {
	if h.RestrictToCode {
		return chunk.ContentCode, true
	}
	return "", false
}
