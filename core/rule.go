package core

import (
	"regexp"
	"strings"
)

// Outcome is the result of applying a rule to a single match.
type Outcome int

const (
	// NoMatch leaves the text alone without counting anything.
	NoMatch Outcome = iota
	// Rewritten replaces the match with Result.Text.
	Rewritten
	// Ambiguous means the match looked broken but could not be repaired
	// safely; the original text is kept.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Rewritten:
		return "rewritten"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no-match"
	}
}

// Result is what a rule's Rebuild returns for one match.
type Result struct {
	Outcome Outcome
	Text    string
}

// Replace builds a Rewritten result.
func Replace(text string) Result {
	return Result{Outcome: Rewritten, Text: text}
}

// Skip builds a NoMatch result.
func Skip() Result {
	return Result{Outcome: NoMatch}
}

// Unsure builds an Ambiguous result.
func Unsure() Result {
	return Result{Outcome: Ambiguous}
}

// Rule pairs a detection pattern with a reconstruction function.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
	// Accept, when set, is consulted before Rebuild with the full input and
	// the submatch index slice of the match. Returning false leaves the match
	// untouched. Used for look-behind style checks RE2 cannot express.
	Accept func(text string, loc []int) bool
	// Rebuild receives the submatches (index 0 is the whole match; unmatched
	// optional groups are empty strings).
	Rebuild func(groups []string) Result
}

// RuleStats counts outcomes of one rule over one text.
type RuleStats struct {
	Rewritten int
	Ambiguous int
}

// Apply runs the rule over text and returns the rewritten text.
func (r Rule) Apply(text string) (string, RuleStats) {
	var stats RuleStats
	matches := r.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, stats
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, loc := range matches {
		if r.Accept != nil && !r.Accept(text, loc) {
			continue
		}
		res := r.Rebuild(submatches(text, loc))
		switch res.Outcome {
		case Rewritten:
			b.WriteString(text[last:loc[0]])
			b.WriteString(res.Text)
			last = loc[1]
			stats.Rewritten++
		case Ambiguous:
			stats.Ambiguous++
		}
	}
	if stats.Rewritten == 0 {
		return text, stats
	}
	b.WriteString(text[last:])
	return b.String(), stats
}

// RuleSet is an ordered list of rules. Each rule sees the text produced by
// the rules before it, so specific patterns must come before general ones.
type RuleSet []Rule

// Apply runs every rule in order and reports per-rule stats keyed by name.
func (rs RuleSet) Apply(text string) (string, map[string]RuleStats) {
	stats := make(map[string]RuleStats, len(rs))
	for _, rule := range rs {
		var s RuleStats
		text, s = rule.Apply(text)
		stats[rule.Name] = s
	}
	return text, stats
}

// Totals sums stats over all rules.
func Totals(stats map[string]RuleStats) RuleStats {
	var t RuleStats
	for _, s := range stats {
		t.Rewritten += s.Rewritten
		t.Ambiguous += s.Ambiguous
	}
	return t
}

func submatches(text string, loc []int) []string {
	groups := make([]string, len(loc)/2)
	for i := range groups {
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		groups[i] = text[start:end]
	}
	return groups
}
