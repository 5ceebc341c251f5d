// Package patternlib holds compiled regular expression sets grouped by
// purpose (FCA risk-warning detectors, GDPR lawful-basis detectors,
// Scottish-law terminology, and so on). Each set is compiled once on
// first use via sync.Once and cached for the process lifetime.
//
// Patterns are matched with the standard library's regexp package
// deliberately: RE2 (the engine behind regexp) guarantees linear-time
// matching with no catastrophic backtracking, which is exactly the
// "engine with linear-time guarantees" the gate budget requires -
// reaching for a backtracking engine here would reintroduce the failure
// mode this package exists to avoid. The match-time budget check in
// Compile is a defense against accidentally expensive patterns (e.g. a
// huge repeated alternation) rather than against backtracking blowup.
package patternlib

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// DefaultMatchBudget is the maximum time a sample match may take during
// Compile's self-check before the pattern is rejected at load time.
const DefaultMatchBudget = 50 * time.Millisecond

// Pattern pairs a compiled regular expression with a name used in
// finding details and audit events.
type Pattern struct {
	Name  string
	Regex *regexp.Regexp
}

// Set is a named, ordered group of compiled patterns sharing a purpose,
// e.g. "fca_risk_warning" or "gdpr_lawful_basis".
type Set struct {
	Name     string
	Patterns []Pattern
}

// FindAll runs every pattern in the set against text and returns each
// match's byte range tagged with the pattern name that produced it,
// ordered by (start, pattern declaration order).
func (s Set) FindAll(text string) []Match {
	var out []Match
	for _, p := range s.Patterns {
		for _, loc := range p.Regex.FindAllStringIndex(text, -1) {
			out = append(out, Match{PatternName: p.Name, Start: loc[0], End: loc[1]})
		}
	}
	return out
}

// Match is a single located occurrence of a named pattern.
type Match struct {
	PatternName string
	Start       int
	End         int
}

// Source declares a pattern before compilation: its name, its regular
// expression, and (optionally) a benign sample string used to bound its
// match time at load.
type Source struct {
	Name   string
	Regex  string
	Sample string
}

// Compile compiles every source in order, case-insensitively unless the
// expression already anchors case itself, and rejects (returns an error
// for) any pattern that fails to compile or whose sample match exceeds
// budget. A pattern that cannot be bounded is never silently dropped -
// Compile fails the whole Set so the caller notices at startup.
func Compile(name string, sources []Source, budget time.Duration) (Set, error) {
	if budget <= 0 {
		budget = DefaultMatchBudget
	}

	set := Set{Name: name, Patterns: make([]Pattern, 0, len(sources))}
	for _, src := range sources {
		expr := src.Regex
		if !hasExplicitCaseAnchor(expr) {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return Set{}, fmt.Errorf("patternlib: compile %q in set %q: %w", src.Name, name, err)
		}
		if src.Sample != "" {
			if err := checkMatchBudget(re, src.Sample, budget); err != nil {
				return Set{}, fmt.Errorf("patternlib: %q in set %q: %w", src.Name, name, err)
			}
		}
		set.Patterns = append(set.Patterns, Pattern{Name: src.Name, Regex: re})
	}
	return set, nil
}

// hasExplicitCaseAnchor reports whether expr already carries an inline
// flag group, in which case Compile leaves its case sensitivity alone.
func hasExplicitCaseAnchor(expr string) bool {
	return len(expr) > 1 && expr[0] == '(' && expr[1] == '?'
}

// checkMatchBudget runs re against sample under a deadline, returning an
// error if the match does not complete in time. Go's regexp package runs
// to completion in linear time regardless, so in practice this only
// catches pathologically large inputs/patterns rather than backtracking.
func checkMatchBudget(re *regexp.Regexp, sample string, budget time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), budget)
	defer cancel()

	done := make(chan struct{})
	go func() {
		re.MatchString(sample)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("match-time budget of %s exceeded on sample", budget)
	}
}
