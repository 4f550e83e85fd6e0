// Package prompt scores the quality of prompts submitted to the assistant.
//
// Scoring is a fixed, ordered table of penalty rules applied to a starting
// score of 100. Matching is exact substring with no case folding, so Japanese
// and English vocabularies are listed side by side.
package prompt

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxScore is the score of a prompt that triggers no penalty rule.
	MaxScore = 100
	// DefaultThreshold is the minimum passing score used when none is configured.
	DefaultThreshold = 60

	minRunes = 15
	maxRunes = 500
)

// Input is everything a rule may look at.
type Input struct {
	Text              string
	HasProjectContext bool
}

// Rule is one row of the scoring table.
//
// Match returns how many times the rule fired. A cumulative rule deducts
// Penalty for every hit, a non-cumulative rule deducts it once. A blocking
// rule ends evaluation with a score of exactly 0 when it fires.
type Rule struct {
	Name       string
	Penalty    int
	Cumulative bool
	Block      bool
	Match      func(Input) int
}

// Hit records a rule that fired during Analyze.
type Hit struct {
	Rule      string `json:"rule"`
	Count     int    `json:"count"`
	Deduction int    `json:"deduction"`
}

// Result is the outcome of scoring one prompt.
type Result struct {
	Score   int   `json:"score"`
	Slash   bool  `json:"slash_command,omitempty"`
	Blocked bool  `json:"blocked,omitempty"`
	Hits    []Hit `json:"hits,omitempty"`
}

// Passes reports whether the score reaches threshold. A blocked prompt
// never passes, whatever the threshold.
func (r Result) Passes(threshold int) bool {
	return !r.Blocked && r.Score >= threshold
}

// Evaluator applies a rule table. It holds no mutable state and is safe for
// concurrent use.
type Evaluator struct {
	rules []Rule
}

// NewEvaluator builds an evaluator over the default rule table.
func NewEvaluator() *Evaluator {
	return &Evaluator{rules: DefaultRules()}
}

// NewEvaluatorWithRules builds an evaluator over a caller-supplied table.
func NewEvaluatorWithRules(rules []Rule) *Evaluator {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Evaluator{rules: cp}
}

// NewEvaluatorWithout builds an evaluator over the default table minus the
// named rules. The hard block rule cannot be disabled.
func NewEvaluatorWithout(disabled []string) (*Evaluator, error) {
	if len(disabled) == 0 {
		return NewEvaluator(), nil
	}
	skip := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		skip[name] = true
	}
	if skip[RuleHardBlock] {
		return nil, fmt.Errorf("prompt rule %q cannot be disabled", RuleHardBlock)
	}

	defaults := DefaultRules()
	kept := make([]Rule, 0, len(defaults))
	for _, r := range defaults {
		if skip[r.Name] {
			delete(skip, r.Name)
			continue
		}
		kept = append(kept, r)
	}
	if len(skip) > 0 {
		unknown := slices.Sorted(maps.Keys(skip))
		return nil, fmt.Errorf("unknown prompt rule(s): %s", strings.Join(unknown, ", "))
	}
	return NewEvaluatorWithRules(kept), nil
}

// Rules returns a copy of the rule table in evaluation order.
func (e *Evaluator) Rules() []Rule {
	cp := make([]Rule, len(e.rules))
	copy(cp, e.rules)
	return cp
}

// Analyze scores text and reports which rules fired.
//
// Slash commands bypass scoring. Rules run in table order; the first blocking
// rule that fires discards everything accumulated so far and returns 0.
func (e *Evaluator) Analyze(text string, hasProjectContext bool) Result {
	if strings.HasPrefix(strings.TrimLeftFunc(text, unicode.IsSpace), "/") {
		return Result{Score: MaxScore, Slash: true}
	}

	in := Input{Text: text, HasProjectContext: hasProjectContext}
	res := Result{Score: MaxScore}
	for _, rule := range e.rules {
		n := rule.Match(in)
		if n <= 0 {
			continue
		}
		if rule.Block {
			return Result{Score: 0, Blocked: true, Hits: append(res.Hits, Hit{Rule: rule.Name, Count: n})}
		}
		deduction := rule.Penalty
		if rule.Cumulative {
			deduction *= n
		}
		res.Score -= deduction
		res.Hits = append(res.Hits, Hit{Rule: rule.Name, Count: n, Deduction: deduction})
	}
	if res.Score < 0 {
		res.Score = 0
	}
	return res
}

// Evaluate returns the score for text in [0,100].
func (e *Evaluator) Evaluate(text string, hasProjectContext bool) int {
	return e.Analyze(text, hasProjectContext).Score
}

// PassesThreshold reports whether Evaluate(text, hasProjectContext) >= threshold.
func (e *Evaluator) PassesThreshold(text string, hasProjectContext bool, threshold int) bool {
	return e.Evaluate(text, hasProjectContext) >= threshold
}

var defaultEvaluator = NewEvaluator()

// Evaluate scores text with the default rule table.
func Evaluate(text string, hasProjectContext bool) int {
	return defaultEvaluator.Evaluate(text, hasProjectContext)
}

// PassesThreshold checks text against threshold with the default rule table.
func PassesThreshold(text string, hasProjectContext bool, threshold int) bool {
	return defaultEvaluator.PassesThreshold(text, hasProjectContext, threshold)
}

// Analyze explains the default score for text.
func Analyze(text string, hasProjectContext bool) Result {
	return defaultEvaluator.Analyze(text, hasProjectContext)
}

// countTerms returns a matcher counting how many distinct terms occur in the text.
func countTerms(terms []string) func(Input) int {
	return func(in Input) int {
		n := 0
		for _, t := range terms {
			if strings.Contains(in.Text, t) {
				n++
			}
		}
		return n
	}
}

// noneOf returns a matcher that fires once when none of the terms occur.
func noneOf(terms []string) func(Input) int {
	count := countTerms(terms)
	return func(in Input) int {
		if count(in) == 0 {
			return 1
		}
		return 0
	}
}

func lengthOutOfRange(in Input) int {
	n := utf8.RuneCountInString(in.Text)
	if n > maxRunes || n < minRunes {
		return 1
	}
	return 0
}

func missingProjectContext(in Input) int {
	if in.HasProjectContext {
		return 0
	}
	return 1
}
