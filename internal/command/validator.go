// Package command classifies shell commands by how much damage they can do.
package command

import (
	"fmt"
	"regexp"
	"strings"
)

// Level is a security classification. Levels are ordered by severity.
type Level int

const (
	Safe Level = iota
	SystemLevel
	Destructive
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case Safe:
		return "Safe"
	case SystemLevel:
		return "System-level"
	case Destructive:
		return "Destructive"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Symbol returns the marker printed in front of command analysis output.
func (l Level) Symbol() string {
	switch l {
	case SystemLevel:
		return "🔧"
	case Destructive:
		return "🚨"
	default:
		return "✅"
	}
}

// MarshalText encodes the level by name for JSON session files.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a level written by MarshalText.
func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Safe":
		*l = Safe
	case "System-level":
		*l = SystemLevel
	case "Destructive":
		*l = Destructive
	default:
		return fmt.Errorf("unknown security level %q", string(b))
	}
	return nil
}

// Warning texts, in the order Validate emits them.
const (
	WarnDataLoss     = "This command may cause irreversible data loss"
	WarnRootTarget   = "CRITICAL: This command targets the root directory!"
	WarnElevated     = "Running with elevated privileges"
	WarnSystemLevel  = "This command operates at the system level"
	WarnSystemConfig = "Modifying system configuration files"
	WarnPipeToShell  = "Piping to shell - potential security risk"
)

// Validation is the detailed result of Validate.
type Validation struct {
	Command     string   `json:"command"`
	Level       Level    `json:"level"`
	Destructive bool     `json:"is_destructive"`
	SystemLevel bool     `json:"is_system_level"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Validator classifies commands against a destructive and a system-level
// pattern set. A Validator is immutable and safe for concurrent use.
type Validator struct {
	destructive *PatternSet
	system      *PatternSet
}

// NewValidator returns a validator over the built-in pattern tables.
func NewValidator() *Validator {
	return &Validator{destructive: destructivePatterns, system: systemLevelPatterns}
}

// NewValidatorWithPatterns returns a validator that also checks extra
// caller-supplied patterns after the built-in ones. An invalid pattern is an
// error, never silently skipped.
func NewValidatorWithPatterns(extraDestructive, extraSystem []string) (*Validator, error) {
	d, err := NewPatternSet("destructive", append(DestructivePatterns(), extraDestructive...))
	if err != nil {
		return nil, err
	}
	s, err := NewPatternSet("system-level", append(SystemLevelPatterns(), extraSystem...))
	if err != nil {
		return nil, err
	}
	return &Validator{destructive: d, system: s}, nil
}

// IsDestructive reports whether any destructive pattern matches.
func (v *Validator) IsDestructive(command string) bool {
	return v.destructive.MatchString(command)
}

// IsSystemLevel reports whether any system-level pattern matches.
func (v *Validator) IsSystemLevel(command string) bool {
	return v.system.MatchString(command)
}

// Classify returns the severity of command.
//
// Destructive patterns are checked first and win when a command matches both
// sets, so "sudo rm -rf /tmp" is Destructive rather than SystemLevel.
func (v *Validator) Classify(command string) Level {
	return levelFor(v.IsDestructive(command), v.IsSystemLevel(command))
}

// Validate classifies command and explains why.
func (v *Validator) Validate(command string) Validation {
	destructive := v.IsDestructive(command)
	system := v.IsSystemLevel(command)
	return Validation{
		Command:     command,
		Level:       levelFor(destructive, system),
		Destructive: destructive,
		SystemLevel: system,
		Warnings:    warningsFor(command, destructive, system),
	}
}

// PatternMatch names one pattern that matched a command.
type PatternMatch struct {
	Set     string `json:"set"`
	Pattern string `json:"pattern"`
}

// Explain lists every destructive then system-level pattern matching command.
func (v *Validator) Explain(command string) []PatternMatch {
	var out []PatternMatch
	for _, set := range []*PatternSet{v.destructive, v.system} {
		for _, p := range set.Matches(command) {
			out = append(out, PatternMatch{Set: set.Name(), Pattern: p})
		}
	}
	return out
}

func levelFor(destructive, system bool) Level {
	switch {
	case destructive:
		return Destructive
	case system:
		return SystemLevel
	default:
		return Safe
	}
}

// warningsFor builds warnings in detection order: destructive first, then
// system-level, then the pipe-to-shell check which ignores the level.
func warningsFor(command string, destructive, system bool) []string {
	var warnings []string

	if destructive {
		warnings = append(warnings, WarnDataLoss)
		if strings.Contains(command, "rm -rf /") || strings.Contains(command, "rm -r /") {
			warnings = append(warnings, WarnRootTarget)
		}
		if strings.Contains(command, "sudo") {
			warnings = append(warnings, WarnElevated)
		}
	}

	if system {
		warnings = append(warnings, WarnSystemLevel)
		if strings.Contains(command, "/etc/") {
			warnings = append(warnings, WarnSystemConfig)
		}
	}

	if strings.Contains(command, "|") && (strings.Contains(command, "bash") || strings.Contains(command, "sh")) {
		warnings = append(warnings, WarnPipeToShell)
	}

	return warnings
}

var defaultValidator = NewValidator()

// Classify classifies command with the built-in patterns.
func Classify(command string) Level {
	return defaultValidator.Classify(command)
}

// Validate validates command with the built-in patterns.
func Validate(command string) Validation {
	return defaultValidator.Validate(command)
}

// Matcher answers whether text matches. *regexp.Regexp satisfies it.
type Matcher interface {
	MatchString(s string) bool
}

// PatternSet is an ordered, compiled, read-only list of matchers.
type PatternSet struct {
	name     string
	sources  []string
	matchers []Matcher
}

// NewPatternSet compiles patterns in order. The first invalid pattern aborts
// construction.
func NewPatternSet(name string, patterns []string) (*PatternSet, error) {
	ps := &PatternSet{name: name, sources: make([]string, 0, len(patterns)), matchers: make([]Matcher, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", name, p, err)
		}
		ps.sources = append(ps.sources, p)
		ps.matchers = append(ps.matchers, re)
	}
	return ps, nil
}

// MustPatternSet is like NewPatternSet but panics on an invalid pattern.
// Used for the fixed tables, which are known at build time.
func MustPatternSet(name string, patterns []string) *PatternSet {
	ps, err := NewPatternSet(name, patterns)
	if err != nil {
		panic(err)
	}
	return ps
}

// MatchString reports whether any pattern matches anywhere in s.
func (p *PatternSet) MatchString(s string) bool {
	for _, m := range p.matchers {
		if m.MatchString(s) {
			return true
		}
	}
	return false
}

// Matches returns the source of every pattern that matches s, in table order.
func (p *PatternSet) Matches(s string) []string {
	var out []string
	for i, m := range p.matchers {
		if m.MatchString(s) {
			out = append(out, p.sources[i])
		}
	}
	return out
}

// Len returns the number of compiled patterns.
func (p *PatternSet) Len() int {
	return len(p.matchers)
}

// Name returns the set's label.
func (p *PatternSet) Name() string {
	return p.name
}
