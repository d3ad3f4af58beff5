// Package rules maps payments to spending categories.
//
// A rule set is an ordered list of rules; the first rule that yields a
// category wins. Rules are pure functions of the payment.
package rules

import (
	"strings"

	"github.com/kopolinfo/budget/internal/model"
)

// Rule inspects a payment and optionally returns a category ID.
type Rule interface {
	CategoryFor(p model.Payment) (string, bool)
}

// Field selects the payment text a PatternRule searches.
type Field string

const (
	FieldDescription Field = "description"
	FieldPartner     Field = "partner"
)

// Pattern maps a substring to a category.
type Pattern struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
}

// PatternRule matches when the selected field contains one of its patterns.
// Patterns are tried in order and the first hit decides the category.
type PatternRule struct {
	Name     string
	Field    Field
	Patterns []Pattern
}

// CategoryFor implements Rule.
func (r *PatternRule) CategoryFor(p model.Payment) (string, bool) {
	text := p.Description
	if r.Field == FieldPartner {
		text = p.PartnerName
	}
	for _, pat := range r.Patterns {
		if strings.Contains(text, pat.Pattern) {
			return pat.Category, true
		}
	}
	return "", false
}

// Sequence evaluates rules in order and returns the first match.
type Sequence struct {
	rules []Rule
}

// NewSequence creates a Sequence. The order of rules is the evaluation order.
func NewSequence(rules ...Rule) *Sequence {
	return &Sequence{rules: rules}
}

// CategoryFor implements Rule.
func (s *Sequence) CategoryFor(p model.Payment) (string, bool) {
	for _, r := range s.rules {
		if cat, ok := r.CategoryFor(p); ok {
			return cat, true
		}
	}
	return "", false
}

// Len returns the number of rules in the sequence.
func (s *Sequence) Len() int { return len(s.rules) }

// Resolve returns the category for p, falling back to the unassigned
// sentinel when no rule matches.
func Resolve(r Rule, p model.Payment) string {
	if cat, ok := r.CategoryFor(p); ok {
		return cat
	}
	return model.UnassignedCategory
}

// Default returns the built-in rule set.
func Default() *Sequence {
	return NewSequence(&PatternRule{
		Name:  "partner-match",
		Field: FieldPartner,
		Patterns: []Pattern{
			{Pattern: "MIGROS KREUZPLATZ", Category: "MIGROSKREUZ"},
		},
	})
}
