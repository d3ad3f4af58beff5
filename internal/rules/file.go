package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk rule file layout.
type File struct {
	Rules []FileRule `yaml:"rules"`
}

// FileRule is one rule entry in a rule file.
type FileRule struct {
	Name     string    `yaml:"name"`
	Field    Field     `yaml:"field"`
	Patterns []Pattern `yaml:"patterns"`
}

// Load reads a rule file from disk.
func Load(path string) (*Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules: %w", err)
	}
	defer f.Close()

	seq, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("loading rules %s: %w", path, err)
	}
	return seq, nil
}

// Parse decodes a rule file. Rule and pattern order is kept as written.
func Parse(r io.Reader) (*Sequence, error) {
	var file File
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, fr := range file.Rules {
		rule, err := fr.build()
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, fr.Name, err)
		}
		rules = append(rules, rule)
	}
	return NewSequence(rules...), nil
}

func (fr FileRule) build() (*PatternRule, error) {
	field := fr.Field
	if field == "" {
		field = FieldDescription
	}
	if field != FieldDescription && field != FieldPartner {
		return nil, fmt.Errorf("unknown field %q", fr.Field)
	}
	for j, p := range fr.Patterns {
		if p.Pattern == "" {
			return nil, fmt.Errorf("pattern %d is empty", j+1)
		}
		if p.Category == "" {
			return nil, fmt.Errorf("pattern %q has no category", p.Pattern)
		}
	}
	return &PatternRule{Name: fr.Name, Field: field, Patterns: fr.Patterns}, nil
}

// Save writes a rule file for seq. Only PatternRules are written.
func Save(path string, seq *Sequence) error {
	var file File
	for _, r := range seq.rules {
		pr, ok := r.(*PatternRule)
		if !ok {
			continue
		}
		file.Rules = append(file.Rules, FileRule{Name: pr.Name, Field: pr.Field, Patterns: pr.Patterns})
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// CategoryChecker tests whether a category ID exists.
type CategoryChecker interface {
	HasCategory(id string) bool
}

// Validate returns the categories seq can produce that cats does not know.
func Validate(seq *Sequence, cats CategoryChecker) []string {
	var unknown []string
	seen := make(map[string]bool)
	for _, r := range seq.rules {
		pr, ok := r.(*PatternRule)
		if !ok {
			continue
		}
		for _, p := range pr.Patterns {
			if seen[p.Category] {
				continue
			}
			seen[p.Category] = true
			if !cats.HasCategory(p.Category) {
				unknown = append(unknown, p.Category)
			}
		}
	}
	return unknown
}
