package rules

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopolinfo/budget/internal/model"
)

func payment(desc string) model.Payment {
	return model.Payment{Description: desc, PartnerName: desc}
}

func TestPatternRule_Match(t *testing.T) {
	r := &PatternRule{
		Field:    FieldDescription,
		Patterns: []Pattern{{Pattern: "MIGROS KREUZPLATZ", Category: "MIGROSKREUZ"}},
	}

	cat, ok := r.CategoryFor(payment("MIGROS KREUZPLATZ ZUERICH"))
	require.True(t, ok)
	assert.Equal(t, "MIGROSKREUZ", cat)

	_, ok = r.CategoryFor(payment("COOP-1234 ZUERICH"))
	assert.False(t, ok)
}

func TestPatternRule_CaseSensitive(t *testing.T) {
	r := &PatternRule{Patterns: []Pattern{{Pattern: "MIGROS", Category: "GROCERIES"}}}
	_, ok := r.CategoryFor(payment("migros zuerich"))
	assert.False(t, ok)
}

func TestPatternRule_FieldSelection(t *testing.T) {
	p := model.Payment{PartnerName: "SBB CFF FFS", Description: "Ticket Zuerich-Bern"}

	partner := &PatternRule{Field: FieldPartner, Patterns: []Pattern{{Pattern: "SBB", Category: "PUBLICTRANSPORT"}}}
	cat, ok := partner.CategoryFor(p)
	require.True(t, ok)
	assert.Equal(t, "PUBLICTRANSPORT", cat)

	desc := &PatternRule{Field: FieldDescription, Patterns: []Pattern{{Pattern: "SBB", Category: "PUBLICTRANSPORT"}}}
	_, ok = desc.CategoryFor(p)
	assert.False(t, ok)
}

func TestPatternRule_FirstPatternWins(t *testing.T) {
	r := &PatternRule{Patterns: []Pattern{
		{Pattern: "MIGROS KREUZPLATZ", Category: "MIGROSKREUZ"},
		{Pattern: "MIGROS", Category: "GROCERIES"},
	}}
	for i := 0; i < 10; i++ {
		cat, ok := r.CategoryFor(payment("MIGROS KREUZPLATZ ZUERICH"))
		require.True(t, ok)
		assert.Equal(t, "MIGROSKREUZ", cat)
	}
}

func TestSequence_FirstRuleWins(t *testing.T) {
	specific := &PatternRule{Patterns: []Pattern{{Pattern: "KREUZPLATZ", Category: "MIGROSKREUZ"}}}
	generic := &PatternRule{Patterns: []Pattern{{Pattern: "MIGROS", Category: "GROCERIES"}}}

	cat, ok := NewSequence(specific, generic).CategoryFor(payment("MIGROS KREUZPLATZ ZUERICH"))
	require.True(t, ok)
	assert.Equal(t, "MIGROSKREUZ", cat)

	cat, ok = NewSequence(generic, specific).CategoryFor(payment("MIGROS KREUZPLATZ ZUERICH"))
	require.True(t, ok)
	assert.Equal(t, "GROCERIES", cat)
}

func TestSequence_Empty(t *testing.T) {
	_, ok := NewSequence().CategoryFor(payment("anything"))
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	seq := Default()
	assert.Equal(t, "MIGROSKREUZ", Resolve(seq, payment("MIGROS KREUZPLATZ ZUERICH")))
	assert.Equal(t, model.UnassignedCategory, Resolve(seq, payment("DIGITEC GALAXUS")))
}

func TestParse(t *testing.T) {
	src := `
rules:
  - name: transport
    field: partner
    patterns:
      - pattern: SBB
        category: PUBLICTRANSPORT
  - name: shops
    patterns:
      - pattern: MIGROS KREUZPLATZ
        category: MIGROSKREUZ
      - pattern: MIGROS
        category: GROCERIES
`
	seq, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, 2, seq.Len())

	assert.Equal(t, "MIGROSKREUZ", Resolve(seq, payment("MIGROS KREUZPLATZ ZUERICH")))
	assert.Equal(t, "GROCERIES", Resolve(seq, payment("MIGROS OERLIKON")))
	assert.Equal(t, "PUBLICTRANSPORT", Resolve(seq, payment("SBB MOBILE")))

	second := seq.rules[1].(*PatternRule)
	assert.Equal(t, FieldDescription, second.Field, "field defaults to description")
}

func TestParse_Empty(t *testing.T) {
	seq, err := Parse(strings.NewReader("rules: []\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Len())

	seq, err = Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, seq.Len())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"bad field", "rules:\n  - name: x\n    field: amount\n    patterns:\n      - {pattern: A, category: B}\n", "unknown field"},
		{"empty pattern", "rules:\n  - name: x\n    patterns:\n      - {pattern: '', category: B}\n", "is empty"},
		{"no category", "rules:\n  - name: x\n    patterns:\n      - {pattern: A}\n", "has no category"},
		{"bad yaml", "rules: [", "parsing rules"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, Save(path, Default()))

	seq, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), seq)
}

type categorySet map[string]bool

func (c categorySet) HasCategory(id string) bool { return c[id] }

func TestValidate(t *testing.T) {
	seq := NewSequence(
		&PatternRule{Patterns: []Pattern{{Pattern: "A", Category: "KNOWN"}, {Pattern: "B", Category: "MISSING"}}},
		&PatternRule{Patterns: []Pattern{{Pattern: "C", Category: "MISSING"}}},
	)
	assert.Equal(t, []string{"MISSING"}, Validate(seq, categorySet{"KNOWN": true}))
	assert.Empty(t, Validate(Default(), categorySet{"MIGROSKREUZ": true}))
}
