package refdata

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopolinfo/budget/internal/model"
)

func TestNewSnapshot_Default(t *testing.T) {
	snap, err := NewSnapshot(Default())
	require.NoError(t, err)

	assert.Equal(t, model.UnassignedCategory, snap.Unassigned().ID)
	assert.True(t, snap.HasCategory("MIGROSKREUZ"))
	assert.False(t, snap.HasCategory("BOGUS"))

	acct, ok := snap.Account("RAIFFEISEN_PRIVAT")
	require.True(t, ok)
	assert.Equal(t, "CHF", acct.CurrencyCode)

	_, ok = snap.Account("REVOLUT_01")
	assert.False(t, ok)
}

func TestNewSnapshot_RequiresUnassigned(t *testing.T) {
	d := Default()
	d.Categories = d.Categories[1:]
	_, err := NewSnapshot(d)
	assert.ErrorIs(t, err, ErrNoUnassigned)
}

func TestNewSnapshot_UnknownGroup(t *testing.T) {
	d := Default()
	d.Categories = append(d.Categories, model.Category{ID: "X", Name: "X", GroupID: "NOPE"})
	_, err := NewSnapshot(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown group NOPE")
}

func TestNewSnapshot_UnknownCurrency(t *testing.T) {
	d := Default()
	d.Accounts = append(d.Accounts, model.Account{ID: "USD_ACCT", CurrencyCode: "USD"})
	_, err := NewSnapshot(d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown currency USD")
}

func TestSnapshot_AccountsSorted(t *testing.T) {
	snap, err := NewSnapshot(Default())
	require.NoError(t, err)

	var ids []string
	for _, a := range snap.Accounts() {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"CEMBRA", "RAIFFEISEN_PRIVAT", "RAIFFEISEN_SPAR"}, ids)
}

func TestSnapshot_CategoriesInGroup(t *testing.T) {
	snap, err := NewSnapshot(Default())
	require.NoError(t, err)

	living := snap.CategoriesInGroup("LIVING")
	require.Len(t, living, 3)
	assert.Equal(t, "GROCERIES", living[0].ID)
}

func TestDirRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reference")
	require.NoError(t, WriteDir(dir, Default()))

	got, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

func TestLoadDir_Missing(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), CurrenciesFile)
}
