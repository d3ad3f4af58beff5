package ledger_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/ledger"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/rules"
)

func descriptionRule(patterns ...rules.Pattern) *rules.Sequence {
	return rules.NewSequence(&rules.PatternRule{
		Name:     "description",
		Field:    rules.FieldDescription,
		Patterns: patterns,
	})
}

func TestRecategorize(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.importer(rules.NewSequence()).ProcessImport(ctx, "RAIFFEISEN_PRIVAT", raiffeisenFile)
	require.NoError(t, err)

	updated := descriptionRule(
		rules.Pattern{Pattern: "MIGROS", Category: "GROCERIES"},
		rules.Pattern{Pattern: "COOP", Category: "GROCERIES"},
		rules.Pattern{Pattern: "Miete", Category: "RENT"},
	)
	rc := ledger.NewRecategorizer(e.deps(updated))

	n, err := rc.Recategorize(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	groceries, err := e.store.TransactionsByCategory(ctx, "GROCERIES")
	require.NoError(t, err)
	assert.Len(t, groceries, 2)
	unassigned, err := e.store.TransactionsByCategory(ctx, model.UnassignedCategory)
	require.NoError(t, err)
	assert.Len(t, unassigned, 2)

	n, err = rc.Recategorize(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "second pass finds nothing new")

	assert.Equal(t, 3.0, testutil.ToFloat64(e.metrics.Recategorized))
	evs := e.publisher.Events()
	last, ok := evs[len(evs)-1].(events.Recategorized)
	require.True(t, ok)
	assert.Equal(t, 2, last.Scanned)
	assert.Zero(t, last.Updated)
}

func TestRecategorize_LeavesAssignedAlone(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.importer(rules.Default()).ProcessImport(ctx, "RAIFFEISEN_PRIVAT", raiffeisenFile)
	require.NoError(t, err)

	n, err := ledger.NewRecategorizer(e.deps(descriptionRule(
		rules.Pattern{Pattern: "MIGROS", Category: "GROCERIES"},
	))).Recategorize(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	migros, err := e.store.TransactionsByCategory(ctx, "MIGROSKREUZ")
	require.NoError(t, err)
	assert.Len(t, migros, 1)
}

func TestRecategorize_FailureRollsBackPass(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.importer(rules.NewSequence()).ProcessImport(ctx, "RAIFFEISEN_PRIVAT", raiffeisenFile)
	require.NoError(t, err)

	// SBB is updated before COOP hits the missing category.
	broken := descriptionRule(
		rules.Pattern{Pattern: "SBB", Category: "PUBLICTRANSPORT"},
		rules.Pattern{Pattern: "COOP", Category: "NO_SUCH_CATEGORY"},
	)
	_, err = ledger.NewRecategorizer(e.deps(broken)).Recategorize(ctx)
	require.ErrorIs(t, err, ledger.ErrStorageFailure)

	unassigned, err := e.store.TransactionsByCategory(ctx, model.UnassignedCategory)
	require.NoError(t, err)
	assert.Len(t, unassigned, 5)
	assert.Empty(t, e.publisher.Events()[1:])
}
