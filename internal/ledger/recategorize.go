package ledger

import (
	"context"
	"errors"

	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/store"
)

// Recategorizer re-applies the rules to unassigned transactions.
type Recategorizer struct {
	deps Deps
}

// NewRecategorizer creates a Recategorizer.
func NewRecategorizer(d Deps) *Recategorizer {
	return &Recategorizer{deps: d.withDefaults()}
}

// Recategorize moves UNASSIGNED transactions whose payment now matches a
// rule to that rule's category. The pass commits as a whole and returns the
// number of transactions updated.
func (r *Recategorizer) Recategorize(ctx context.Context) (int, error) {
	start := r.deps.Now()
	defer r.deps.observe("recategorize", start)

	runID, log := startRun(ctx, "recategorize")

	var scanned, updated int
	err := r.deps.Store.WithTx(ctx, func(tx *store.Tx) error {
		txns, err := tx.TransactionsByCategory(ctx, model.UnassignedCategory)
		if err != nil {
			return err
		}
		scanned = len(txns)
		for _, t := range txns {
			p, err := tx.GetPayment(ctx, t.PaymentID)
			if errors.Is(err, store.ErrNotFound) {
				log.Warn().Int64("payment_id", t.PaymentID).Msg("transaction without payment")
				continue
			}
			if err != nil {
				return err
			}
			category, ok := r.deps.Rules.CategoryFor(p)
			if !ok || category == model.UnassignedCategory {
				continue
			}
			if err := tx.UpdateTransactionCategory(ctx, t.ID, category); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		err = &StorageError{Op: "recategorize", Err: err}
		log.Error().Err(err).Msg("recategorization failed")
		return 0, err
	}

	r.deps.Metrics.Recategorized.Add(float64(updated))
	log.Info().Int("scanned", scanned).Int("updated", updated).Msg("recategorization committed")
	publish(ctx, r.deps.Publisher, log, events.Recategorized{
		RunID:      runID,
		Scanned:    scanned,
		Updated:    updated,
		OccurredAt: r.deps.Now(),
	})
	return updated, nil
}
