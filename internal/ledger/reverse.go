package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/metrics"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/store"
)

const minutesPerDay = 24 * 60

// Confirmation gates a destructive operation.
type Confirmation interface {
	Confirm(now time.Time) error
}

// ClockConfirmation is an HH:MM wall-clock time typed by the operator. It
// confirms when it names the current minute or the minute before.
type ClockConfirmation string

// Confirm implements Confirmation.
func (c ClockConfirmation) Confirm(now time.Time) error {
	s := string(c)
	t, err := time.Parse("15:04", s)
	if err != nil || len(s) != len("15:04") {
		return fmt.Errorf("%w: %q is not a HH:MM time", ErrSafetyCheckFailed, s)
	}
	given := t.Hour()*60 + t.Minute()
	current := now.Hour()*60 + now.Minute()
	if given == current || (given+1)%minutesPerDay == current {
		return nil
	}
	return fmt.Errorf("%w: confirmation %s does not match current time %s",
		ErrSafetyCheckFailed, s, now.Format("15:04"))
}

// ReversalResult counts the rows removed by a reversal.
type ReversalResult struct {
	ImportID      int64
	AccountID     string
	FileName      string
	Payments      int64
	Transactions  int64
	ImportEntries int64
}

// Preview lists what a reversal would delete.
type Preview struct {
	Log      model.ImportLog
	Payments []model.Payment
}

// Reverser deletes import runs.
type Reverser struct {
	deps Deps
}

// NewReverser creates a Reverser.
func NewReverser(d Deps) *Reverser {
	return &Reverser{deps: d.withDefaults()}
}

// Preview returns the import log and payments of importID without deleting.
func (r *Reverser) Preview(ctx context.Context, importID int64) (Preview, error) {
	l, err := r.deps.Store.GetImportLog(ctx, importID)
	if err != nil {
		return Preview{}, importLookupError(importID, err)
	}
	payments, err := r.deps.Store.PaymentsForImport(ctx, importID)
	if err != nil {
		return Preview{}, &StorageError{Op: "preview", AccountID: l.AccountID, ImportID: importID, Err: err}
	}
	return Preview{Log: l, Payments: payments}, nil
}

// Reverse deletes every row written by import run importID once confirm
// accepts the current time. Nothing is deleted unless all deletions succeed.
func (r *Reverser) Reverse(ctx context.Context, confirm Confirmation, importID int64) (ReversalResult, error) {
	start := r.deps.Now()
	defer r.deps.observe("reverse", start)

	runID, log := startRun(ctx, "reverse")
	log = log.With().Int64("import_id", importID).Logger()

	res, err := r.reverse(ctx, confirm, importID, start)
	r.deps.Metrics.Reversals.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		log.Error().Err(err).Msg("reversal failed")
		return ReversalResult{}, err
	}

	log.Info().
		Str("account_id", res.AccountID).
		Int64("payments", res.Payments).
		Int64("transactions", res.Transactions).
		Msg("import reversed")
	publish(ctx, r.deps.Publisher, log, events.ImportReversed{
		RunID:      runID,
		ImportID:   importID,
		AccountID:  res.AccountID,
		Payments:   int(res.Payments),
		OccurredAt: r.deps.Now(),
	})
	return res, nil
}

func (r *Reverser) reverse(ctx context.Context, confirm Confirmation, importID int64, now time.Time) (ReversalResult, error) {
	if confirm == nil {
		return ReversalResult{}, fmt.Errorf("reverse import %d: %w: no confirmation given", importID, ErrSafetyCheckFailed)
	}
	if err := confirm.Confirm(now); err != nil {
		return ReversalResult{}, fmt.Errorf("reverse import %d: %w", importID, err)
	}

	res := ReversalResult{ImportID: importID}
	err := r.deps.Store.WithTx(ctx, func(tx *store.Tx) error {
		l, err := tx.GetImportLog(ctx, importID)
		if err != nil {
			return err
		}
		res.AccountID = l.AccountID
		res.FileName = l.FileName

		ids, err := tx.PaymentIDsForImport(ctx, importID)
		if err != nil {
			return err
		}
		if len(ids) > 0 {
			if res.ImportEntries, err = tx.DeleteImportEntries(ctx, importID); err != nil {
				return err
			}
			if res.Transactions, err = tx.DeleteTransactionsForPayments(ctx, ids); err != nil {
				return err
			}
			if res.Payments, err = tx.DeletePayments(ctx, ids); err != nil {
				return err
			}
		}
		_, err = tx.DeleteImportLog(ctx, importID)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ReversalResult{}, importLookupError(importID, err)
		}
		return ReversalResult{}, &StorageError{Op: "reverse", AccountID: res.AccountID, ImportID: importID, Err: err}
	}
	return res, nil
}

func importLookupError(importID int64, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: import %d", ErrImportNotFound, importID)
	}
	return &StorageError{Op: "import lookup", ImportID: importID, Err: err}
}
