package ledger

import (
	"context"
	"time"

	"github.com/kopolinfo/budget/internal/model"
)

// WatermarkSource reports the newest stored booking date of an account.
type WatermarkSource interface {
	LatestBookingDate(ctx context.Context, accountID string) (time.Time, bool, error)
}

// WatermarkValidator rejects imports that would overlap stored history.
type WatermarkValidator struct {
	source WatermarkSource
}

// NewWatermarkValidator creates a validator reading watermarks from source.
func NewWatermarkValidator(source WatermarkSource) *WatermarkValidator {
	return &WatermarkValidator{source: source}
}

// Validate checks rows (ascending) against the account's stored watermark.
func (v *WatermarkValidator) Validate(ctx context.Context, accountID string, rows []model.CanonicalRow) error {
	if len(rows) == 0 {
		return nil
	}
	latest, ok, err := v.source.LatestBookingDate(ctx, accountID)
	if err != nil {
		return &StorageError{Op: "watermark lookup", AccountID: accountID, Err: err}
	}
	return ValidateWatermark(accountID, rows, latest, ok)
}

// ValidateWatermark fails when the first row is not strictly after latest.
// hasLatest is false for an account without stored payments.
func ValidateWatermark(accountID string, rows []model.CanonicalRow, latest time.Time, hasLatest bool) error {
	if len(rows) == 0 || !hasLatest {
		return nil
	}
	first := rows[0].BookingDate
	if !first.After(latest) {
		return &OverlapError{AccountID: accountID, FirstNew: first, Stored: latest}
	}
	return nil
}
