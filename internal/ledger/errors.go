package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/kopolinfo/budget/internal/importer"
	"github.com/kopolinfo/budget/internal/model"
)

var (
	// ErrUnknownAccountFormat means no parser is configured for the account.
	ErrUnknownAccountFormat = errors.New("unknown account format")
	// ErrMalformedRow means a statement line could not be decoded.
	ErrMalformedRow = importer.ErrMalformedRow
	// ErrOverlapDetected means an import would overlap stored history.
	ErrOverlapDetected = errors.New("import overlaps stored history")
	// ErrStorageFailure means a ledger transaction failed and was rolled back.
	ErrStorageFailure = errors.New("storage failure")
	// ErrSafetyCheckFailed means a reversal was not confirmed.
	ErrSafetyCheckFailed = errors.New("safety check failed")
	// ErrImportNotFound means the import run does not exist.
	ErrImportNotFound = errors.New("import not found")
)

// OverlapError carries both dates of a rejected import.
type OverlapError struct {
	AccountID string
	FirstNew  time.Time
	Stored    time.Time
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("account %s: first new booking date %s is not after stored booking date %s",
		e.AccountID, e.FirstNew.Format(model.DateFormat), e.Stored.Format(model.DateFormat))
}

// Is makes errors.Is(err, ErrOverlapDetected) hold.
func (e *OverlapError) Is(target error) bool { return target == ErrOverlapDetected }

// StorageError wraps a failed, rolled-back ledger transaction.
type StorageError struct {
	Op        string // "import", "reverse", "recategorize"
	AccountID string
	ImportID  int64
	File      string
	Err       error
}

func (e *StorageError) Error() string {
	msg := e.Op
	if e.File != "" {
		msg += " of " + e.File
	}
	if e.AccountID != "" {
		msg += " for account " + e.AccountID
	}
	if e.ImportID != 0 {
		msg += fmt.Sprintf(" (import %d)", e.ImportID)
	}
	return fmt.Sprintf("%s: %v: %v", msg, ErrStorageFailure, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrStorageFailure) hold.
func (e *StorageError) Is(target error) bool { return target == ErrStorageFailure }
