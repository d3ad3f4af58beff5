package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// UnassignedCategory is the category every transaction falls back to when no
// rule matches its payment.
const UnassignedCategory = "UNASSIGNED"

// DateFormat is the storage and display format for booking dates.
const DateFormat = "2006-01-02"

// CanonicalRow is one bank statement line after format-specific decoding.
type CanonicalRow struct {
	BookingDate time.Time
	Amount      decimal.Decimal // negative = debit, positive = credit
	PartnerName string
	Purpose     string
	RawLine     string
}

// Payment is an imported statement line. Payments are never updated.
type Payment struct {
	ID          int64
	AccountID   string
	BookingDate time.Time
	Amount      decimal.Decimal
	PartnerName string
	Description string
	RawLine     string
}

// Transaction is the categorized view of a payment.
type Transaction struct {
	ID          int64
	PaymentID   int64
	CategoryID  string
	Amount      decimal.Decimal
	ValidFrom   time.Time
	ValidTo     time.Time
	Description string
}

// ImportLog is the audit root of one import run.
type ImportLog struct {
	ID         int64
	AccountID  string
	ImportedAt time.Time
	FileName   string
}

// ImportEntry links a payment to the import run that created it.
type ImportEntry struct {
	ImportID  int64
	PaymentID int64
}

// IsUnassigned reports whether the transaction still carries the sentinel
// category.
func (t Transaction) IsUnassigned() bool {
	return t.CategoryID == UnassignedCategory
}
