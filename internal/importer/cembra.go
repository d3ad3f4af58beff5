package importer

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kopolinfo/budget/internal/model"
)

// CembraParser parses Cembra credit card CSV exports. The bank lists the
// newest booking first; Parse returns rows oldest first.
type CembraParser struct{}

const (
	cembraSep         = ","
	cembraDateFormat  = "02-01-2006"
	cembraMinFields   = 7
	cembraColDate     = 2
	cembraColMerchant = 3
	cembraColDetail   = 4
	cembraColType     = 5
	cembraColAmount   = 6
	cembraDebitType   = "debit"
)

// Format returns the parser name.
func (p *CembraParser) Format() string { return "cembra" }

// Parse reads a Cembra CSV and returns canonical rows.
func (p *CembraParser) Parse(r io.Reader) ([]model.CanonicalRow, error) {
	lines, err := readDataLines(r)
	if err != nil {
		return nil, err
	}

	var rows []model.CanonicalRow
	for _, l := range lines {
		row, err := parseCembraLine(l)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	slices.Reverse(rows)
	return rows, nil
}

func parseCembraLine(l sourceLine) (model.CanonicalRow, error) {
	cols := strings.Split(l.text, cembraSep)
	if len(cols) < cembraMinFields {
		return model.CanonicalRow{}, malformed(l, "expected at least %d fields, got %d", cembraMinFields, len(cols))
	}

	date, err := time.Parse(cembraDateFormat, strings.TrimSpace(cols[cembraColDate]))
	if err != nil {
		return model.CanonicalRow{}, malformed(l, "parsing date %q: %w", cols[cembraColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(cols[cembraColAmount]))
	if err != nil {
		return model.CanonicalRow{}, malformed(l, "parsing amount %q: %w", cols[cembraColAmount], err)
	}
	if strings.EqualFold(strings.TrimSpace(cols[cembraColType]), cembraDebitType) {
		amount = amount.Neg()
	}

	merchant := strings.TrimSpace(cols[cembraColMerchant])
	desc := cembraDescription(merchant, strings.TrimSpace(cols[cembraColDetail]))

	return model.CanonicalRow{
		BookingDate: date,
		Amount:      amount,
		PartnerName: desc,
		Purpose:     desc,
		RawLine:     l.text,
	}, nil
}

// cembraDescription drops the detail column when it only repeats the merchant.
func cembraDescription(merchant, detail string) string {
	if strings.HasPrefix(detail, merchant) {
		return merchant
	}
	return merchant + " (" + detail + ")"
}
