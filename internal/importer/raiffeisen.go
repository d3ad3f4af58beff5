package importer

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kopolinfo/budget/internal/model"
)

// RaiffeisenParser parses Raiffeisen e-banking CSV exports.
// Rows arrive oldest first and amounts carry their own sign.
type RaiffeisenParser struct{}

const (
	raiffeisenSep        = ";"
	raiffeisenDateFormat = "2006-01-02 15:04:05.0"
	raiffeisenMinFields  = 4
	raiffeisenColDate    = 1
	raiffeisenColText    = 2
	raiffeisenColAmount  = 3
)

// Format returns the parser name.
func (p *RaiffeisenParser) Format() string { return "raiffeisen" }

// Parse reads a Raiffeisen CSV and returns canonical rows.
func (p *RaiffeisenParser) Parse(r io.Reader) ([]model.CanonicalRow, error) {
	lines, err := readDataLines(r)
	if err != nil {
		return nil, err
	}

	var rows []model.CanonicalRow
	for _, l := range lines {
		row, err := parseRaiffeisenLine(l)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRaiffeisenLine(l sourceLine) (model.CanonicalRow, error) {
	cols := strings.Split(l.text, raiffeisenSep)
	if len(cols) < raiffeisenMinFields {
		return model.CanonicalRow{}, malformed(l, "expected at least %d fields, got %d", raiffeisenMinFields, len(cols))
	}

	booked, err := time.Parse(raiffeisenDateFormat, strings.TrimSpace(cols[raiffeisenColDate]))
	if err != nil {
		return model.CanonicalRow{}, malformed(l, "parsing date %q: %w", cols[raiffeisenColDate], err)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(cols[raiffeisenColAmount]))
	if err != nil {
		return model.CanonicalRow{}, malformed(l, "parsing amount %q: %w", cols[raiffeisenColAmount], err)
	}

	// The export mixes partner and purpose into one column.
	text := strings.TrimSpace(cols[raiffeisenColText])

	return model.CanonicalRow{
		BookingDate: truncateToDay(booked),
		Amount:      amount,
		PartnerName: text,
		Purpose:     text,
		RawLine:     l.text,
	}, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
