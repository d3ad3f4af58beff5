package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kopolinfo/budget/internal/events"
	"github.com/kopolinfo/budget/internal/importer"
	"github.com/kopolinfo/budget/internal/metrics"
	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/refdata"
	"github.com/kopolinfo/budget/internal/rules"
	"github.com/kopolinfo/budget/internal/store"
)

// ImportResult summarizes a committed import run.
type ImportResult struct {
	ImportID    int64
	AccountID   string
	FileName    string
	Rows        int
	Categorized int
	Total       decimal.Decimal
	// Watermark is the newest booking date of the run; zero for an empty run.
	Watermark time.Time
}

// Importer runs statement imports into the ledger.
type Importer struct {
	deps      Deps
	reference *refdata.Snapshot
	parsers   *importer.Registry
	formats   map[string]string
	watermark *WatermarkValidator
}

// NewImporter creates an Importer. formats maps account id to parser format.
func NewImporter(d Deps, reference *refdata.Snapshot, parsers *importer.Registry, formats map[string]string) *Importer {
	d = d.withDefaults()
	f := make(map[string]string, len(formats))
	for acct, format := range formats {
		f[acct] = strings.ToLower(format)
	}
	return &Importer{
		deps:      d,
		reference: reference,
		parsers:   parsers,
		formats:   f,
		watermark: NewWatermarkValidator(d.Store),
	}
}

// ParserFor resolves the statement parser of an account.
func (im *Importer) ParserFor(accountID string) (importer.Parser, error) {
	if _, ok := im.reference.Account(accountID); !ok {
		return nil, fmt.Errorf("%w: account %s is not in reference data", ErrUnknownAccountFormat, accountID)
	}
	format, ok := im.formats[accountID]
	if !ok || format == "" {
		return nil, fmt.Errorf("%w: no format configured for account %s", ErrUnknownAccountFormat, accountID)
	}
	p := im.parsers.Get(format)
	if p == nil {
		return nil, fmt.Errorf("%w: account %s uses unregistered format %q", ErrUnknownAccountFormat, accountID, format)
	}
	return p, nil
}

// ProcessImport parses the statement at path and stores its rows for
// accountID in one transaction.
func (im *Importer) ProcessImport(ctx context.Context, accountID, path string) (ImportResult, error) {
	start := im.deps.Now()
	defer im.deps.observe("import", start)

	runID, log := startRun(ctx, "import")
	log = log.With().Str("account_id", accountID).Str("file", path).Logger()

	res, err := im.process(ctx, accountID, path)
	im.deps.Metrics.Imports.WithLabelValues(accountID, metrics.Outcome(err)).Inc()
	if err != nil {
		log.Error().Err(err).Msg("import failed")
		return ImportResult{}, err
	}

	im.deps.Metrics.PaymentsWritten.WithLabelValues(accountID).Add(float64(res.Rows))
	log.Info().
		Int64("import_id", res.ImportID).
		Int("rows", res.Rows).
		Int("categorized", res.Categorized).
		Msg("import committed")
	publish(ctx, im.deps.Publisher, log, events.ImportCommitted{
		RunID:      runID,
		ImportID:   res.ImportID,
		AccountID:  accountID,
		FileName:   res.FileName,
		Payments:   res.Rows,
		Total:      res.Total,
		OccurredAt: im.deps.Now(),
	})
	return res, nil
}

func (im *Importer) process(ctx context.Context, accountID, path string) (ImportResult, error) {
	parser, err := im.ParserFor(accountID)
	if err != nil {
		return ImportResult{}, err
	}

	rows, err := importer.ParseFile(parser, path)
	if err != nil {
		return ImportResult{}, fmt.Errorf("import into %s: %w", accountID, err)
	}

	if err := im.watermark.Validate(ctx, accountID, rows); err != nil {
		return ImportResult{}, fmt.Errorf("import of %s into %s: %w", filepath.Base(path), accountID, err)
	}

	res := ImportResult{
		AccountID: accountID,
		FileName:  filepath.Base(path),
		Rows:      len(rows),
		Total:     decimal.Zero,
	}
	err = im.deps.Store.WithTx(ctx, func(tx *store.Tx) error {
		importID, err := tx.InsertImportLog(ctx, model.ImportLog{
			AccountID:  accountID,
			ImportedAt: im.deps.Now(),
			FileName:   res.FileName,
		})
		if err != nil {
			return err
		}
		res.ImportID = importID

		for _, row := range rows {
			categorized, err := im.storeRow(ctx, tx, importID, accountID, row)
			if err != nil {
				return err
			}
			if categorized {
				res.Categorized++
			}
			res.Total = res.Total.Add(row.Amount)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, &StorageError{Op: "import", AccountID: accountID, File: res.FileName, Err: err}
	}
	if len(rows) > 0 {
		res.Watermark = rows[len(rows)-1].BookingDate
	}
	return res, nil
}

// storeRow writes one payment with its transaction and import entry.
func (im *Importer) storeRow(ctx context.Context, tx *store.Tx, importID int64, accountID string, row model.CanonicalRow) (bool, error) {
	p := model.Payment{
		AccountID:   accountID,
		BookingDate: row.BookingDate,
		Amount:      row.Amount,
		PartnerName: row.PartnerName,
		Description: row.Purpose,
		RawLine:     row.RawLine,
	}
	paymentID, err := tx.InsertPayment(ctx, p)
	if err != nil {
		return false, err
	}
	p.ID = paymentID

	category := rules.Resolve(im.deps.Rules, p)
	if _, err := tx.InsertTransaction(ctx, model.Transaction{
		PaymentID:   paymentID,
		CategoryID:  category,
		Amount:      p.Amount,
		ValidFrom:   p.BookingDate,
		ValidTo:     p.BookingDate,
		Description: p.Description,
	}); err != nil {
		return false, err
	}

	if err := tx.InsertImportEntry(ctx, model.ImportEntry{ImportID: importID, PaymentID: paymentID}); err != nil {
		return false, err
	}
	return category != model.UnassignedCategory, nil
}
