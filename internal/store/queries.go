package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kopolinfo/budget/internal/model"
)

const timestampFormat = time.RFC3339

// queries holds every statement the ledger runs. It is shared by Store
// (autocommit) and Tx.
type queries struct {
	q querier
	d dialect
}

func (q queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.q.ExecContext(ctx, q.d.rebind(query), args...)
}

func (q queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.q.QueryContext(ctx, q.d.rebind(query), args...)
}

func (q queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.q.QueryRowContext(ctx, q.d.rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id.
func (q queries) insertReturningID(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := q.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// --- Import runs ---

// InsertImportLog stores an import run header and returns its ID.
func (q queries) InsertImportLog(ctx context.Context, l model.ImportLog) (int64, error) {
	id, err := q.insertReturningID(ctx,
		"INSERT INTO import_logs (account_id, imported_at, file_name) VALUES (?, ?, ?)",
		l.AccountID, l.ImportedAt.UTC().Format(timestampFormat), l.FileName)
	if err != nil {
		return 0, fmt.Errorf("insert import log: %w", err)
	}
	return id, nil
}

// InsertPayment stores a payment and returns its ID.
func (q queries) InsertPayment(ctx context.Context, p model.Payment) (int64, error) {
	id, err := q.insertReturningID(ctx,
		`INSERT INTO payments (account_id, booking_date, amount, partner_name, description, raw_line)
		VALUES (?, ?, ?, ?, ?, ?)`,
		p.AccountID, p.BookingDate.Format(model.DateFormat), p.Amount.String(), p.PartnerName, p.Description, p.RawLine)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return id, nil
}

// InsertTransaction stores a transaction and returns its ID.
func (q queries) InsertTransaction(ctx context.Context, t model.Transaction) (int64, error) {
	id, err := q.insertReturningID(ctx,
		`INSERT INTO transactions (payment_id, category_id, amount, valid_from, valid_to, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.PaymentID, t.CategoryID, t.Amount.String(),
		t.ValidFrom.Format(model.DateFormat), t.ValidTo.Format(model.DateFormat), t.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction for payment %d: %w", t.PaymentID, err)
	}
	return id, nil
}

// InsertImportEntry links a payment to its import run.
func (q queries) InsertImportEntry(ctx context.Context, e model.ImportEntry) error {
	if _, err := q.exec(ctx,
		"INSERT INTO import_entries (import_id, payment_id) VALUES (?, ?)",
		e.ImportID, e.PaymentID); err != nil {
		return fmt.Errorf("insert import entry %d/%d: %w", e.ImportID, e.PaymentID, err)
	}
	return nil
}

// LatestBookingDate returns the newest stored booking date for an account.
// ok is false when the account has no payments.
func (q queries) LatestBookingDate(ctx context.Context, accountID string) (date time.Time, ok bool, err error) {
	var raw sql.NullString
	if err := q.queryRow(ctx,
		"SELECT MAX(booking_date) FROM payments WHERE account_id = ?", accountID).Scan(&raw); err != nil {
		return time.Time{}, false, fmt.Errorf("query watermark for %s: %w", accountID, err)
	}
	if !raw.Valid {
		return time.Time{}, false, nil
	}
	date, err = time.Parse(model.DateFormat, raw.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parsing stored booking date %q: %w", raw.String, err)
	}
	return date, true, nil
}

// GetImportLog returns an import run header, or ErrNotFound.
func (q queries) GetImportLog(ctx context.Context, importID int64) (model.ImportLog, error) {
	var (
		l  model.ImportLog
		ts string
	)
	err := q.queryRow(ctx,
		"SELECT id, account_id, imported_at, file_name FROM import_logs WHERE id = ?", importID).
		Scan(&l.ID, &l.AccountID, &ts, &l.FileName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ImportLog{}, fmt.Errorf("import %d: %w", importID, ErrNotFound)
	}
	if err != nil {
		return model.ImportLog{}, fmt.Errorf("query import %d: %w", importID, err)
	}
	if l.ImportedAt, err = time.Parse(timestampFormat, ts); err != nil {
		return model.ImportLog{}, fmt.Errorf("parsing import timestamp %q: %w", ts, err)
	}
	return l, nil
}

// ImportRun is an import log with the number of payments it still links.
type ImportRun struct {
	model.ImportLog
	Payments int
}

// ListImportRuns returns import runs in ID order, optionally for one account.
func (q queries) ListImportRuns(ctx context.Context, accountID string) ([]ImportRun, error) {
	query := `SELECT l.id, l.account_id, l.imported_at, l.file_name, COUNT(e.payment_id)
		FROM import_logs l LEFT JOIN import_entries e ON e.import_id = l.id`
	var args []any
	if accountID != "" {
		query += " WHERE l.account_id = ?"
		args = append(args, accountID)
	}
	query += " GROUP BY l.id, l.account_id, l.imported_at, l.file_name ORDER BY l.id"

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query import runs: %w", err)
	}
	defer rows.Close()

	var runs []ImportRun
	for rows.Next() {
		var (
			r  ImportRun
			ts string
		)
		if err := rows.Scan(&r.ID, &r.AccountID, &ts, &r.FileName, &r.Payments); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		if r.ImportedAt, err = time.Parse(timestampFormat, ts); err != nil {
			return nil, fmt.Errorf("parsing import timestamp %q: %w", ts, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// PaymentIDsForImport returns the payment IDs linked to an import run.
func (q queries) PaymentIDsForImport(ctx context.Context, importID int64) ([]int64, error) {
	rows, err := q.query(ctx,
		"SELECT payment_id FROM import_entries WHERE import_id = ? ORDER BY payment_id", importID)
	if err != nil {
		return nil, fmt.Errorf("query payments of import %d: %w", importID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan payment id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const paymentColumns = "p.id, p.account_id, p.booking_date, p.amount, p.partner_name, p.description, p.raw_line"

// PaymentsForImport returns the payments of an import run in ID order.
func (q queries) PaymentsForImport(ctx context.Context, importID int64) ([]model.Payment, error) {
	rows, err := q.query(ctx,
		"SELECT "+paymentColumns+` FROM payments p
		JOIN import_entries e ON e.payment_id = p.id
		WHERE e.import_id = ? ORDER BY p.id`, importID)
	if err != nil {
		return nil, fmt.Errorf("query payments of import %d: %w", importID, err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPayment returns a payment, or ErrNotFound.
func (q queries) GetPayment(ctx context.Context, id int64) (model.Payment, error) {
	p, err := scanPayment(q.queryRow(ctx, "SELECT "+paymentColumns+" FROM payments p WHERE p.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Payment{}, fmt.Errorf("payment %d: %w", id, ErrNotFound)
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayment(s scanner) (model.Payment, error) {
	var (
		p      model.Payment
		date   string
		amount decimal.Decimal
	)
	if err := s.Scan(&p.ID, &p.AccountID, &date, &amount, &p.PartnerName, &p.Description, &p.RawLine); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Payment{}, err
		}
		return model.Payment{}, fmt.Errorf("scan payment: %w", err)
	}
	d, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return model.Payment{}, fmt.Errorf("parsing booking date %q of payment %d: %w", date, p.ID, err)
	}
	p.BookingDate = d
	p.Amount = amount
	return p, nil
}

// TransactionsByCategory returns the transactions holding categoryID in ID
// order.
func (q queries) TransactionsByCategory(ctx context.Context, categoryID string) ([]model.Transaction, error) {
	rows, err := q.query(ctx,
		`SELECT id, payment_id, category_id, amount, valid_from, valid_to, description
		FROM transactions WHERE category_id = ? ORDER BY id`, categoryID)
	if err != nil {
		return nil, fmt.Errorf("query transactions in %s: %w", categoryID, err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// TransactionForPayment returns the transaction of a payment, or ErrNotFound.
func (q queries) TransactionForPayment(ctx context.Context, paymentID int64) (model.Transaction, error) {
	t, err := scanTransaction(q.queryRow(ctx,
		`SELECT id, payment_id, category_id, amount, valid_from, valid_to, description
		FROM transactions WHERE payment_id = ?`, paymentID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("transaction for payment %d: %w", paymentID, ErrNotFound)
	}
	return t, err
}

func scanTransaction(s scanner) (model.Transaction, error) {
	var (
		t        model.Transaction
		from, to string
	)
	if err := s.Scan(&t.ID, &t.PaymentID, &t.CategoryID, &t.Amount, &from, &to, &t.Description); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Transaction{}, err
		}
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if t.ValidFrom, err = time.Parse(model.DateFormat, from); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing valid_from %q: %w", from, err)
	}
	if t.ValidTo, err = time.Parse(model.DateFormat, to); err != nil {
		return model.Transaction{}, fmt.Errorf("parsing valid_to %q: %w", to, err)
	}
	return t, nil
}

// UpdateTransactionCategory sets the category of one transaction.
func (q queries) UpdateTransactionCategory(ctx context.Context, txnID int64, categoryID string) error {
	res, err := q.exec(ctx, "UPDATE transactions SET category_id = ? WHERE id = ?", categoryID, txnID)
	if err != nil {
		return fmt.Errorf("update category of transaction %d: %w", txnID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category of transaction %d: %w", txnID, err)
	}
	if n != 1 {
		return fmt.Errorf("transaction %d: %w", txnID, ErrNotFound)
	}
	return nil
}

// --- Deletion, children before parents ---

// DeleteImportEntries removes the link rows of an import run.
func (q queries) DeleteImportEntries(ctx context.Context, importID int64) (int64, error) {
	return q.deleteWhere(ctx, "import_entries", "import_id = ?", importID)
}

// DeleteTransactionsForPayments removes the transactions of the given payments.
func (q queries) DeleteTransactionsForPayments(ctx context.Context, paymentIDs []int64) (int64, error) {
	if len(paymentIDs) == 0 {
		return 0, nil
	}
	return q.deleteWhere(ctx, "transactions", "payment_id IN ("+placeholders(len(paymentIDs))+")", int64Args(paymentIDs)...)
}

// DeletePayments removes the given payments.
func (q queries) DeletePayments(ctx context.Context, paymentIDs []int64) (int64, error) {
	if len(paymentIDs) == 0 {
		return 0, nil
	}
	return q.deleteWhere(ctx, "payments", "id IN ("+placeholders(len(paymentIDs))+")", int64Args(paymentIDs)...)
}

// DeleteImportLog removes an import run header.
func (q queries) DeleteImportLog(ctx context.Context, importID int64) (int64, error) {
	return q.deleteWhere(ctx, "import_logs", "id = ?", importID)
}

func (q queries) deleteWhere(ctx context.Context, table, where string, args ...any) (int64, error) {
	res, err := q.exec(ctx, "DELETE FROM "+table+" WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// Counts is the number of rows in each ledger table.
type Counts struct {
	Payments      int
	Transactions  int
	ImportLogs    int
	ImportEntries int
}

// Counts returns ledger table sizes.
func (q queries) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int
	}{
		{"payments", &c.Payments},
		{"transactions", &c.Transactions},
		{"import_logs", &c.ImportLogs},
		{"import_entries", &c.ImportEntries},
	}
	for _, t := range targets {
		if err := q.queryRow(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", t.table, err)
		}
	}
	return c, nil
}
