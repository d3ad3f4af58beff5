package store

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS category_groups (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		group_id TEXT REFERENCES category_groups(id)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		currency_code TEXT NOT NULL REFERENCES currencies(code),
		description   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id   TEXT NOT NULL REFERENCES accounts(id),
		booking_date TEXT NOT NULL,
		amount       TEXT NOT NULL,
		partner_name TEXT NOT NULL,
		description  TEXT NOT NULL,
		raw_line     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS payments_account_date ON payments (account_id, booking_date)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		payment_id  INTEGER NOT NULL UNIQUE REFERENCES payments(id),
		category_id TEXT NOT NULL REFERENCES categories(id),
		amount      TEXT NOT NULL,
		valid_from  TEXT NOT NULL,
		valid_to    TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_category ON transactions (category_id)`,
	`CREATE TABLE IF NOT EXISTS import_logs (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id  TEXT NOT NULL REFERENCES accounts(id),
		imported_at TEXT NOT NULL,
		file_name   TEXT NOT NULL
	)`,
	// Link rows are removed explicitly before their parents; no cascade.
	`CREATE TABLE IF NOT EXISTS import_entries (
		import_id  INTEGER NOT NULL REFERENCES import_logs(id),
		payment_id INTEGER NOT NULL UNIQUE REFERENCES payments(id),
		PRIMARY KEY (import_id, payment_id)
	)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		code TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS category_groups (
		id   TEXT PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		group_id TEXT REFERENCES category_groups(id)
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		currency_code TEXT NOT NULL REFERENCES currencies(code),
		description   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id           BIGSERIAL PRIMARY KEY,
		account_id   TEXT NOT NULL REFERENCES accounts(id),
		booking_date TEXT NOT NULL,
		amount       NUMERIC(14,2) NOT NULL,
		partner_name TEXT NOT NULL,
		description  TEXT NOT NULL,
		raw_line     TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS payments_account_date ON payments (account_id, booking_date)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id          BIGSERIAL PRIMARY KEY,
		payment_id  BIGINT NOT NULL UNIQUE REFERENCES payments(id),
		category_id TEXT NOT NULL REFERENCES categories(id),
		amount      NUMERIC(14,2) NOT NULL,
		valid_from  TEXT NOT NULL,
		valid_to    TEXT NOT NULL,
		description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_category ON transactions (category_id)`,
	`CREATE TABLE IF NOT EXISTS import_logs (
		id          BIGSERIAL PRIMARY KEY,
		account_id  TEXT NOT NULL REFERENCES accounts(id),
		imported_at TEXT NOT NULL,
		file_name   TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS import_entries (
		import_id  BIGINT NOT NULL REFERENCES import_logs(id),
		payment_id BIGINT NOT NULL UNIQUE REFERENCES payments(id),
		PRIMARY KEY (import_id, payment_id)
	)`,
}
