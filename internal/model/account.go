package model

// Account is a bank account the ledger imports statements for.
type Account struct {
	ID           string
	Name         string
	CurrencyCode string
	Description  string
}

// CategoryGroup groups related spending categories.
type CategoryGroup struct {
	ID   string
	Name string
}

// Category is a spending category a transaction can be assigned to.
type Category struct {
	ID      string
	Name    string
	GroupID string // "" = ungrouped
}

// Currency is an ISO 4217 currency.
type Currency struct {
	Code string
	Name string
}
