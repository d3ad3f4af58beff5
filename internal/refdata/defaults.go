package refdata

import "github.com/kopolinfo/budget/internal/model"

// Default returns the reference data seeded by "budget init" when no
// reference directory is given.
func Default() Data {
	return Data{
		Currencies: []model.Currency{
			{Code: "CHF", Name: "Swiss Franc"},
			{Code: "EUR", Name: "Euro"},
		},
		CategoryGroups: []model.CategoryGroup{
			{ID: "SYSTEM", Name: "System"},
			{ID: "LIVING", Name: "Living"},
			{ID: "MOBILITY", Name: "Mobility"},
			{ID: "INCOME", Name: "Income"},
		},
		Categories: []model.Category{
			{ID: model.UnassignedCategory, Name: "Not assigned", GroupID: "SYSTEM"},
			{ID: "MIGROSKREUZ", Name: "Migros Kreuzplatz", GroupID: "LIVING"},
			{ID: "GROCERIES", Name: "Groceries", GroupID: "LIVING"},
			{ID: "RENT", Name: "Rent", GroupID: "LIVING"},
			{ID: "PUBLICTRANSPORT", Name: "Public transport", GroupID: "MOBILITY"},
			{ID: "SALARY", Name: "Salary", GroupID: "INCOME"},
		},
		Accounts: []model.Account{
			{ID: "RAIFFEISEN_PRIVAT", Name: "Raiffeisen Privatkonto", CurrencyCode: "CHF", Description: "Private current account"},
			{ID: "RAIFFEISEN_SPAR", Name: "Raiffeisen Sparkonto", CurrencyCode: "CHF", Description: "Savings account"},
			{ID: "CEMBRA", Name: "Cembra Credit Card", CurrencyCode: "CHF", Description: "Credit card"},
		},
	}
}
