package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kopolinfo/budget/internal/model"
)

// Reference file names inside a reference directory.
const (
	CurrenciesFile     = "currencies.csv"
	CategoryGroupsFile = "category_groups.csv"
	CategoriesFile     = "categories.csv"
	AccountsFile       = "accounts.csv"
)

// LoadDir reads the four reference CSV files from dir.
func LoadDir(dir string) (Data, error) {
	var d Data
	var err error

	if d.Currencies, err = readFile(dir, CurrenciesFile, 2, func(rec []string) model.Currency {
		return model.Currency{Code: rec[0], Name: rec[1]}
	}); err != nil {
		return Data{}, err
	}
	if d.CategoryGroups, err = readFile(dir, CategoryGroupsFile, 2, func(rec []string) model.CategoryGroup {
		return model.CategoryGroup{ID: rec[0], Name: rec[1]}
	}); err != nil {
		return Data{}, err
	}
	if d.Categories, err = readFile(dir, CategoriesFile, 3, func(rec []string) model.Category {
		return model.Category{ID: rec[0], Name: rec[1], GroupID: rec[2]}
	}); err != nil {
		return Data{}, err
	}
	if d.Accounts, err = readFile(dir, AccountsFile, 4, func(rec []string) model.Account {
		return model.Account{ID: rec[0], Name: rec[1], CurrencyCode: rec[2], Description: rec[3]}
	}); err != nil {
		return Data{}, err
	}
	return d, nil
}

func readFile[T any](dir, name string, fields int, unmarshal func([]string) T) ([]T, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	out, err := readRecords(f, fields, unmarshal)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return out, nil
}

// readRecords reads a headered CSV with a fixed number of fields per row.
func readRecords[T any](r io.Reader, fields int, unmarshal func([]string) T) ([]T, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = fields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) <= 1 {
		return nil, nil
	}

	out := make([]T, 0, len(records)-1)
	for i, rec := range records[1:] {
		if rec[0] == "" {
			return nil, fmt.Errorf("row %d: empty id", i+2)
		}
		out = append(out, unmarshal(rec))
	}
	return out, nil
}

// WriteDir writes d as reference CSV files into dir.
func WriteDir(dir string, d Data) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating reference dir: %w", err)
	}

	files := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{CurrenciesFile, []string{"code", "name"}, mapRows(d.Currencies, func(c model.Currency) []string {
			return []string{c.Code, c.Name}
		})},
		{CategoryGroupsFile, []string{"id", "name"}, mapRows(d.CategoryGroups, func(g model.CategoryGroup) []string {
			return []string{g.ID, g.Name}
		})},
		{CategoriesFile, []string{"id", "name", "group_id"}, mapRows(d.Categories, func(c model.Category) []string {
			return []string{c.ID, c.Name, c.GroupID}
		})},
		{AccountsFile, []string{"id", "name", "currency", "description"}, mapRows(d.Accounts, func(a model.Account) []string {
			return []string{a.ID, a.Name, a.CurrencyCode, a.Description}
		})},
	}

	for _, file := range files {
		if err := writeFile(filepath.Join(dir, file.name), file.header, file.rows); err != nil {
			return fmt.Errorf("writing %s: %w", file.name, err)
		}
	}
	return nil
}

func writeFile(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func mapRows[T any](items []T, marshal func(T) []string) [][]string {
	rows := make([][]string, len(items))
	for i, item := range items {
		rows[i] = marshal(item)
	}
	return rows
}
