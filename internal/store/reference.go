package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kopolinfo/budget/internal/model"
	"github.com/kopolinfo/budget/internal/refdata"
)

// SeedReference inserts reference rows that do not exist yet. Existing rows
// are left untouched.
func (q queries) SeedReference(ctx context.Context, d refdata.Data) error {
	for _, c := range d.Currencies {
		if _, err := q.exec(ctx,
			"INSERT INTO currencies (code, name) VALUES (?, ?) ON CONFLICT (code) DO NOTHING",
			c.Code, c.Name); err != nil {
			return fmt.Errorf("seed currency %s: %w", c.Code, err)
		}
	}
	for _, g := range d.CategoryGroups {
		if _, err := q.exec(ctx,
			"INSERT INTO category_groups (id, name) VALUES (?, ?) ON CONFLICT (id) DO NOTHING",
			g.ID, g.Name); err != nil {
			return fmt.Errorf("seed category group %s: %w", g.ID, err)
		}
	}
	for _, c := range d.Categories {
		if _, err := q.exec(ctx,
			"INSERT INTO categories (id, name, group_id) VALUES (?, ?, ?) ON CONFLICT (id) DO NOTHING",
			c.ID, c.Name, nullString(c.GroupID)); err != nil {
			return fmt.Errorf("seed category %s: %w", c.ID, err)
		}
	}
	for _, a := range d.Accounts {
		if _, err := q.exec(ctx,
			"INSERT INTO accounts (id, name, currency_code, description) VALUES (?, ?, ?, ?) ON CONFLICT (id) DO NOTHING",
			a.ID, a.Name, a.CurrencyCode, a.Description); err != nil {
			return fmt.Errorf("seed account %s: %w", a.ID, err)
		}
	}
	return nil
}

// LoadReference reads all reference tables.
func (q queries) LoadReference(ctx context.Context) (refdata.Data, error) {
	var d refdata.Data
	var err error

	d.Currencies, err = queryAll(ctx, q, "SELECT code, name FROM currencies ORDER BY code",
		func(s scanner) (model.Currency, error) {
			var c model.Currency
			err := s.Scan(&c.Code, &c.Name)
			return c, err
		})
	if err != nil {
		return refdata.Data{}, fmt.Errorf("load currencies: %w", err)
	}

	d.CategoryGroups, err = queryAll(ctx, q, "SELECT id, name FROM category_groups ORDER BY id",
		func(s scanner) (model.CategoryGroup, error) {
			var g model.CategoryGroup
			err := s.Scan(&g.ID, &g.Name)
			return g, err
		})
	if err != nil {
		return refdata.Data{}, fmt.Errorf("load category groups: %w", err)
	}

	d.Categories, err = queryAll(ctx, q, "SELECT id, name, group_id FROM categories ORDER BY id",
		func(s scanner) (model.Category, error) {
			var (
				c     model.Category
				group sql.NullString
			)
			err := s.Scan(&c.ID, &c.Name, &group)
			c.GroupID = group.String
			return c, err
		})
	if err != nil {
		return refdata.Data{}, fmt.Errorf("load categories: %w", err)
	}

	d.Accounts, err = queryAll(ctx, q, "SELECT id, name, currency_code, description FROM accounts ORDER BY id",
		func(s scanner) (model.Account, error) {
			var a model.Account
			err := s.Scan(&a.ID, &a.Name, &a.CurrencyCode, &a.Description)
			return a, err
		})
	if err != nil {
		return refdata.Data{}, fmt.Errorf("load accounts: %w", err)
	}

	return d, nil
}

func queryAll[T any](ctx context.Context, q queries, query string, scan func(scanner) (T, error)) ([]T, error) {
	rows, err := q.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
