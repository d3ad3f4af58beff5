// Package refdata holds the read-only reference data (accounts, categories,
// category groups, currencies) every ledger operation looks things up in.
package refdata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kopolinfo/budget/internal/model"
)

// Data is the raw reference data as stored or seeded.
type Data struct {
	Currencies     []model.Currency
	CategoryGroups []model.CategoryGroup
	Categories     []model.Category
	Accounts       []model.Account
}

// Snapshot is an immutable, indexed view of reference data. It is built once
// per process and shared by pointer.
type Snapshot struct {
	accounts   map[string]model.Account
	categories map[string]model.Category
	groups     map[string]model.CategoryGroup
	currencies map[string]model.Currency
}

// ErrNoUnassigned is returned when the reference data lacks the sentinel
// category.
var ErrNoUnassigned = errors.New("reference data has no " + model.UnassignedCategory + " category")

// NewSnapshot indexes d. The sentinel category must be present and every
// category group and account currency must resolve.
func NewSnapshot(d Data) (*Snapshot, error) {
	s := &Snapshot{
		accounts:   make(map[string]model.Account, len(d.Accounts)),
		categories: make(map[string]model.Category, len(d.Categories)),
		groups:     make(map[string]model.CategoryGroup, len(d.CategoryGroups)),
		currencies: make(map[string]model.Currency, len(d.Currencies)),
	}
	for _, c := range d.Currencies {
		s.currencies[c.Code] = c
	}
	for _, g := range d.CategoryGroups {
		s.groups[g.ID] = g
	}
	for _, c := range d.Categories {
		if c.GroupID != "" {
			if _, ok := s.groups[c.GroupID]; !ok {
				return nil, fmt.Errorf("category %s: unknown group %s", c.ID, c.GroupID)
			}
		}
		s.categories[c.ID] = c
	}
	for _, a := range d.Accounts {
		if _, ok := s.currencies[a.CurrencyCode]; !ok {
			return nil, fmt.Errorf("account %s: unknown currency %s", a.ID, a.CurrencyCode)
		}
		s.accounts[a.ID] = a
	}
	if _, ok := s.categories[model.UnassignedCategory]; !ok {
		return nil, ErrNoUnassigned
	}
	return s, nil
}

// Account returns an account by ID.
func (s *Snapshot) Account(id string) (model.Account, bool) {
	a, ok := s.accounts[id]
	return a, ok
}

// Category returns a category by ID.
func (s *Snapshot) Category(id string) (model.Category, bool) {
	c, ok := s.categories[id]
	return c, ok
}

// HasCategory reports whether a category ID exists.
func (s *Snapshot) HasCategory(id string) bool {
	_, ok := s.categories[id]
	return ok
}

// Group returns a category group by ID.
func (s *Snapshot) Group(id string) (model.CategoryGroup, bool) {
	g, ok := s.groups[id]
	return g, ok
}

// Currency returns a currency by code.
func (s *Snapshot) Currency(code string) (model.Currency, bool) {
	c, ok := s.currencies[code]
	return c, ok
}

// Unassigned returns the sentinel category.
func (s *Snapshot) Unassigned() model.Category {
	return s.categories[model.UnassignedCategory]
}

// Accounts returns all accounts sorted by ID.
func (s *Snapshot) Accounts() []model.Account {
	out := make([]model.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CategoriesInGroup returns the categories of a group sorted by ID.
func (s *Snapshot) CategoriesInGroup(groupID string) []model.Category {
	var out []model.Category
	for _, c := range s.categories {
		if c.GroupID == groupID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
