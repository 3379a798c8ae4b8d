package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Snapshot is a detached copy of the whole machine state, in the shape the
// codec reads and writes.
type Snapshot struct {
	Cash            decimal.Decimal
	TotalProfit     decimal.Decimal
	IngredientCosts map[string]decimal.Decimal
	Inventory       map[string]int
	DrinkImages     map[string]string
	Menu            []Drink
	Sales           []SaleRecord
}

// NewSnapshot returns an empty snapshot with non-nil maps.
func NewSnapshot() Snapshot {
	return Snapshot{
		IngredientCosts: map[string]decimal.Decimal{},
		Inventory:       map[string]int{},
		DrinkImages:     map[string]string{},
	}
}

// Validate checks the invariants a loaded state must satisfy before a machine
// may adopt it.
func (s Snapshot) Validate() error {
	var errs []error
	if s.Cash.IsNegative() {
		errs = append(errs, fmt.Errorf("cash must be >= 0 (got %s)", s.Cash))
	}
	for _, name := range SortedKeys(s.Inventory) {
		if s.Inventory[name] < 0 {
			errs = append(errs, fmt.Errorf("inventory[%q] must be >= 0 (got %d)", name, s.Inventory[name]))
		}
	}
	for _, name := range SortedKeys(s.IngredientCosts) {
		if s.IngredientCosts[name].IsNegative() {
			errs = append(errs, fmt.Errorf("ingredientCosts[%q] must be >= 0 (got %s)", name, s.IngredientCosts[name]))
		}
	}
	for i, d := range s.Menu {
		if d.Name() == "" {
			errs = append(errs, fmt.Errorf("menu[%d].name is required", i))
		}
	}
	for i, r := range s.Sales {
		if r.Drink == "" {
			errs = append(errs, fmt.Errorf("salesHistory[%d].name is required", i))
		}
	}
	return errors.Join(errs...)
}

// Clone returns a deep copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Cash:            s.Cash,
		TotalProfit:     s.TotalProfit,
		IngredientCosts: make(map[string]decimal.Decimal, len(s.IngredientCosts)),
		Inventory:       make(map[string]int, len(s.Inventory)),
		DrinkImages:     make(map[string]string, len(s.DrinkImages)),
		Menu:            make([]Drink, len(s.Menu)),
		Sales:           make([]SaleRecord, len(s.Sales)),
	}
	for k, v := range s.IngredientCosts {
		out.IngredientCosts[k] = v
	}
	for k, v := range s.Inventory {
		out.Inventory[k] = v
	}
	for k, v := range s.DrinkImages {
		out.DrinkImages[k] = v
	}
	copy(out.Menu, s.Menu)
	copy(out.Sales, s.Sales)
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
