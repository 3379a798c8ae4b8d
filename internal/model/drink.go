package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Recipe maps an ingredient name to the quantity needed for one unit of a drink.
type Recipe map[string]int

// Clone returns an independent copy. A nil recipe clones to an empty one.
func (r Recipe) Clone() Recipe {
	out := make(Recipe, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Ingredients returns the ingredient names in lexical order.
func (r Recipe) Ingredients() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every entry has a name and a positive quantity.
func (r Recipe) Validate() error {
	var errs []error
	for _, name := range r.Ingredients() {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("%w: recipe ingredient name is required", ErrInvalidName))
			continue
		}
		if r[name] <= 0 {
			errs = append(errs, fmt.Errorf("%w: recipe quantity for %q must be > 0 (got %d)", ErrInvalidAmount, name, r[name]))
		}
	}
	return errors.Join(errs...)
}

// Drink is a catalog entry. It is immutable once constructed; accessors hand
// out copies.
type Drink struct {
	name   string
	price  decimal.Decimal
	recipe Recipe
}

// NewDrink builds a drink with its price rounded to cents.
func NewDrink(name string, price decimal.Decimal, recipe Recipe) (Drink, error) {
	var errs []error
	if strings.TrimSpace(name) == "" {
		errs = append(errs, fmt.Errorf("%w: drink name is required", ErrInvalidName))
	}
	if price.IsNegative() {
		errs = append(errs, fmt.Errorf("%w: price must be >= 0 (got %s)", ErrInvalidAmount, price))
	}
	if err := recipe.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return Drink{}, err
	}
	return Drink{name: name, price: RoundCurrency(price), recipe: recipe.Clone()}, nil
}

func (d Drink) Name() string                   { return d.name }
func (d Drink) Price() decimal.Decimal         { return d.price }
func (d Drink) Recipe() Recipe                 { return d.recipe.Clone() }
func (d Drink) Requires(ingredient string) int { return d.recipe[ingredient] }

// Ingredients returns the recipe's ingredient names in lexical order.
func (d Drink) Ingredients() []string { return d.recipe.Ingredients() }

// Cost is Σ required quantity × unit cost, with unknown costs counted as zero.
// The result is exact; rounding happens when a sale is recorded.
func (d Drink) Cost(unitCosts map[string]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for name, qty := range d.recipe {
		unit, ok := unitCosts[name]
		if !ok {
			continue
		}
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// Equal reports whether two drinks have the same name, price and recipe.
func (d Drink) Equal(o Drink) bool {
	if d.name != o.name || !d.price.Equal(o.price) || len(d.recipe) != len(o.recipe) {
		return false
	}
	for k, v := range d.recipe {
		if ov, ok := o.recipe[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

func (d Drink) String() string {
	return fmt.Sprintf("%s (%s)", d.name, FormatCurrency(d.price))
}
