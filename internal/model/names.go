package model

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrInvalidName   = errors.New("invalid name")
	ErrInvalidAmount = errors.New("invalid amount")
)

// Field names of the persisted document.
const (
	KeyCash            = "cash"
	KeyTotalProfit     = "totalProfit"
	KeyIngredientCosts = "ingredientCosts"
	KeyInventory       = "inventory"
	KeyDrinkImages     = "drinkImages"
	KeyMenu            = "menu"
	KeySalesHistory    = "salesHistory"
	KeyName            = "name"
	KeyPrice           = "price"
	KeyIngredients     = "ingredients"
	KeyCost            = "cost"
	KeyProfit          = "profit"
	KeyTime            = "time"
)

// documentKeys may not be used as names. A name equal to one of them would be
// found by the decoder's key search in the wrong place.
var documentKeys = map[string]struct{}{
	KeyCash:            {},
	KeyTotalProfit:     {},
	KeyIngredientCosts: {},
	KeyInventory:       {},
	KeyDrinkImages:     {},
	KeyMenu:            {},
	KeySalesHistory:    {},
	KeyName:            {},
	KeyPrice:           {},
	KeyIngredients:     {},
	KeyCost:            {},
	KeyProfit:          {},
	KeyTime:            {},
}

// nameForbidden are characters the decoder treats as structure.
const nameForbidden = "\"\\,:{}[]"

// pathForbidden are characters that would unbalance the brace and bracket
// counting of the decoder. Quotes and backslashes are escaped instead.
const pathForbidden = "{}[]"

// ValidateName reports whether name can be used as a drink or ingredient name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if strings.TrimSpace(name) != name {
		return fmt.Errorf("%w: %q has leading or trailing spaces", ErrInvalidName, name)
	}
	if i := strings.IndexAny(name, nameForbidden); i >= 0 {
		return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, name[i])
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: %q contains a control character", ErrInvalidName, name)
	}
	if _, reserved := documentKeys[name]; reserved {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidName, name)
	}
	return nil
}

// ValidatePath reports whether path can be stored as a drink image location.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("%w: path is required", ErrInvalidName)
	}
	if i := strings.IndexAny(path, pathForbidden); i >= 0 {
		return fmt.Errorf("%w: path %q contains %q", ErrInvalidName, path, path[i])
	}
	if strings.IndexFunc(path, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: path %q contains a control character", ErrInvalidName, path)
	}
	return nil
}
