package machine

import (
	"errors"
	"fmt"

	"vendsim/internal/model"
)

var (
	ErrDuplicateDrink    = errors.New("drink already exists")
	ErrDrinkNotFound     = errors.New("drink not found")
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPersistWrite      = errors.New("state could not be saved")

	ErrInvalidAmount = model.ErrInvalidAmount
	ErrInvalidName   = model.ErrInvalidName
)

// Error is a rejected command. Kind is one of the sentinels above.
type Error struct {
	Kind    error
	Subject string
	Msg     string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Subject == "" && e.Msg == "":
		return fmt.Sprint(e.Kind)
	case e.Subject == "":
		return fmt.Sprintf("%v: %s", e.Kind, e.Msg)
	case e.Msg == "":
		return fmt.Sprintf("%v: %q", e.Kind, e.Subject)
	}
	return fmt.Sprintf("%v: %q: %s", e.Kind, e.Subject, e.Msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

func newError(kind error, subject, format string, args ...any) error {
	return &Error{Kind: kind, Subject: subject, Msg: fmt.Sprintf(format, args...)}
}

func drinkNotFound(name string) error {
	return &Error{Kind: ErrDrinkNotFound, Subject: name}
}

// StockError names the first ingredient that is short for a request.
type StockError struct {
	Drink      string
	Ingredient string
	Required   int
	OnHand     int
}

func (e *StockError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v: %q needs %d of %q, %d on hand",
		ErrInsufficientStock, e.Drink, e.Required, e.Ingredient, e.OnHand)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// PersistError reports that a mutation was applied in memory but the new state
// could not be written.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%v after %s: %v", ErrPersistWrite, e.Op, e.Err)
}

func (e *PersistError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPersistWrite}
	}
	return []error{ErrPersistWrite, e.Err}
}
