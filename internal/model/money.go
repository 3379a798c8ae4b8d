package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// CurrencyPlaces is the precision of prices, cash, sale costs and profit.
	CurrencyPlaces = 2
	// UnitCostPlaces is the precision of a single ingredient unit cost.
	UnitCostPlaces = 4
)

// TimeLayout is the rendering of a sale timestamp (second precision, no zone).
const TimeLayout = "2006-01-02 15:04:05"

// RoundCurrency rounds half away from zero to whole cents.
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}

// RoundUnitCost rounds half away from zero to the unit-cost precision.
func RoundUnitCost(d decimal.Decimal) decimal.Decimal {
	return d.Round(UnitCostPlaces)
}

// FormatCurrency renders d with exactly two fractional digits and '.' as the
// separator.
func FormatCurrency(d decimal.Decimal) string {
	return d.StringFixed(CurrencyPlaces)
}

// FormatUnitCost renders d with exactly four fractional digits.
func FormatUnitCost(d decimal.Decimal) string {
	return d.StringFixed(UnitCostPlaces)
}

// SaleTime normalizes t to what a sale record can hold: whole seconds in the
// local zone, without a monotonic clock reading.
func SaleTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return t.Truncate(time.Second).Local().Round(0)
}
