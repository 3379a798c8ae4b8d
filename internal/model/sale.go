package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SaleRecord is one completed sale. Values are fixed when the sale is made and
// never recomputed.
type SaleRecord struct {
	Drink  string
	Price  decimal.Decimal
	Cost   decimal.Decimal
	Profit decimal.Decimal
	Time   time.Time
}

// NewSaleRecord records a sale of drink at price with the given exact cost.
// Cost is rounded to cents first and profit is derived from the rounded cost,
// so price = cost + profit holds exactly for the stored values.
func NewSaleRecord(drink string, price, cost decimal.Decimal, at time.Time) SaleRecord {
	price = RoundCurrency(price)
	cost = RoundCurrency(cost)
	return SaleRecord{
		Drink:  drink,
		Price:  price,
		Cost:   cost,
		Profit: price.Sub(cost),
		Time:   SaleTime(at),
	}
}

// Equal compares every field; times are compared as instants.
func (r SaleRecord) Equal(o SaleRecord) bool {
	return r.Drink == o.Drink &&
		r.Price.Equal(o.Price) &&
		r.Cost.Equal(o.Cost) &&
		r.Profit.Equal(o.Profit) &&
		r.Time.Equal(o.Time)
}

func (r SaleRecord) String() string {
	return fmt.Sprintf("[%s] %s (price %s, profit %s)",
		r.Time.Format(TimeLayout), r.Drink, FormatCurrency(r.Price), FormatCurrency(r.Profit))
}
