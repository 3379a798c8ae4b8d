package machine

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendsim/internal/model"
)

// Availability reports whether multiplicity units of drink can be made from
// the current stock. The first short ingredient, in name order, is returned as
// a *StockError.
func (m *Machine) Availability(drink string, multiplicity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.availabilityLocked(drink, multiplicity)
}

func (m *Machine) availabilityLocked(drink string, multiplicity int) error {
	if multiplicity < 1 {
		return newError(ErrInvalidAmount, drink, "multiplicity must be >= 1 (got %d)", multiplicity)
	}
	d, ok := m.menu[drink]
	if !ok {
		return drinkNotFound(drink)
	}
	return shortage(d, m.inventory, multiplicity)
}

// Available is Availability for a single unit.
func (m *Machine) Available(drink string) bool {
	return m.Availability(drink, 1) == nil
}

// shortage compares by division so that qty × multiplicity never has to be
// computed when it would overflow. Required saturates at math.MaxInt.
func shortage(d model.Drink, stock map[string]int, multiplicity int) error {
	for _, ing := range d.Ingredients() {
		qty := d.Requires(ing)
		have := stock[ing]
		if have >= 0 && have/qty >= multiplicity {
			continue
		}
		need := math.MaxInt
		if multiplicity <= math.MaxInt/qty {
			need = qty * multiplicity
		}
		return &StockError{Drink: d.Name(), Ingredient: ing, Required: need, OnHand: have}
	}
	return nil
}

// CheckBatch tells whether the drinks in names can all be made one after the
// other. It works on a copy of the inventory; the machine is not changed.
func (m *Machine) CheckBatch(names []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.checkBatchLocked(names)
}

func (m *Machine) checkBatchLocked(names []string) error {
	stock := make(map[string]int, len(m.inventory))
	for k, v := range m.inventory {
		stock[k] = v
	}
	for _, name := range names {
		d, ok := m.menu[name]
		if !ok {
			return drinkNotFound(name)
		}
		if err := shortage(d, stock, 1); err != nil {
			return err
		}
		for _, ing := range d.Ingredients() {
			stock[ing] -= d.Requires(ing)
		}
	}
	return nil
}

// Cost is the exact ingredient cost of one unit of drink. Ingredients without
// a unit cost count as free.
func (m *Machine) Cost(drink string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.menu[drink]
	if !ok {
		return decimal.Zero, drinkNotFound(drink)
	}
	return d.Cost(m.costs), nil
}

// FulfillOne sells one unit of drink: stock is consumed, the price goes to the
// cash box, and the sale is journaled. A rejected sale changes nothing.
func (m *Machine) FulfillOne(drink string) (model.SaleRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fulfillLocked(drink)
}

func (m *Machine) fulfillLocked(drink string) (model.SaleRecord, error) {
	if err := m.availabilityLocked(drink, 1); err != nil {
		return model.SaleRecord{}, err
	}
	d := m.menu[drink]
	rec := model.NewSaleRecord(d.Name(), d.Price(), d.Cost(m.costs), m.now())
	for _, ing := range d.Ingredients() {
		m.inventory[ing] -= d.Requires(ing)
	}
	m.cash = m.cash.Add(rec.Price)
	m.profit = m.profit.Add(rec.Profit)
	m.sales.Append(rec)
	m.log.Info("drink sold", zap.String("drink", rec.Drink),
		zap.String("price", model.FormatCurrency(rec.Price)),
		zap.String("profit", model.FormatCurrency(rec.Profit)))
	return rec, m.persistLocked("fulfill")
}
