package machine

import (
	"sort"

	"github.com/shopspring/decimal"

	"vendsim/internal/journal"
	"vendsim/internal/model"
)

type MenuItem struct {
	Name    string
	Price   decimal.Decimal
	Cost    decimal.Decimal
	Recipe  model.Recipe
	CanMake bool
	Image   string
}

type InventoryItem struct {
	Name     string
	Quantity int
	UnitCost decimal.Decimal
}

// Menu lists the catalog in name order.
func (m *Machine) Menu() []MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MenuItem, 0, len(m.menu))
	for _, name := range model.SortedKeys(m.menu) {
		d := m.menu[name]
		out = append(out, MenuItem{
			Name:    name,
			Price:   d.Price(),
			Cost:    d.Cost(m.costs),
			Recipe:  d.Recipe(),
			CanMake: shortage(d, m.inventory, 1) == nil,
			Image:   m.images[name],
		})
	}
	return out
}

// Inventory lists every known ingredient in name order, including those that
// only have a unit cost.
func (m *Machine) Inventory() []InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inventoryLocked()
}

func (m *Machine) inventoryLocked() []InventoryItem {
	names := model.SortedKeys(m.inventory)
	for _, name := range model.SortedKeys(m.costs) {
		if _, ok := m.inventory[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]InventoryItem, 0, len(names))
	for _, name := range names {
		out = append(out, InventoryItem{Name: name, Quantity: m.inventory[name], UnitCost: m.costs[name]})
	}
	return out
}

// LowStock lists ingredients with fewer than threshold units on hand.
func (m *Machine) LowStock(threshold int) []InventoryItem {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []InventoryItem
	for _, item := range m.inventoryLocked() {
		if item.Quantity < threshold {
			out = append(out, item)
		}
	}
	return out
}

type Report struct {
	Cash        decimal.Decimal
	TotalProfit decimal.Decimal
	Revenue     decimal.Decimal
	SalesCount  int
	TopSellers  []journal.Seller
	Recent      []model.SaleRecord
}

// Report summarizes the ledger with the top sellers and the most recent sales.
func (m *Machine) Report(top, recent int) Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	r := Report{
		Cash:        m.cash,
		TotalProfit: m.profit,
		Revenue:     decimal.Zero,
		SalesCount:  m.sales.Len(),
		TopSellers:  m.sales.TopSold(top),
		Recent:      m.sales.Recent(recent),
	}
	for _, s := range m.sales.Snapshot() {
		r.Revenue = r.Revenue.Add(s.Price)
	}
	return r
}
