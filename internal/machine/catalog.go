package machine

import (
	"math"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendsim/internal/model"
)

// AddDrink admits a new drink. Every recipe ingredient must have a unit cost;
// ingredients not yet stocked are registered with quantity zero.
func (m *Machine) AddDrink(name string, price decimal.Decimal, recipe model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, err := m.admitLocked(name, price, recipe, "")
	if err != nil {
		return err
	}
	m.insertLocked(d)
	m.log.Info("drink added", zap.String("drink", name), zap.String("price", model.FormatCurrency(d.Price())))
	return m.persistLocked("add drink")
}

// UpdateDrink replaces oldName with a drink built from name, price and recipe
// in one step. A rename carries the image along.
func (m *Machine) UpdateDrink(oldName, name string, price decimal.Decimal, recipe model.Recipe) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.menu[oldName]; !ok {
		return drinkNotFound(oldName)
	}
	d, err := m.admitLocked(name, price, recipe, oldName)
	if err != nil {
		return err
	}
	if name != oldName {
		delete(m.menu, oldName)
		if path, ok := m.images[oldName]; ok {
			delete(m.images, oldName)
			m.images[name] = path
		}
	}
	m.insertLocked(d)
	m.log.Info("drink updated", zap.String("from", oldName), zap.String("drink", name),
		zap.String("price", model.FormatCurrency(d.Price())))
	return m.persistLocked("update drink")
}

func (m *Machine) DeleteDrink(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.menu[name]; !ok {
		return drinkNotFound(name)
	}
	delete(m.menu, name)
	delete(m.images, name)
	m.log.Info("drink deleted", zap.String("drink", name))
	return m.persistLocked("delete drink")
}

func (m *Machine) HasDrink(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.menu[name]
	return ok
}

// admitLocked validates a drink definition against the catalog and the
// current costs. replacing names the drink being edited, which may keep its
// name; it is empty for a new drink.
func (m *Machine) admitLocked(name string, price decimal.Decimal, recipe model.Recipe, replacing string) (model.Drink, error) {
	if err := model.ValidateName(name); err != nil {
		return model.Drink{}, err
	}
	if _, exists := m.menu[name]; exists && name != replacing {
		return model.Drink{}, &Error{Kind: ErrDuplicateDrink, Subject: name}
	}
	if price.IsNegative() {
		return model.Drink{}, newError(ErrInvalidAmount, name, "price must be >= 0 (got %s)", price)
	}
	if len(recipe) == 0 {
		return model.Drink{}, newError(ErrInvalidAmount, name, "recipe must not be empty")
	}
	for _, ing := range recipe.Ingredients() {
		if err := model.ValidateName(ing); err != nil {
			return model.Drink{}, err
		}
	}
	d, err := model.NewDrink(name, price, recipe)
	if err != nil {
		return model.Drink{}, err
	}
	for _, ing := range d.Ingredients() {
		if _, ok := m.costs[ing]; !ok {
			return model.Drink{}, newError(ErrUnknownIngredient, ing, "no unit cost registered (needed by %q)", name)
		}
	}
	return d, nil
}

func (m *Machine) insertLocked(d model.Drink) {
	for _, ing := range d.Ingredients() {
		if _, ok := m.inventory[ing]; !ok {
			m.inventory[ing] = 0
		}
	}
	m.menu[d.Name()] = d
}

// Refill adds amount to an ingredient that has a unit cost.
func (m *Machine) Refill(ingredient string, amount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if amount <= 0 {
		return newError(ErrInvalidAmount, ingredient, "refill amount must be > 0 (got %d)", amount)
	}
	if _, ok := m.costs[ingredient]; !ok {
		return newError(ErrUnknownIngredient, ingredient, "no unit cost registered")
	}
	onHand := m.inventory[ingredient]
	if onHand > math.MaxInt-amount {
		return newError(ErrInvalidAmount, ingredient, "refill of %d would overflow %d on hand", amount, onHand)
	}
	m.inventory[ingredient] = onHand + amount
	m.log.Info("ingredient refilled", zap.String("ingredient", ingredient),
		zap.Int("amount", amount), zap.Int("on_hand", onHand+amount))
	return m.persistLocked("refill")
}

// SetIngredientCost registers or changes the unit cost of an ingredient. The
// cost is kept to four decimal places. Past sales keep the cost they were
// recorded with.
func (m *Machine) SetIngredientCost(ingredient string, unitCost decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := model.ValidateName(ingredient); err != nil {
		return err
	}
	if unitCost.IsNegative() {
		return newError(ErrInvalidAmount, ingredient, "unit cost must be >= 0 (got %s)", unitCost)
	}
	m.costs[ingredient] = model.RoundUnitCost(unitCost)
	if _, ok := m.inventory[ingredient]; !ok {
		m.inventory[ingredient] = 0
	}
	m.log.Info("unit cost set", zap.String("ingredient", ingredient),
		zap.String("unit_cost", model.FormatUnitCost(m.costs[ingredient])))
	return m.persistLocked("set ingredient cost")
}
