package machine

import (
	"github.com/shopspring/decimal"

	"vendsim/internal/model"
)

const (
	Water       = "Water (ml)"
	Milk        = "Milk (ml)"
	CoffeeBeans = "Coffee beans (g)"
	Sugar       = "Sugar (g)"
	Tea         = "Tea (bag)"
	Cocoa       = "Cocoa (g)"
)

type defaultIngredient struct {
	name     string
	quantity int
	unitCost string
}

var defaultIngredients = []defaultIngredient{
	{Water, 5000, "0.0001"},
	{Milk, 2000, "0.0030"},
	{CoffeeBeans, 1000, "0.0500"},
	{Sugar, 500, "0.0020"},
	{Tea, 50, "0.1500"},
	{Cocoa, 300, "0.0300"},
}

type defaultDrink struct {
	name   string
	price  string
	recipe model.Recipe
}

var defaultDrinks = []defaultDrink{
	{"Espresso", "1.80", model.Recipe{Water: 50, CoffeeBeans: 10}},
	{"Latte", "3.50", model.Recipe{Water: 30, CoffeeBeans: 10, Milk: 150}},
	{"Cappuccino", "3.20", model.Recipe{Water: 50, CoffeeBeans: 12, Milk: 100}},
	{"Americano", "2.50", model.Recipe{Water: 200, CoffeeBeans: 18}},
	{"Hot Chocolate", "4.00", model.Recipe{Milk: 250, Cocoa: 30, Sugar: 10}},
	{"Frappe", "3.80", model.Recipe{Water: 50, CoffeeBeans: 15, Milk: 50, Sugar: 5}},
	{"Lemon Tea", "1.50", model.Recipe{Water: 300, Tea: 1, Sugar: 5}},
	{"Double Espresso", "2.80", model.Recipe{Water: 80, CoffeeBeans: 20}},
}

// Defaults is the state of a freshly installed machine: six stocked
// ingredients, eight drinks, no cash and no sales.
func Defaults() model.Snapshot {
	s := model.NewSnapshot()
	for _, ing := range defaultIngredients {
		s.Inventory[ing.name] = ing.quantity
		s.IngredientCosts[ing.name] = decimal.RequireFromString(ing.unitCost)
	}
	for _, d := range defaultDrinks {
		drink, err := model.NewDrink(d.name, decimal.RequireFromString(d.price), d.recipe)
		if err != nil {
			panic("machine: bad default drink " + d.name + ": " + err.Error())
		}
		s.Menu = append(s.Menu, drink)
	}
	return s
}
