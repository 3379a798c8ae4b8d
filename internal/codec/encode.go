package codec

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"vendsim/internal/model"
)

const (
	keyCash            = model.KeyCash
	keyTotalProfit     = model.KeyTotalProfit
	keyIngredientCosts = model.KeyIngredientCosts
	keyInventory       = model.KeyInventory
	keyDrinkImages     = model.KeyDrinkImages
	keyMenu            = model.KeyMenu
	keySalesHistory    = model.KeySalesHistory
	keyName            = model.KeyName
	keyPrice           = model.KeyPrice
	keyIngredients     = model.KeyIngredients
	keyCost            = model.KeyCost
	keyProfit          = model.KeyProfit
	keyTime            = model.KeyTime
)

// Encode renders s as a single-line document. Map entries and menu drinks are
// written in name order, sales in their recorded order.
func Encode(s model.Snapshot) []byte {
	var w writer
	w.WriteByte('{')

	w.key(keyCash)
	w.WriteString(model.FormatCurrency(s.Cash))
	w.WriteByte(',')
	w.key(keyTotalProfit)
	w.WriteString(model.FormatCurrency(s.TotalProfit))
	w.WriteByte(',')

	w.key(keyIngredientCosts)
	w.WriteByte('{')
	for i, name := range model.SortedKeys(s.IngredientCosts) {
		w.sep(i)
		w.key(name)
		w.WriteString(model.FormatUnitCost(s.IngredientCosts[name]))
	}
	w.WriteString("},")

	w.key(keyInventory)
	w.intMap(s.Inventory)
	w.WriteByte(',')

	w.key(keyDrinkImages)
	w.WriteByte('{')
	for i, name := range model.SortedKeys(s.DrinkImages) {
		w.sep(i)
		w.quoted(escape(name))
		w.WriteByte(':')
		w.quoted(escape(s.DrinkImages[name]))
	}
	w.WriteString("},")

	menu := make([]model.Drink, len(s.Menu))
	copy(menu, s.Menu)
	sort.SliceStable(menu, func(i, j int) bool { return menu[i].Name() < menu[j].Name() })

	w.key(keyMenu)
	w.WriteByte('[')
	for i, d := range menu {
		w.sep(i)
		w.WriteByte('{')
		w.stringField(keyName, d.Name())
		w.WriteByte(',')
		w.currencyField(keyPrice, d.Price())
		w.WriteByte(',')
		w.key(keyIngredients)
		w.intMap(d.Recipe())
		w.WriteByte('}')
	}
	w.WriteString("],")

	w.key(keySalesHistory)
	w.WriteByte('[')
	for i, r := range s.Sales {
		w.sep(i)
		w.WriteByte('{')
		w.stringField(keyName, r.Drink)
		w.WriteByte(',')
		w.currencyField(keyPrice, r.Price)
		w.WriteByte(',')
		w.currencyField(keyCost, r.Cost)
		w.WriteByte(',')
		w.currencyField(keyProfit, r.Profit)
		w.WriteByte(',')
		ts := ""
		if !r.Time.IsZero() {
			ts = r.Time.Format(model.TimeLayout)
		}
		w.stringField(keyTime, ts)
		w.WriteByte('}')
	}
	w.WriteByte(']')

	w.WriteByte('}')
	return []byte(w.String())
}

type writer struct {
	strings.Builder
}

func (w *writer) sep(i int) {
	if i > 0 {
		w.WriteByte(',')
	}
}

func (w *writer) quoted(s string) {
	w.WriteByte('"')
	w.WriteString(s)
	w.WriteByte('"')
}

func (w *writer) key(k string) {
	w.quoted(k)
	w.WriteByte(':')
}

func (w *writer) stringField(k, v string) {
	w.key(k)
	w.quoted(v)
}

func (w *writer) currencyField(k string, v decimal.Decimal) {
	w.key(k)
	w.WriteString(model.FormatCurrency(v))
}

func (w *writer) intMap(m map[string]int) {
	w.WriteByte('{')
	for i, name := range model.SortedKeys(m) {
		w.sep(i)
		w.key(name)
		w.WriteString(strconv.Itoa(m[name]))
	}
	w.WriteByte('}')
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escape(s string) string { return escaper.Replace(s) }
