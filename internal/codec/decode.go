package codec

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"vendsim/internal/model"
)

// Decode parses a persisted document. On error no partial snapshot is
// returned; the caller decides what state to fall back to.
func Decode(data []byte) (model.Snapshot, error) {
	doc := fragment(strings.TrimSpace(string(data)))
	if doc == "" {
		return model.Snapshot{}, &ParseError{Msg: "empty document"}
	}

	snap := model.NewSnapshot()
	snap.Cash = doc.number(keyCash)
	snap.TotalProfit = doc.number(keyTotalProfit)

	if body, ok := doc.object(keyIngredientCosts); ok {
		costs, err := decimalMap(keyIngredientCosts, body)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.IngredientCosts = costs
	}
	if body, ok := doc.object(keyInventory); ok {
		inv, err := intMap(keyInventory, body)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.Inventory = inv
	}
	if body, ok := doc.object(keyDrinkImages); ok {
		snap.DrinkImages = stringMap(body)
	}
	if body, ok := doc.array(keyMenu); ok {
		menu, err := decodeMenu(body)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.Menu = menu
	}
	if body, ok := doc.array(keySalesHistory); ok {
		sales, err := decodeSales(body)
		if err != nil {
			return model.Snapshot{}, err
		}
		snap.Sales = sales
	}
	return snap, nil
}

func decodeMenu(body fragment) ([]model.Drink, error) {
	var menu []model.Drink
	for i, el := range body.elements() {
		name, ok := el.str(keyName)
		if !ok {
			continue
		}
		price := el.number(keyPrice)
		if price.IsNegative() {
			continue
		}
		recipe := model.Recipe{}
		if ing, ok := el.object(keyIngredients); ok {
			m, err := intMap(keyIngredients, ing)
			if err != nil {
				return nil, err
			}
			recipe = model.Recipe(m)
		}
		d, err := model.NewDrink(name, price, recipe)
		if err != nil {
			return nil, parseErrorf(keyMenu, err, "element %d", i)
		}
		menu = append(menu, d)
	}
	return menu, nil
}

func decodeSales(body fragment) ([]model.SaleRecord, error) {
	var sales []model.SaleRecord
	for i, el := range body.elements() {
		name, ok := el.str(keyName)
		if !ok {
			continue
		}
		rec := model.SaleRecord{
			Drink:  name,
			Price:  el.number(keyPrice),
			Cost:   el.number(keyCost),
			Profit: el.number(keyProfit),
		}
		if raw, ok := el.str(keyTime); ok && raw != "" {
			t, err := time.ParseInLocation(model.TimeLayout, raw, time.Local)
			if err != nil {
				return nil, parseErrorf(keySalesHistory, err, "element %d time", i)
			}
			rec.Time = t
		}
		sales = append(sales, rec)
	}
	return sales, nil
}

// flatPairs walks `"k":v,"k":v` content. Keys are everything before the first
// ':' with quotes removed; pairs without a key are ignored.
func flatPairs(key string, body fragment, put func(name, raw string) error) error {
	content := strings.TrimSpace(string(body))
	if content == "" {
		return nil
	}
	for _, pair := range strings.Split(content, ",") {
		pair = strings.TrimSpace(pair)
		colon := strings.IndexByte(pair, ':')
		if colon <= 0 {
			continue
		}
		name := strings.TrimSpace(strings.ReplaceAll(pair[:colon], `"`, ""))
		if name == "" {
			continue
		}
		if err := put(name, strings.TrimSpace(pair[colon+1:])); err != nil {
			return parseErrorf(key, err, "entry %q", name)
		}
	}
	return nil
}

func intMap(key string, body fragment) (map[string]int, error) {
	out := map[string]int{}
	err := flatPairs(key, body, func(name, raw string) error {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		out[name] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decimalMap(key string, body fragment) (map[string]decimal.Decimal, error) {
	out := map[string]decimal.Decimal{}
	err := flatPairs(key, body, func(name, raw string) error {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("not a decimal: %q", raw)
		}
		out[name] = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stringMap reads `"k":"v"` pairs with backslash escapes, stopping quietly at
// the first thing that is not a quoted pair.
func stringMap(body fragment) map[string]string {
	out := map[string]string{}
	c := cursor{text: string(body)}
	for {
		c.skip(" \t\r\n,")
		if c.done() {
			break
		}
		k, ok := c.quoted()
		if !ok {
			break
		}
		c.skip(" \t\r\n")
		if ch, ok := c.peek(); ok && ch == ':' {
			c.pos++
		}
		c.skip(" \t\r\n")
		v, ok := c.quoted()
		if !ok {
			break
		}
		out[k] = v
	}
	return out
}
