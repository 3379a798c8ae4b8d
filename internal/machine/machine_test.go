package machine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"vendsim/internal/codec"
	"vendsim/internal/model"
	"vendsim/internal/store"
)

var fixedNow = time.Date(2025, 6, 1, 8, 15, 30, 0, time.Local)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func openWith(t *testing.T, s model.Snapshot) (*Machine, *store.Memory) {
	t.Helper()
	mem := store.NewMemoryWith(codec.Encode(s))
	m, err := Open(mem, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return m, mem
}

func openDefaults(t *testing.T) (*Machine, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	m, err := Open(mem, WithLogger(zaptest.NewLogger(t)), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return m, mem
}

// espressoState has exactly enough water for one espresso.
func espressoState(t *testing.T) model.Snapshot {
	t.Helper()
	s := model.NewSnapshot()
	s.Inventory["water"] = 50
	s.IngredientCosts["water"] = dec("0.0100")
	d, err := model.NewDrink("Espresso", dec("1.80"), model.Recipe{"water": 50})
	require.NoError(t, err)
	s.Menu = []model.Drink{d}
	return s
}

func quantity(m *Machine, name string) int {
	for _, item := range m.Inventory() {
		if item.Name == name {
			return item.Quantity
		}
	}
	return -1
}

func TestOpen_RequiresPersister(t *testing.T) {
	_, err := Open(nil)
	require.Error(t, err)
}

func TestOpen_EmptyStoreUsesDefaultsWithoutWriting(t *testing.T) {
	m, mem := openDefaults(t)

	assert.Len(t, m.Menu(), 8)
	assert.Len(t, m.Inventory(), 6)
	assert.True(t, m.Cash().IsZero())
	assert.Empty(t, m.SalesHistory())
	assert.Equal(t, 0, mem.Saves())

	require.NoError(t, m.Close())
	assert.Equal(t, 1, mem.Saves())
}

func TestOpen_MalformedDocumentFallsBackToDefaults(t *testing.T) {
	mem := store.NewMemoryWith([]byte(`{"inventory":{"water":plenty}}`))
	m, err := Open(mem, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	assert.Len(t, m.Menu(), 8)
	assert.Equal(t, 5000, quantity(m, Water))
}

func TestOpen_InvalidStateFallsBackToDefaults(t *testing.T) {
	s := espressoState(t)
	s.Cash = dec("-1.00")
	m, _ := openWith(t, s)
	assert.Len(t, m.Menu(), 8)
}

func TestOpen_DropsImagesOfUnknownDrinks(t *testing.T) {
	s := espressoState(t)
	s.DrinkImages["Espresso"] = "/img/e.png"
	s.DrinkImages["Ghost"] = "/img/g.png"
	m, _ := openWith(t, s)

	_, ok := m.DrinkImage("Ghost")
	assert.False(t, ok)
	path, ok := m.DrinkImage("Espresso")
	assert.True(t, ok)
	assert.Equal(t, "/img/e.png", path)
}

func TestFulfillOne_EspressoScenario(t *testing.T) {
	m, mem := openWith(t, espressoState(t))

	rec, err := m.FulfillOne("Espresso")
	require.NoError(t, err)

	cost, err := m.Cost("Espresso")
	require.NoError(t, err)
	assert.Equal(t, 0, quantity(m, "water"))
	assert.Equal(t, "1.80", m.Cash().StringFixed(2))
	require.Len(t, m.SalesHistory(), 1)
	assert.True(t, rec.Profit.Equal(dec("1.80").Sub(cost)), "profit %s, cost %s", rec.Profit, cost)
	assert.True(t, m.TotalProfit().Equal(rec.Profit))
	assert.True(t, rec.Time.Equal(fixedNow))
	assert.Equal(t, 1, mem.Saves())
}

func TestFulfillOne_InsufficientStockChangesNothing(t *testing.T) {
	s := espressoState(t)
	s.Inventory["water"] = 49
	m, mem := openWith(t, s)

	_, err := m.FulfillOne("Espresso")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	var se *StockError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "water", se.Ingredient)
	assert.Equal(t, 50, se.Required)
	assert.Equal(t, 49, se.OnHand)

	assert.Equal(t, 49, quantity(m, "water"))
	assert.True(t, m.Cash().IsZero())
	assert.True(t, m.TotalProfit().IsZero())
	assert.Empty(t, m.SalesHistory())
	assert.Equal(t, 0, mem.Saves())
}

func TestFulfillOne_UnknownDrink(t *testing.T) {
	m, _ := openDefaults(t)
	_, err := m.FulfillOne("Mocha")
	assert.True(t, errors.Is(err, ErrDrinkNotFound))
}

func TestFulfillOne_DefaultEspressoRoundsCost(t *testing.T) {
	m, _ := openDefaults(t)

	// 50 × 0.0001 + 10 × 0.0500 = 0.505, recorded as 0.51.
	rec, err := m.FulfillOne("Espresso")
	require.NoError(t, err)
	assert.Equal(t, "0.51", rec.Cost.StringFixed(2))
	assert.Equal(t, "1.29", rec.Profit.StringFixed(2))
	assert.Equal(t, 4950, quantity(m, Water))
	assert.Equal(t, 990, quantity(m, CoffeeBeans))
}

func TestCheckBatch_IsCumulativeAndReadOnly(t *testing.T) {
	m, mem := openWith(t, espressoState(t))

	require.NoError(t, m.CheckBatch([]string{"Espresso"}))
	err := m.CheckBatch([]string{"Espresso", "Espresso"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Equal(t, 50, quantity(m, "water"))
	assert.Equal(t, 0, mem.Saves())

	assert.True(t, errors.Is(m.CheckBatch([]string{"Espresso", "Nope"}), ErrDrinkNotFound))
	assert.NoError(t, m.CheckBatch(nil))
}

func TestAvailability(t *testing.T) {
	m, _ := openWith(t, espressoState(t))

	assert.NoError(t, m.Availability("Espresso", 1))
	assert.True(t, m.Available("Espresso"))
	assert.True(t, errors.Is(m.Availability("Espresso", 2), ErrInsufficientStock))
	assert.True(t, errors.Is(m.Availability("Espresso", 0), ErrInvalidAmount))
	assert.True(t, errors.Is(m.Availability("Nope", 1), ErrDrinkNotFound))
	assert.False(t, m.Available("Nope"))
}

func TestAvailability_HugeMultiplicityIsShort(t *testing.T) {
	m, _ := openWith(t, espressoState(t))

	for _, mult := range []int{math.MaxInt, math.MaxInt/50 + 2, math.MaxInt / 50} {
		err := m.Availability("Espresso", mult)
		require.True(t, errors.Is(err, ErrInsufficientStock), "multiplicity %d: got %v", mult, err)
		var se *StockError
		require.True(t, errors.As(err, &se))
		assert.Positive(t, se.Required, "multiplicity %d", mult)
		assert.Equal(t, 50, se.OnHand)
	}
	var se *StockError
	require.True(t, errors.As(m.Availability("Espresso", math.MaxInt), &se))
	assert.Equal(t, math.MaxInt, se.Required)
}

func TestCost_IsExactSumWithUnknownCostsAsZero(t *testing.T) {
	s := model.NewSnapshot()
	s.IngredientCosts["beans"] = dec("0.0500")
	s.IngredientCosts["water"] = dec("0.0001")
	d, err := model.NewDrink("Mystery", dec("2.00"), model.Recipe{"beans": 10, "water": 55, "secret": 3})
	require.NoError(t, err)
	s.Menu = []model.Drink{d}
	m, _ := openWith(t, s)

	cost, err := m.Cost("Mystery")
	require.NoError(t, err)
	assert.True(t, cost.Equal(dec("0.5055")), "got %s", cost)

	_, err = m.Cost("Nope")
	assert.True(t, errors.Is(err, ErrDrinkNotFound))
}

func TestAddDrink(t *testing.T) {
	m, mem := openDefaults(t)

	require.NoError(t, m.SetIngredientCost("Vanilla (ml)", dec("0.02")))
	require.NoError(t, m.AddDrink("Vanilla Latte", dec("3.9"), model.Recipe{Milk: 150, CoffeeBeans: 10, "Vanilla (ml)": 5}))
	assert.Equal(t, 2, mem.Saves())

	var found bool
	for _, item := range m.Menu() {
		if item.Name == "Vanilla Latte" {
			found = true
			assert.Equal(t, "3.90", item.Price.StringFixed(2))
			assert.False(t, item.CanMake, "no vanilla in stock yet")
		}
	}
	assert.True(t, found)
	assert.Equal(t, 0, quantity(m, "Vanilla (ml)"))

	tests := []struct {
		name   string
		drink  string
		price  string
		recipe model.Recipe
		want   error
	}{
		{"duplicate", "Latte", "1.00", model.Recipe{Milk: 1}, ErrDuplicateDrink},
		{"duplicate with uncosted ingredient", "Latte", "1.00", model.Recipe{"Saffron (g)": 1}, ErrDuplicateDrink},
		{"unknown ingredient", "Matcha", "1.00", model.Recipe{"Matcha (g)": 3}, ErrUnknownIngredient},
		{"negative price", "Cheap", "-0.01", model.Recipe{Milk: 1}, ErrInvalidAmount},
		{"empty recipe", "Air", "1.00", model.Recipe{}, ErrInvalidAmount},
		{"zero quantity", "Thin", "1.00", model.Recipe{Milk: 0}, ErrInvalidAmount},
		{"blank name", " ", "1.00", model.Recipe{Milk: 1}, ErrInvalidName},
		{"structural name", `Tea, "Strong"`, "1.00", model.Recipe{Milk: 1}, ErrInvalidName},
		{"reserved name", "menu", "1.00", model.Recipe{Milk: 1}, ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := mem.Saves()
			err := m.AddDrink(tt.drink, dec(tt.price), tt.recipe)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "want %v, got %v", tt.want, err)
			assert.Equal(t, before, mem.Saves())
		})
	}
	_, ok := m.costsFor("Matcha (g)")
	assert.False(t, ok, "rejected add must not register ingredients")
}

func (m *Machine) costsFor(name string) (decimal.Decimal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.costs[name]
	return c, ok
}

func TestUpdateDrink_RenameCarriesImage(t *testing.T) {
	m, mem := openDefaults(t)
	require.NoError(t, m.SetDrinkImage("Latte", `C:\pics\latte.png`))
	saves := mem.Saves()

	require.NoError(t, m.UpdateDrink("Latte", "Caffe Latte", dec("3.75"), model.Recipe{Water: 30, CoffeeBeans: 10, Milk: 180}))
	assert.Equal(t, saves+1, mem.Saves())

	_, ok := m.DrinkImage("Latte")
	assert.False(t, ok)
	path, ok := m.DrinkImage("Caffe Latte")
	assert.True(t, ok)
	assert.Equal(t, `C:\pics\latte.png`, path)
	assert.Len(t, m.Menu(), 8)
	assert.True(t, errors.Is(m.Availability("Latte", 1), ErrDrinkNotFound))
}

func TestUpdateDrink_SameNameRepricesInPlace(t *testing.T) {
	m, _ := openDefaults(t)
	require.NoError(t, m.UpdateDrink("Espresso", "Espresso", dec("2.00"), model.Recipe{Water: 50, CoffeeBeans: 10}))
	rec, err := m.FulfillOne("Espresso")
	require.NoError(t, err)
	assert.Equal(t, "2.00", rec.Price.StringFixed(2))
}

func TestUpdateDrink_Rejections(t *testing.T) {
	m, mem := openDefaults(t)

	assert.True(t, errors.Is(m.UpdateDrink("Nope", "X", dec("1"), model.Recipe{Milk: 1}), ErrDrinkNotFound))
	assert.True(t, errors.Is(m.UpdateDrink("Latte", "Espresso", dec("1"), model.Recipe{Milk: 1}), ErrDuplicateDrink))
	assert.True(t, errors.Is(m.UpdateDrink("Latte", "Espresso", dec("1"), model.Recipe{"Saffron (g)": 1}), ErrDuplicateDrink))
	assert.True(t, errors.Is(m.UpdateDrink("Latte", "Latte", dec("1"), model.Recipe{"Rum (ml)": 1}), ErrUnknownIngredient))
	assert.Equal(t, 0, mem.Saves())
	assert.Len(t, m.Menu(), 8)
}

func TestDeleteDrink_RemovesImage(t *testing.T) {
	m, _ := openDefaults(t)
	require.NoError(t, m.SetDrinkImage("Frappe", "/img/frappe.png"))
	require.NoError(t, m.DeleteDrink("Frappe"))

	_, ok := m.DrinkImage("Frappe")
	assert.False(t, ok)
	assert.Len(t, m.Menu(), 7)
	assert.True(t, errors.Is(m.DeleteDrink("Frappe"), ErrDrinkNotFound))
	assert.Empty(t, m.Snapshot().DrinkImages)
}

func TestRefill(t *testing.T) {
	m, _ := openWith(t, espressoState(t))

	require.NoError(t, m.Refill("water", 25))
	assert.Equal(t, 75, quantity(m, "water"))

	assert.True(t, errors.Is(m.Refill("water", 0), ErrInvalidAmount))
	assert.True(t, errors.Is(m.Refill("water", -5), ErrInvalidAmount))
	assert.True(t, errors.Is(m.Refill("gin", 5), ErrUnknownIngredient))
	assert.Equal(t, 75, quantity(m, "water"))
}

func TestSetIngredientCost(t *testing.T) {
	m, _ := openDefaults(t)

	require.NoError(t, m.SetIngredientCost(Milk, dec("0.00456")))
	for _, item := range m.Inventory() {
		if item.Name == Milk {
			assert.Equal(t, "0.0046", item.UnitCost.StringFixed(4))
			assert.Equal(t, 2000, item.Quantity)
		}
	}
	assert.True(t, errors.Is(m.SetIngredientCost(Milk, dec("-0.1")), ErrInvalidAmount))
	assert.True(t, errors.Is(m.SetIngredientCost("a:b", dec("0.1")), ErrInvalidName))
}

func TestNonNegativeInventoryAcrossSequences(t *testing.T) {
	m, _ := openDefaults(t)
	drinks := []string{"Latte", "Hot Chocolate", "Frappe", "Lemon Tea", "Americano", "Espresso"}
	for i := 0; i < 200; i++ {
		_, _ = m.FulfillOne(drinks[i%len(drinks)])
		if i%37 == 0 {
			require.NoError(t, m.Refill(Milk, 100))
		}
		for _, item := range m.Inventory() {
			require.GreaterOrEqual(t, item.Quantity, 0, "%s went negative", item.Name)
		}
	}
	assert.False(t, m.Cash().IsNegative())
}

func TestCollectCash(t *testing.T) {
	m, mem := openDefaults(t)
	_, err := m.FulfillOne("Latte")
	require.NoError(t, err)
	_, err = m.FulfillOne("Espresso")
	require.NoError(t, err)
	profit := m.TotalProfit()

	got, err := m.CollectCash()
	require.NoError(t, err)
	assert.Equal(t, "5.30", got.StringFixed(2))
	assert.True(t, m.Cash().IsZero())
	assert.True(t, m.TotalProfit().Equal(profit))
	assert.Equal(t, 3, mem.Saves())

	again, err := m.CollectCash()
	require.NoError(t, err)
	assert.True(t, again.IsZero())
}

func TestImages(t *testing.T) {
	m, _ := openDefaults(t)

	assert.True(t, errors.Is(m.SetDrinkImage("Nope", "/x.png"), ErrDrinkNotFound))
	assert.True(t, errors.Is(m.SetDrinkImage("Latte", "/img/{x}.png"), ErrInvalidName))
	require.NoError(t, m.SetDrinkImage("Latte", `/img/"quoted".png`))
	path, ok := m.DrinkImage("Latte")
	assert.True(t, ok)
	assert.Equal(t, `/img/"quoted".png`, path)

	require.NoError(t, m.ClearDrinkImage("Latte"))
	_, ok = m.DrinkImage("Latte")
	assert.False(t, ok)
	assert.True(t, errors.Is(m.ClearDrinkImage("Nope"), ErrDrinkNotFound))
}

func TestPersistFailureKeepsMutation(t *testing.T) {
	m, mem := openDefaults(t)
	boom := errors.New("disk full")
	mem.FailWith(boom)

	rec, err := m.FulfillOne("Espresso")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistWrite))
	assert.True(t, errors.Is(err, boom))
	var pe *PersistError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "fulfill", pe.Op)

	assert.Equal(t, "Espresso", rec.Drink)
	assert.Len(t, m.SalesHistory(), 1)
	assert.Equal(t, 4950, quantity(m, Water))
}

func TestSalesHistory_IsDefensiveCopy(t *testing.T) {
	m, _ := openDefaults(t)
	_, err := m.FulfillOne("Espresso")
	require.NoError(t, err)

	h := m.SalesHistory()
	h[0].Drink = "tampered"
	assert.Equal(t, "Espresso", m.SalesHistory()[0].Drink)
}

func TestPlaceOrder(t *testing.T) {
	m, mem := openDefaults(t)

	r, err := m.PlaceOrder([]string{"Espresso", "Latte", "Espresso"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Len(t, r.Sales, 3)
	assert.Equal(t, "7.10", r.Total.StringFixed(2))
	assert.Equal(t, 3, mem.Saves())

	_, err = m.PlaceOrder(nil)
	assert.True(t, errors.Is(err, ErrInvalidAmount))
	_, err = m.PlaceOrder([]string{"Espresso", "Unicorn"})
	assert.True(t, errors.Is(err, ErrDrinkNotFound))
	assert.Len(t, m.SalesHistory(), 3)
}

func TestPlaceOrder_RejectsWholeOrderUpFront(t *testing.T) {
	m, _ := openWith(t, espressoState(t))

	r, err := m.PlaceOrder([]string{"Espresso", "Espresso"})
	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.Empty(t, r.Sales)
	assert.Equal(t, 50, quantity(m, "water"))
}

func TestPlaceOrder_PersistFailureStopsWithPartialReceipt(t *testing.T) {
	m, mem := openDefaults(t)
	mem.FailWith(errors.New("read-only filesystem"))

	r, err := m.PlaceOrder([]string{"Espresso", "Latte"})
	assert.True(t, errors.Is(err, ErrPersistWrite))
	require.Len(t, r.Sales, 1)
	assert.Equal(t, "Espresso", r.Sales[0].Drink)
	assert.Equal(t, "1.80", r.Total.StringFixed(2))
}

func TestReportAndLowStock(t *testing.T) {
	m, _ := openDefaults(t)
	for _, d := range []string{"Espresso", "Latte", "Espresso", "Lemon Tea"} {
		_, err := m.FulfillOne(d)
		require.NoError(t, err)
	}

	r := m.Report(2, 3)
	assert.Equal(t, 4, r.SalesCount)
	assert.Equal(t, "8.60", r.Revenue.StringFixed(2))
	assert.True(t, r.Cash.Equal(r.Revenue))
	require.Len(t, r.TopSellers, 2)
	assert.Equal(t, "Espresso", r.TopSellers[0].Drink)
	assert.Equal(t, 2, r.TopSellers[0].Count)
	require.Len(t, r.Recent, 3)
	assert.Equal(t, "Lemon Tea", r.Recent[0].Drink)

	low := m.LowStock(100)
	require.Len(t, low, 1)
	assert.Equal(t, Tea, low[0].Name)
	assert.Equal(t, 49, low[0].Quantity)
}

func TestRoundTrip_ReachableState(t *testing.T) {
	m, mem := openDefaults(t)
	require.NoError(t, m.SetIngredientCost("Кардамон (g)", dec("0.1234")))
	require.NoError(t, m.AddDrink("Турско кафе", dec("2.20"), model.Recipe{Water: 60, CoffeeBeans: 8, "Кардамон (g)": 1}))
	require.NoError(t, m.Refill("Кардамон (g)", 10))
	require.NoError(t, m.SetDrinkImage("Турско кафе", `D:\menu\turkish "strong".jpg`))
	for _, d := range []string{"Турско кафе", "Espresso", "Hot Chocolate"} {
		_, err := m.FulfillOne(d)
		require.NoError(t, err)
	}
	_, err := m.CollectCash()
	require.NoError(t, err)
	_, err = m.FulfillOne("Americano")
	require.NoError(t, err)
	require.NoError(t, m.DeleteDrink("Frappe"))

	want := m.Snapshot()
	reopened, err := Open(store.NewMemoryWith(mem.Document()), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	got := reopened.Snapshot()

	assert.True(t, want.Cash.Equal(got.Cash))
	assert.True(t, want.TotalProfit.Equal(got.TotalProfit))
	assert.Equal(t, want.Inventory, got.Inventory)
	assert.Equal(t, want.DrinkImages, got.DrinkImages)
	require.Len(t, got.IngredientCosts, len(want.IngredientCosts))
	for k, v := range want.IngredientCosts {
		assert.True(t, v.Equal(got.IngredientCosts[k]), "cost %q", k)
	}
	require.Len(t, got.Menu, len(want.Menu))
	for i := range want.Menu {
		assert.True(t, want.Menu[i].Equal(got.Menu[i]), "drink %q", want.Menu[i].Name())
	}
	require.Len(t, got.Sales, len(want.Sales))
	for i := range want.Sales {
		assert.True(t, want.Sales[i].Equal(got.Sales[i]), "sale %d", i)
	}
}

func TestConcurrentCallersAreSerialized(t *testing.T) {
	m, mem := openDefaults(t)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = m.FulfillOne("Espresso")
				return
			}
			_ = m.Refill(Water, 10)
		}(i)
	}
	wg.Wait()

	sold := len(m.SalesHistory())
	assert.Equal(t, 10, sold)
	assert.Equal(t, 5000+10*10-50*sold, quantity(m, Water))
	assert.Equal(t, 20, mem.Saves())
	assert.Equal(t, fmt.Sprintf("%.2f", 1.80*float64(sold)), m.Cash().StringFixed(2))
}
