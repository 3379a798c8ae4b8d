package machine

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendsim/internal/journal"
	"vendsim/internal/model"
	"vendsim/internal/store"
)

// Persister is where a machine keeps its state between runs.
type Persister interface {
	Load() (model.Snapshot, error)
	Save(model.Snapshot) error
}

type Option func(*Machine)

func WithLogger(log *zap.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// WithClock sets the source of sale timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

type Machine struct {
	mu  sync.Mutex
	p   Persister
	log *zap.Logger
	now func() time.Time

	menu      map[string]model.Drink
	inventory map[string]int
	costs     map[string]decimal.Decimal
	images    map[string]string
	cash      decimal.Decimal
	profit    decimal.Decimal
	sales     *journal.Journal
}

// Open builds a machine from the state p holds, or from Defaults when p has
// nothing usable. Open never writes.
func Open(p Persister, opts ...Option) (*Machine, error) {
	if p == nil {
		return nil, errors.New("persister is required")
	}
	m := &Machine{p: p, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(m)
	}

	snap, err := p.Load()
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.log.Info("no saved state, starting from defaults")
		snap = Defaults()
	case err != nil:
		m.log.Warn("saved state unusable, starting from defaults", zap.Error(err))
		snap = Defaults()
	default:
		if verr := snap.Validate(); verr != nil {
			m.log.Warn("saved state invalid, starting from defaults", zap.Error(verr))
			snap = Defaults()
		}
	}
	m.adopt(snap)
	return m, nil
}

func (m *Machine) adopt(s model.Snapshot) {
	s = s.Clone()
	m.menu = make(map[string]model.Drink, len(s.Menu))
	for _, d := range s.Menu {
		m.menu[d.Name()] = d
	}
	m.inventory = s.Inventory
	m.costs = s.IngredientCosts
	m.images = s.DrinkImages
	for _, name := range model.SortedKeys(m.images) {
		if _, ok := m.menu[name]; !ok {
			m.log.Warn("dropping image of unknown drink", zap.String("drink", name), zap.String("path", m.images[name]))
			delete(m.images, name)
		}
	}
	m.cash = s.Cash
	m.profit = s.TotalProfit
	m.sales = journal.New(s.Sales...)
}

// Snapshot returns a detached copy of the whole state.
func (m *Machine) Snapshot() model.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() model.Snapshot {
	s := model.Snapshot{
		Cash:            m.cash,
		TotalProfit:     m.profit,
		IngredientCosts: m.costs,
		Inventory:       m.inventory,
		DrinkImages:     m.images,
		Sales:           m.sales.Snapshot(),
	}
	for _, name := range model.SortedKeys(m.menu) {
		s.Menu = append(s.Menu, m.menu[name])
	}
	return s.Clone()
}

func (m *Machine) persistLocked(op string) error {
	if err := m.p.Save(m.snapshotLocked()); err != nil {
		m.log.Error("persist failed", zap.String("op", op), zap.Error(err))
		return &PersistError{Op: op, Err: err}
	}
	return nil
}

// Close writes the current state one last time.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistLocked("close")
}

func (m *Machine) Cash() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cash
}

func (m *Machine) TotalProfit() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profit
}

// SalesHistory returns every sale in the order it was made.
func (m *Machine) SalesHistory() []model.SaleRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sales.Snapshot()
}

// CollectCash empties the cash box and returns what it held. Profit is not
// affected.
func (m *Machine) CollectCash() (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	amount := m.cash
	m.cash = decimal.Zero
	m.log.Info("cash collected", zap.String("amount", model.FormatCurrency(amount)))
	return amount, m.persistLocked("collect cash")
}
