package machine

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vendsim/internal/model"
)

// Receipt lists the sales made for one order.
type Receipt struct {
	ID    uuid.UUID
	Sales []model.SaleRecord
	Total decimal.Decimal
}

// PlaceOrder sells every drink in names, in order. The whole order is checked
// against stock first; after that each drink is fulfilled and persisted on its
// own. If a step fails, the receipt holds the sales made so far.
func (m *Machine) PlaceOrder(names []string) (Receipt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(names) == 0 {
		return Receipt{}, newError(ErrInvalidAmount, "", "order is empty")
	}
	if err := m.checkBatchLocked(names); err != nil {
		return Receipt{}, err
	}

	r := Receipt{ID: uuid.New(), Total: decimal.Zero}
	log := m.log.With(zap.String("order", r.ID.String()))
	for _, name := range names {
		rec, err := m.fulfillLocked(name)
		if rec.Drink != "" {
			r.Sales = append(r.Sales, rec)
			r.Total = r.Total.Add(rec.Price)
		}
		if err != nil {
			log.Warn("order stopped", zap.Int("fulfilled", len(r.Sales)), zap.Int("requested", len(names)), zap.Error(err))
			return r, err
		}
	}
	log.Info("order placed", zap.Int("drinks", len(r.Sales)), zap.String("total", model.FormatCurrency(r.Total)))
	return r, nil
}
