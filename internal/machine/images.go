package machine

import (
	"go.uber.org/zap"

	"vendsim/internal/model"
)

// SetDrinkImage records the picture shown for drink. The path is stored as
// given; it is not checked for existence.
func (m *Machine) SetDrinkImage(drink, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.menu[drink]; !ok {
		return drinkNotFound(drink)
	}
	if err := model.ValidatePath(path); err != nil {
		return err
	}
	m.images[drink] = path
	m.log.Info("image set", zap.String("drink", drink), zap.String("path", path))
	return m.persistLocked("set image")
}

func (m *Machine) ClearDrinkImage(drink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.menu[drink]; !ok {
		return drinkNotFound(drink)
	}
	delete(m.images, drink)
	m.log.Info("image cleared", zap.String("drink", drink))
	return m.persistLocked("clear image")
}

func (m *Machine) DrinkImage(drink string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path, ok := m.images[drink]
	return path, ok
}
