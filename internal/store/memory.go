package store

import (
	"sync"

	"vendsim/internal/codec"
	"vendsim/internal/model"
)

// Memory is an in-process twin of File. It stores the encoded document, so a
// Load after Save goes through the same codec path as the file store.
type Memory struct {
	mu    sync.Mutex
	data  []byte
	saves int
	fail  error
}

func NewMemory() *Memory { return &Memory{} }

// NewMemoryWith returns a store that already holds doc.
func NewMemoryWith(doc []byte) *Memory {
	m := &Memory{}
	m.data = append([]byte(nil), doc...)
	return m
}

func (m *Memory) Load() (model.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.data) == 0 {
		return model.Snapshot{}, ErrNotFound
	}
	return codec.Decode(m.data)
}

func (m *Memory) Save(s model.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data = codec.Encode(s)
	m.saves++
	return nil
}

// FailWith makes every following Save return err. A nil err clears it.
func (m *Memory) FailWith(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}

// Document returns a copy of the last saved document.
func (m *Memory) Document() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Saves counts successful saves.
func (m *Memory) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
