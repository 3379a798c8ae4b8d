// Package journal holds the sales history of a machine.
package journal

import (
	"sort"
	"sync"

	"vendsim/internal/model"
)

// Journal is a concurrency-safe, append-only list of sales. Insertion order is
// chronological order.
type Journal struct {
	mu      sync.Mutex
	records []model.SaleRecord
}

// New returns a journal seeded with records, which are copied.
func New(records ...model.SaleRecord) *Journal {
	j := &Journal{records: make([]model.SaleRecord, len(records))}
	copy(j.records, records)
	return j
}

func (j *Journal) Append(rec model.SaleRecord) {
	if j == nil {
		return
	}
	j.mu.Lock()
	j.records = append(j.records, rec)
	j.mu.Unlock()
}

func (j *Journal) Len() int {
	if j == nil {
		return 0
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.records)
}

// Snapshot returns a point-in-time copy of all recorded sales.
func (j *Journal) Snapshot() []model.SaleRecord {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]model.SaleRecord, len(j.records))
	copy(out, j.records)
	return out
}

// Recent returns up to n sales, newest first.
func (j *Journal) Recent(n int) []model.SaleRecord {
	if j == nil || n <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if n > len(j.records) {
		n = len(j.records)
	}
	out := make([]model.SaleRecord, 0, n)
	for i := len(j.records) - 1; i >= len(j.records)-n; i-- {
		out = append(out, j.records[i])
	}
	return out
}

// Seller is a drink and how many times it was sold.
type Seller struct {
	Drink string
	Count int
}

// TopSold returns up to n drinks ordered by sale count (descending), ties
// broken by name.
func (j *Journal) TopSold(n int) []Seller {
	if j == nil || n <= 0 {
		return nil
	}
	j.mu.Lock()
	counts := map[string]int{}
	for _, r := range j.records {
		counts[r.Drink]++
	}
	j.mu.Unlock()

	out := make([]Seller, 0, len(counts))
	for name, c := range counts {
		out = append(out, Seller{Drink: name, Count: c})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Drink < out[b].Drink
	})
	if n < len(out) {
		out = out[:n]
	}
	return out
}
