package legacy

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when no record exists for the requested id.
var ErrNotFound = errors.New("legacy record not found")

// InMemoryRepository is a keyed, read-mostly store of legacy records.
// Lookups never mutate state and are safe for any number of concurrent readers.
type InMemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewInMemoryRepository indexes records by id. Records without a usable
// string id cannot be looked up and are skipped.
func NewInMemoryRepository(records []Record) *InMemoryRepository {
	repo := &InMemoryRepository{records: make(map[string]Record, len(records))}
	for _, rec := range records {
		repo.put(rec)
	}
	return repo
}

// Put adds or replaces a record. Intended for seeding and tests.
func (r *InMemoryRepository) Put(rec Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(rec)
}

func (r *InMemoryRepository) put(rec Record) {
	if key, ok := rec.Key(); ok {
		r.records[key] = rec
	}
}

// FindByID returns the raw record stored under id.
func (r *InMemoryRepository) FindByID(_ context.Context, id string) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Len reports how many records are indexed.
func (r *InMemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
