package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
	now     func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string][]Record), now: time.Now}
}

// Insert implements Store
func (m *MemoryStore) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, &Error{Op: "insert", Collection: collection, Cause: err}
	}
	if !ValidCollection(collection) {
		return Record{}, &Error{Op: "insert", Collection: collection, Cause: fmt.Errorf("unknown collection")}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = m.now()
	}
	rec.Collection = collection
	rec.Content = append([]byte(nil), rec.Content...)
	m.records[collection] = append(m.records[collection], rec)
	return rec, nil
}

// Select implements Store
func (m *MemoryStore) Select(ctx context.Context, collection string, f Filter) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, &Error{Op: "select", Collection: collection, Cause: err}
	}
	if !ValidCollection(collection) {
		return nil, &Error{Op: "select", Collection: collection, Cause: fmt.Errorf("unknown collection")}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []Record{}
	for _, r := range m.records[collection] {
		if r.UserID == f.UserID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if f.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Delete implements Store
func (m *MemoryStore) Delete(ctx context.Context, collection string, userID string, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return &Error{Op: "delete", Collection: collection, Cause: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.records[collection]
	for i, r := range recs {
		if r.ID == id && r.UserID == userID {
			m.records[collection] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return &Error{Op: "delete", Collection: collection, Cause: ErrNotFound}
}
