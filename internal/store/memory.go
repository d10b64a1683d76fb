package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/inamate/sketchboard/internal/typeid"
)

// MemoryStore keeps snapshots in process. It is used when no database is
// configured and in tests.
type MemoryStore struct {
	mu     sync.RWMutex
	boards map[string][]Record
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{boards: make(map[string][]Record), now: time.Now}
}

func (m *MemoryStore) Save(ctx context.Context, boardID string, data []byte) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rec := Record{
		ID:        typeid.NewSnapshotID(),
		BoardID:   boardID,
		Version:   len(m.boards[boardID]) + 1,
		Data:      slices.Clone(data),
		CreatedAt: m.now(),
	}
	m.boards[boardID] = append(m.boards[boardID], rec)
	return rec, nil
}

func (m *MemoryStore) Latest(ctx context.Context, boardID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recs := m.boards[boardID]
	if len(recs) == 0 {
		return Record{}, ErrNotFound
	}
	rec := recs[len(recs)-1]
	rec.Data = slices.Clone(rec.Data)
	return rec, nil
}
