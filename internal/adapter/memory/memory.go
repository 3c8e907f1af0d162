// Package memory implements an in-memory measurement store for development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"growthtrack/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu      sync.Mutex
	records map[string]*entry
	seq     int64
}

type entry struct {
	m   domain.Measurement
	seq int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{records: make(map[string]*entry)}
}

// Ensure interfaces are met.
var _ domain.MeasurementStore = (*DB)(nil)

// Get returns a copy of the measurement with the given id, or nil.
func (db *DB) Get(ctx context.Context, id string) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.records[id]
	if !ok {
		return nil, nil
	}
	m := clone(e.m)
	return &m, nil
}

// Put inserts or replaces a measurement. A replaced record keeps its
// insertion position.
func (db *DB) Put(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	stored := clone(*m)
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
	}

	if e, ok := db.records[m.ID]; ok {
		e.m = stored
	} else {
		db.seq++
		db.records[m.ID] = &entry{m: stored, seq: db.seq}
	}
	out := clone(stored)
	return &out, nil
}

// Update applies patch to the stored measurement.
func (db *DB) Update(ctx context.Context, id string, patch domain.MeasurementPatch, updatedAt time.Time) (*domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e, ok := db.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	patch.Apply(&e.m, updatedAt.UTC())
	out := clone(e.m)
	return &out, nil
}

// Delete removes a measurement. Deleting a missing id is a no-op.
func (db *DB) Delete(ctx context.Context, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.records, id)
	return nil
}

// QueryBySubject lists a subject's measurements by measuredAt. Equal dates are
// ordered by insertion, most recent insertion first when NewestFirst is set.
func (db *DB) QueryBySubject(ctx context.Context, subjectID string, q domain.SubjectQuery) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	matched := make([]*entry, 0)
	for _, e := range db.records {
		if e.m.SubjectID != subjectID {
			continue
		}
		if q.Type != "" && e.m.Type != q.Type {
			continue
		}
		if q.From != "" && e.m.MeasuredAt < q.From {
			continue
		}
		if q.To != "" && e.m.MeasuredAt > q.To {
			continue
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.m.MeasuredAt != b.m.MeasuredAt {
			if q.NewestFirst {
				return a.m.MeasuredAt > b.m.MeasuredAt
			}
			return a.m.MeasuredAt < b.m.MeasuredAt
		}
		if q.NewestFirst {
			return a.seq > b.seq
		}
		return a.seq < b.seq
	})

	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	result := make([]domain.Measurement, len(matched))
	for i, e := range matched {
		result[i] = clone(e.m)
	}
	return result, nil
}

// clone copies m so callers never share pointers or maps with the store.
func clone(m domain.Measurement) domain.Measurement {
	if m.Percentile != nil {
		v := *m.Percentile
		m.Percentile = &v
	}
	if m.ZScore != nil {
		v := *m.ZScore
		m.ZScore = &v
	}
	if m.DeviceInfo != nil {
		info := make(map[string]string, len(m.DeviceInfo))
		for k, v := range m.DeviceInfo {
			info[k] = v
		}
		m.DeviceInfo = info
	}
	return m
}
