// Package storage provides the evidence storage backends: an in-memory store
// for tests and short-lived runs, and a SQLite store for persistence.
package storage

import (
	"context"
	"sort"
	"sync"

	"genoscope-hq/callisto/pkg/evidence"
)

// MemoryStorage is an in-memory evidence store. Records live until the
// process exits or retention prunes them.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*evidence.Record
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store implements evidence.Storage.
func (s *MemoryStorage) Store(_ context.Context, record *evidence.Record) error {
	copied := *record
	s.mu.Lock()
	s.records = append(s.records, &copied)
	s.mu.Unlock()
	return nil
}

// Query implements evidence.Storage.
func (s *MemoryStorage) Query(_ context.Context, q *evidence.Query) ([]*evidence.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*evidence.Record, 0)
	for _, r := range s.records {
		if matches(r, q) {
			copied := *r
			matched = append(matched, &copied)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].RecordedTime.After(matched[j].RecordedTime)
	})

	if q != nil {
		if q.Offset > 0 {
			if q.Offset >= len(matched) {
				return nil, nil
			}
			matched = matched[q.Offset:]
		}
		if q.Limit > 0 && q.Limit < len(matched) {
			matched = matched[:q.Limit]
		}
	}
	return matched, nil
}

// Count implements evidence.Storage.
func (s *MemoryStorage) Count(_ context.Context, q *evidence.Query) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, r := range s.records {
		if matches(r, q) {
			n++
		}
	}
	return n, nil
}

// Delete implements evidence.Storage.
func (s *MemoryStorage) Delete(_ context.Context, q *evidence.Query) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var deleted int64
	for _, r := range s.records {
		if matches(r, q) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return deleted, nil
}

// DeleteOldest implements evidence.Storage.
func (s *MemoryStorage) DeleteOldest(_ context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sort.SliceStable(s.records, func(i, j int) bool {
		return s.records[i].RecordedTime.Before(s.records[j].RecordedTime)
	})
	if n > int64(len(s.records)) {
		n = int64(len(s.records))
	}
	s.records = s.records[n:]
	return n, nil
}

// Close implements evidence.Storage.
func (s *MemoryStorage) Close() error { return nil }

// matches applies query filters to a record. A nil query matches everything;
// Limit and Offset are applied by the caller.
func matches(r *evidence.Record, q *evidence.Query) bool {
	if q == nil {
		return true
	}
	if q.StartTime != nil && r.RecordedTime.Before(*q.StartTime) {
		return false
	}
	if q.EndTime != nil && r.RecordedTime.After(*q.EndTime) {
		return false
	}
	if q.Drug != "" && r.Drug != q.Drug {
		return false
	}
	if q.DrugClass != "" && r.DrugClass != q.DrugClass {
		return false
	}
	if q.CorpusName != "" && r.CorpusName != q.CorpusName {
		return false
	}
	if q.Resistant != nil && r.Resistant != *q.Resistant {
		return false
	}
	if q.MinScore != nil && r.Score < *q.MinScore {
		return false
	}
	return true
}
