// Package memory provides an in-memory TransactionStore. It is the default
// backend for local development and the fixture used by tests. Data is lost
// on restart - production deployments use the Firestore backend.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ckaratas/cebibak/internal/domain"
	"github.com/ckaratas/cebibak/internal/store"
)

// Store is an in-memory implementation of store.TransactionStore.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[string]domain.Record
	seq  map[string]int // insertion order, tie-breaker for equal dates
	next int
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		docs: make(map[string]domain.Record),
		seq:  make(map[string]int),
	}
}

// Add implements store.TransactionStore. The assigned id is a random UUID.
func (s *Store) Add(ctx context.Context, rec *domain.Record) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	stored := *rec
	stored.ID = id
	s.docs[id] = stored
	s.seq[id] = s.next
	s.next++
	return id, nil
}

// Get implements store.TransactionStore.
func (s *Store) Get(ctx context.Context, id string) (*domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	// Copy to avoid external modifications.
	out := rec
	return &out, nil
}

// Delete implements store.TransactionStore. Deleting an absent id is a no-op,
// matching Firestore semantics.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, id)
	delete(s.seq, id)
	return nil
}

// ListAll implements store.TransactionStore: ascending by date, insertion
// order on ties.
func (s *Store) ListAll(ctx context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.Record, 0, len(s.docs))
	for _, rec := range s.docs {
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date.Equal(records[j].Date) {
			return s.seq[records[i].ID] < s.seq[records[j].ID]
		}
		return records[i].Date.Before(records[j].Date)
	})
	return records, nil
}

// Ping implements store.TransactionStore.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Ensure Store implements the TransactionStore interface.
var _ store.TransactionStore = (*Store)(nil)
