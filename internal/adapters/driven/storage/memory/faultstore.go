package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure FaultStore implements the interface.
var _ driven.FaultStore = (*FaultStore)(nil)

// FaultStore is an in-memory implementation of driven.FaultStore.
type FaultStore struct {
	mu     sync.RWMutex
	faults map[string]domain.Fault
}

// NewFaultStore creates a new in-memory fault store.
func NewFaultStore() *FaultStore {
	return &FaultStore{
		faults: make(map[string]domain.Fault),
	}
}

// Record stores or replaces a fault.
func (s *FaultStore) Record(_ context.Context, fault domain.Fault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[fault.Key()] = fault
	return nil
}

// Resolve removes a fault.
func (s *FaultStore) Resolve(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.faults, key)
	return nil
}

// List returns outstanding faults ordered by key.
func (s *FaultStore) List(_ context.Context) ([]domain.Fault, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Fault, 0, len(s.faults))
	for _, f := range s.faults {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key() < result[j].Key() })
	return result, nil
}
