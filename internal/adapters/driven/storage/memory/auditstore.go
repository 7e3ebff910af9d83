package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure AuditStore implements the interface.
var _ driven.AuditStore = (*AuditStore)(nil)

// AuditStore is an in-memory implementation of driven.AuditStore.
type AuditStore struct {
	mu   sync.RWMutex
	runs map[string][]domain.CandidateOutcome
}

// NewAuditStore creates a new in-memory audit store.
func NewAuditStore() *AuditStore {
	return &AuditStore{
		runs: make(map[string][]domain.CandidateOutcome),
	}
}

// SaveVerdicts replaces the outcomes stored for a run.
func (s *AuditStore) SaveVerdicts(_ context.Context, runID string, outcomes []domain.CandidateOutcome) error {
	stored := append([]domain.CandidateOutcome(nil), outcomes...)
	sort.Slice(stored, func(i, j int) bool { return stored[i].CandidateID < stored[j].CandidateID })

	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = stored
	return nil
}

// ListVerdicts returns the outcomes of a run.
func (s *AuditStore) ListVerdicts(_ context.Context, runID string) ([]domain.CandidateOutcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return append([]domain.CandidateOutcome(nil), stored...), nil
}
