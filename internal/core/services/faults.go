package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
)

// Ensure FaultService implements the interface.
var _ driving.FaultService = (*FaultService)(nil)

// FaultService reads the fault store for reporting.
type FaultService struct {
	store driven.FaultStore
}

// NewFaultService creates a fault service. A nil store reports no faults.
func NewFaultService(store driven.FaultStore) *FaultService {
	return &FaultService{store: store}
}

// Outstanding returns unresolved faults ordered by kind, then key.
func (s *FaultService) Outstanding(ctx context.Context) ([]domain.Fault, error) {
	if s.store == nil {
		return nil, nil
	}

	faults, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faults: %w", err)
	}

	sort.SliceStable(faults, func(i, j int) bool {
		if faults[i].Kind != faults[j].Kind {
			return faults[i].Kind < faults[j].Kind
		}
		return faults[i].Key() < faults[j].Key()
	})
	return faults, nil
}
