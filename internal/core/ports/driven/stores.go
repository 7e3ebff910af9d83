package driven

import (
	"context"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// VerdictCache persists successful oracle verdicts keyed by
// candidate and entity, so reruns do not pay for the same question twice.
type VerdictCache interface {
	// Get returns the cached verdict and whether it was present.
	Get(ctx context.Context, key string) (domain.Verdict, bool, error)

	// Put stores a verdict.
	Put(ctx context.Context, key string, verdict domain.Verdict) error
}

// FaultStore persists faults so failed units can be retried on the next run.
type FaultStore interface {
	// Record stores a fault. Recording the same Key again replaces it.
	Record(ctx context.Context, fault domain.Fault) error

	// Resolve removes the fault with the given Key. Unknown keys are not an error.
	Resolve(ctx context.Context, key string) error

	// List returns outstanding faults ordered by Key.
	List(ctx context.Context) ([]domain.Fault, error)
}

// AuditStore persists the internal outcome of every candidate, including
// tiers that are never published.
type AuditStore interface {
	// SaveVerdicts stores the outcomes of one run.
	SaveVerdicts(ctx context.Context, runID string, outcomes []domain.CandidateOutcome) error

	// ListVerdicts returns the stored outcomes of a run ordered by candidate ID.
	ListVerdicts(ctx context.Context, runID string) ([]domain.CandidateOutcome, error)
}

// Publisher writes the terminal publication.
type Publisher interface {
	Publish(ctx context.Context, pub domain.Publication) error
}
