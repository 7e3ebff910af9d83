package driven

import (
	"context"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// EntitySource loads the entity batch of one source database.
// A source that cannot be read returns an error wrapping
// domain.ErrSourceUnavailable; the run continues without it.
type EntitySource interface {
	// ID returns the source database this batch belongs to.
	ID() domain.SourceID

	// Load returns the entities of the batch. Entities are returned as stored;
	// validation and normalisation happen in core.
	Load(ctx context.Context) ([]domain.Entity, error)
}

// CandidateRoster loads the ballot candidates to cross-reference.
type CandidateRoster interface {
	// Load returns the candidates. IDs may be empty and are then assigned in core.
	Load(ctx context.Context) ([]domain.Candidate, error)
}
