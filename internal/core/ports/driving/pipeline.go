package driving

import (
	"context"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// Pipeline runs the cross-referencing pipeline end to end.
type Pipeline interface {
	// Run executes one full run and returns its report. A run that aborts
	// returns the partial report together with the error.
	Run(ctx context.Context) (*domain.RunReport, error)

	// Status returns the state of the current or last run.
	Status() PipelineStatus
}

// PipelineStatus represents the current state of a run.
type PipelineStatus struct {
	// RunID identifies the run.
	RunID string

	// Running indicates if a run is currently in progress.
	Running bool

	// Stage is the last stage reached.
	Stage domain.RunStage

	// Faults is the number of faults recorded so far.
	Faults int
}

// NameService exposes normalisation and scoring for inspection.
type NameService interface {
	// Normalize returns the canonical comparable form of a name.
	Normalize(raw string) string

	// Variants returns every comparable form generated for a name.
	Variants(raw string) []string

	// Score returns the similarity of two raw names, 0-100.
	Score(a, b string) int
}

// FaultService reports faults deferred for retry on the next run.
type FaultService interface {
	// Outstanding returns unresolved faults ordered by kind, then key.
	Outstanding(ctx context.Context) ([]domain.Fault, error)
}
