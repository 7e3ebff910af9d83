package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// auditStore implements driven.AuditStore.
type auditStore struct {
	store *Store
}

var _ driven.AuditStore = (*auditStore)(nil)

// SaveVerdicts replaces the outcomes stored for a run in one transaction.
func (s *auditStore) SaveVerdicts(ctx context.Context, runID string, outcomes []domain.CandidateOutcome) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM audit_verdicts WHERE run_id = ?", runID); err != nil {
		return fmt.Errorf("clearing run %s: %w", runID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_verdicts (run_id, candidate_id, tier, sources, blocked, outcome, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := s.store.now().UTC()
	for _, o := range outcomes {
		payload, err := json.Marshal(o)
		if err != nil {
			return fmt.Errorf("marshalling outcome %s: %w", o.CandidateID, err)
		}
		tier := o.Verdict.Tier
		if tier == "" {
			tier = domain.TierNone
		}
		if _, err := stmt.ExecContext(ctx, runID, o.CandidateID, string(tier),
			o.Verdict.DistinctSourceCount, o.Blocked, string(payload), now); err != nil {
			return fmt.Errorf("saving outcome %s: %w", o.CandidateID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run %s: %w", runID, err)
	}
	return nil
}

// ListVerdicts returns the outcomes of a run ordered by candidate ID.
// Returns ErrNotFound if the run has no stored outcomes.
func (s *auditStore) ListVerdicts(ctx context.Context, runID string) ([]domain.CandidateOutcome, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT outcome FROM audit_verdicts WHERE run_id = ? ORDER BY candidate_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []domain.CandidateOutcome //nolint:prealloc // size unknown from query
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		var o domain.CandidateOutcome
		if err := json.Unmarshal([]byte(payload), &o); err != nil {
			return nil, fmt.Errorf("unmarshaling outcome: %w", err)
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating outcomes: %w", err)
	}

	if len(outcomes) == 0 {
		return nil, domain.ErrNotFound
	}
	return outcomes, nil
}
