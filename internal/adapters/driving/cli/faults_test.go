package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

func TestFaultsCmd_Empty(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("faults")

	require.NoError(t, err)
	assert.Contains(t, out, "No outstanding faults.")
}

func TestFaultsCmd_Lists(t *testing.T) {
	ts := setupTestServices(t)
	ts.faults.faults = []domain.Fault{
		{
			RunID:       "run-7",
			Kind:        domain.FaultCollaborator,
			Stage:       domain.StageDisambiguated,
			CandidateID: "ca-1-jane-doe",
			SourceID:    domain.SourceDOJ,
			Subject:     "doj/jane doe",
			Reason:      "oracle unavailable",
			At:          time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		},
		{
			Kind:     domain.FaultCollaborator,
			Stage:    domain.StageIngested,
			SourceID: domain.SourcePhelix,
			Reason:   "source unavailable",
		},
	}

	out, err := executeCommand("faults")

	require.NoError(t, err)
	assert.Contains(t, out, "2 outstanding faults")
	assert.Contains(t, out, "ca-1-jane-doe [doj] doj/jane doe")
	assert.Contains(t, out, "oracle unavailable (run run-7, 2026-03-01 09:30)")
	assert.Contains(t, out, "[phelix]")
}

func TestFaultsCmd_Error(t *testing.T) {
	ts := setupTestServices(t)
	ts.faults.err = errors.New("locked")

	_, err := executeCommand("faults")

	assert.ErrorContains(t, err, "locked")
}
