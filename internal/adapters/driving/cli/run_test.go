package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
)

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run", runCmd.Use)
	assert.Contains(t, runCmd.Long, "two")
}

func TestRunCmd_PrintsReport(t *testing.T) {
	ts := setupTestServices(t)

	out, err := executeCommand("run")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.pipeline.runs)
	assert.Contains(t, out, "Run run-1")
	assert.Contains(t, out, "Connections")
}

func TestRunCmd_JSON(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("run", "--json")

	require.NoError(t, err)
	var got domain.RunReport
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "run-1", got.RunID)
	assert.Len(t, got.Outcomes, 3)
}

func TestRunCmd_PartialReportOnError(t *testing.T) {
	ts := setupTestServices(t)
	ts.pipeline.err = domain.ErrNoSources

	out, err := executeCommand("run")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSources)
	assert.Contains(t, out, "Run run-1")
}

func TestRunCmd_FactoryError(t *testing.T) {
	setupTestServices(t)
	newPipeline = func(context.Context) (driving.Pipeline, error) {
		return nil, domain.ErrLLMUnavailable
	}

	_, err := executeCommand("run")

	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestRunCmd_NotConfigured(t *testing.T) {
	setupTestServices(t)
	newPipeline = nil

	_, err := executeCommand("run")

	assert.EqualError(t, err, "pipeline not configured")
}

func TestRunCmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("run", "extra")

	assert.Error(t, err)
}

func TestRunCmd_NilReport(t *testing.T) {
	ts := setupTestServices(t)
	ts.pipeline.report = nil
	ts.pipeline.err = errors.New("roster missing")

	out, err := executeCommand("run")

	assert.ErrorContains(t, err, "roster missing")
	assert.NotContains(t, out, "Run ")
}
