package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("normalize")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestNormalizeCmd_PrintsVariants(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("normalize", "Bill Smith")

	require.NoError(t, err)
	assert.Contains(t, out, "Canonical: bill smith")
	assert.Contains(t, out, "Variants:")
	assert.Contains(t, out, "  william smith")
}

func TestScoreCmd_Shortlisted(t *testing.T) {
	setupTestServices(t)

	out, err := executeCommand("score", "Jane Doe", "jane doe")

	require.NoError(t, err)
	assert.Contains(t, out, "Score: 100 (shortlisted, threshold 92)")
}

func TestScoreCmd_UsesConfiguredThreshold(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.Thresholds.MatchThreshold = 96

	out, err := executeCommand("score", "Jane Doe", "John Roe")

	require.NoError(t, err)
	assert.Contains(t, out, "Score: 50 (below threshold, threshold 96)")
}

func TestScoreCmd_SettingsError(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.getErr = errors.New("bad toml")

	_, err := executeCommand("score", "a", "b")

	assert.ErrorContains(t, err, "bad toml")
}

func TestScoreCmd_RequiresTwoArgs(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand("score", "only one")

	assert.Error(t, err)
}

func TestNameCommands_NotConfigured(t *testing.T) {
	setupTestServices(t)
	nameService = nil

	_, err := executeCommand("normalize", "x")
	assert.EqualError(t, err, "name service not configured")

	_, err = executeCommand("score", "x", "y")
	assert.EqualError(t, err, "name service not configured")
}
