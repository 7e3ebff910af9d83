package file

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTemplate(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteTemplate(dir, false)
	require.NoError(t, err)

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	assert.Equal(t, 92, store.GetInt("matching.threshold"))
	assert.Equal(t, 2, store.GetInt("corroboration.min_sources"))
	assert.Equal(t, 3, store.GetInt("corroboration.high_sources"))
	assert.InDelta(t, 2.0, store.GetFloat("oracle.requests_per_second"), 1e-9)
	assert.Equal(t, "sqlite", store.GetString("storage.backend"))
	assert.Equal(t, "", store.GetString("oracle.api_key_env"))
	assert.Len(t, store.GetTables("sources"), 2)
}

func TestWriteTemplate_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := WriteTemplate(dir, false)
	require.NoError(t, err)

	_, err = WriteTemplate(dir, false)
	assert.ErrorIs(t, err, ErrConfigExists)

	_, err = WriteTemplate(dir, true)
	assert.NoError(t, err)
}
