package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("oracle.model", "claude-sonnet"))
	require.NoError(t, store.Set("oracle.model", "gpt-4o"))

	val, ok := store.Get("oracle.model")
	assert.True(t, ok)
	assert.Equal(t, "gpt-4o", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, ":memory:", store.Path())
	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("str", "value")
	_ = store.Set("int", 92)
	_ = store.Set("int64", int64(3))
	_ = store.Set("float", 2.5)
	_ = store.Set("bool", true)
	_ = store.Set("slice", []any{"a", 1, "b"})

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"string", store.GetString("str"), "value"},
		{"string wrong type", store.GetString("int"), ""},
		{"int", store.GetInt("int"), 92},
		{"int from int64", store.GetInt("int64"), 3},
		{"int from float", store.GetInt("float"), 2},
		{"int wrong type", store.GetInt("str"), 0},
		{"float", store.GetFloat("float"), 2.5},
		{"float from int", store.GetFloat("int"), 92.0},
		{"float from int64", store.GetFloat("int64"), 3.0},
		{"float missing", store.GetFloat("missing"), 0.0},
		{"bool", store.GetBool("bool"), true},
		{"bool wrong type", store.GetBool("str"), false},
		{"string slice", store.GetStringSlice("slice"), []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_GetTables(t *testing.T) {
	store := NewConfigStore()
	_ = store.Set("sources", []any{
		map[string]any{"id": "doj", "path": "doj.json"},
		"not a table",
		map[string]any{"id": "phelix", "path": "phelix.yaml"},
	})
	_ = store.Set("typed", []map[string]any{{"id": "lmsband"}})
	_ = store.Set("scalar", "x")

	tables := store.GetTables("sources")
	require.Len(t, tables, 2)
	assert.Equal(t, "doj", tables[0]["id"])
	assert.Equal(t, "phelix.yaml", tables[1]["path"])

	assert.Len(t, store.GetTables("typed"), 1)
	assert.Nil(t, store.GetTables("scalar"))
	assert.Nil(t, store.GetTables("missing"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("workers", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("workers")
		}()
	}
	wg.Wait()

	_, ok := store.Get("workers")
	assert.True(t, ok)
}
