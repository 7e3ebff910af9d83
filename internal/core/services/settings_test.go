package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/storage/memory"
	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// mockAIValidator records validation calls.
type mockAIValidator struct {
	err   error
	calls int
	last  domain.LLMSettings
}

func (m *mockAIValidator) ValidateLLM(cfg *domain.LLMSettings) error {
	m.calls++
	m.last = *cfg
	return m.err
}

func newTestSettingsService(env map[string]string) (*SettingsService, *memory.ConfigStore) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)
	service.getenv = func(key string) string { return env[key] }
	return service, store
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	assert.Equal(t, defaults.Thresholds, settings.Thresholds)
	assert.Equal(t, defaults.Workers, settings.Workers)
	assert.Equal(t, defaults.Oracle.RequestsPerSecond, settings.Oracle.RequestsPerSecond)
	assert.Equal(t, defaults.Oracle.BackoffBase, settings.Oracle.BackoffBase)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Output.Dir, settings.Output.Dir)
	assert.Empty(t, settings.Sources)
	assert.NoError(t, settings.Validate())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	service, store := newTestSettingsService(map[string]string{"MY_KEY": "sk-test"})
	_ = store.Set("matching.threshold", 95)
	_ = store.Set("corroboration.min_sources", int64(3))
	_ = store.Set("corroboration.high_sources", 4)
	_ = store.Set("oracle.provider", "anthropic")
	_ = store.Set("oracle.api_key_env", "MY_KEY")
	_ = store.Set("oracle.requests_per_second", 0.5)
	_ = store.Set("oracle.backoff_base", "250ms")
	_ = store.Set("storage.backend", "sqlite")
	_ = store.Set("sources", []any{
		map[string]any{"id": "DOJ", "path": "data/doj.json"},
		map[string]any{"id": "phelix", "kind": "github", "owner": "phelix001", "repo": "epstein-network"},
	})

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.Thresholds{MatchThreshold: 95, MinSources: 3, HighSources: 4}, settings.Thresholds)
	assert.Equal(t, domain.AIProviderAnthropic, settings.Oracle.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderAnthropic], settings.Oracle.LLM.Model)
	assert.Equal(t, "sk-test", settings.Oracle.LLM.APIKey)
	assert.Equal(t, 0.5, settings.Oracle.RequestsPerSecond)
	assert.Equal(t, 250*time.Millisecond, settings.Oracle.BackoffBase)
	assert.Equal(t, domain.StorageSQLite, settings.Storage.Backend)

	require.Len(t, settings.Sources, 2)
	assert.Equal(t, domain.SourceDOJ, settings.Sources[0].ID)
	assert.Equal(t, domain.SourceKindFile, settings.Sources[0].Kind)
	assert.Equal(t, domain.SourceKindGitHub, settings.Sources[1].Kind)
	assert.Equal(t, "epstein-network", settings.Sources[1].Repo)
}

func TestSettingsService_Get_DefaultAPIKeyEnv(t *testing.T) {
	service, store := newTestSettingsService(map[string]string{"OPENAI_API_KEY": "sk-openai"})
	_ = store.Set("oracle.provider", "openai")

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "OPENAI_API_KEY", settings.Oracle.LLM.APIKeyEnv)
	assert.Equal(t, "sk-openai", settings.Oracle.LLM.APIKey)
	assert.True(t, settings.Oracle.LLM.IsConfigured())
}

func TestSettingsService_Get_InvalidValuesReturnDefaults(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("oracle.provider", "invalid_provider")
	_ = store.Set("oracle.timeout", "forever")

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings().Oracle.LLM.Provider, settings.Oracle.LLM.Provider)
	assert.Equal(t, domain.DefaultSettings().Oracle.Timeout, settings.Oracle.Timeout)
}

func TestSettingsService_Get_UnknownSource(t *testing.T) {
	service, store := newTestSettingsService(nil)
	_ = store.Set("sources", []any{map[string]any{"id": "wikipedia"}})

	_, err := service.Get()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestSettingsService_Validate_RejectsLoosenedFloors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value any
	}{
		{"match threshold below floor", "matching.threshold", 85},
		{"explicit zero threshold", "matching.threshold", 0},
		{"single source corroboration", "corroboration.min_sources", 1},
		{"high equal to min", "corroboration.high_sources", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, store := newTestSettingsService(nil)
			_ = store.Set(tt.key, tt.value)

			err := service.Validate()
			assert.True(t, errors.Is(err, domain.ErrThresholdBelowFloor))
		})
	}
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	service, _ := newTestSettingsService(map[string]string{"GEMINI_API_KEY": "secret"})

	want := domain.DefaultSettings()
	want.Thresholds = domain.Thresholds{MatchThreshold: 94, MinSources: 2, HighSources: 4}
	want.Workers = 8
	want.Oracle.LLM = domain.LLMSettings{
		Provider:  domain.AIProviderGemini,
		Model:     "gemini-2.5-pro",
		APIKeyEnv: "GEMINI_API_KEY",
		APIKey:    "secret",
	}
	want.Oracle.RequestBudget = 500
	want.Oracle.Timeout = 30 * time.Second
	want.Storage = domain.StorageSettings{Backend: domain.StorageRedis, RedisURL: "redis://localhost:6379/0", CacheTTL: time.Hour}
	want.Sources = []domain.SourceSettings{
		{ID: domain.SourceLMSBand, Kind: domain.SourceKindFile, Path: "lmsband.yaml"},
	}
	want.Roster.Path = "roster.json"
	want.Output.MetricsFile = "data/metrics.prom"

	require.NoError(t, service.Save(&want))

	got, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestSettingsService_SaveNeverWritesAPIKey(t *testing.T) {
	service, store := newTestSettingsService(nil)
	settings := domain.DefaultSettings()
	settings.Oracle.LLM.APIKey = "sk-live"

	require.NoError(t, service.Save(&settings))

	for _, key := range []string{"oracle.api_key", "oracle.apikey"} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	service, _ := newTestSettingsService(nil)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "", ""))
	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.Oracle.LLM.Provider)
	assert.Equal(t, domain.DefaultLLMModels()[domain.AIProviderOllama], settings.Oracle.LLM.Model)
	assert.Equal(t, "http://localhost:11434", settings.Oracle.LLM.BaseURL)

	require.NoError(t, service.SetLLMProvider(domain.AIProviderOpenAI, "gpt-4o", "OAI_KEY"))
	settings, err = service.Get()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", settings.Oracle.LLM.Model)
	assert.Equal(t, "OAI_KEY", settings.Oracle.LLM.APIKeyEnv)
	assert.Empty(t, settings.Oracle.LLM.BaseURL)

	assert.Error(t, service.SetLLMProvider(domain.AIProvider("cohere"), "", ""))
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	service, store := newTestSettingsService(map[string]string{"ANTHROPIC_API_KEY": "sk-ant"})
	assert.NoError(t, service.ValidateLLMConfig())

	validator := &mockAIValidator{err: errBoom}
	service.aiValidator = validator
	_ = store.Set("oracle.provider", "anthropic")

	err := service.ValidateLLMConfig()
	assert.True(t, errors.Is(err, errBoom))
	assert.Equal(t, 1, validator.calls)
	assert.Equal(t, "sk-ant", validator.last.APIKey)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service, _ := newTestSettingsService(nil)
	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}
