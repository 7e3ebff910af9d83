package services

import (
	"fmt"
	"os"
	"time"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyMatchThreshold = "matching.threshold"
	keyWorkers        = "matching.workers"
	keyMinSources     = "corroboration.min_sources"
	keyHighSources    = "corroboration.high_sources"

	keyLLMProvider    = "oracle.provider"
	keyLLMModel       = "oracle.model"
	keyLLMBaseURL     = "oracle.base_url"
	keyLLMAPIKeyEnv   = "oracle.api_key_env"
	keyOracleRPS      = "oracle.requests_per_second"
	keyOracleBurst    = "oracle.burst"
	keyOracleConc     = "oracle.max_concurrency"
	keyOracleBudget   = "oracle.request_budget"
	keyOracleRetries  = "oracle.max_retries"
	keyOracleBackoff  = "oracle.backoff_base"
	keyOracleMaxWait  = "oracle.backoff_max"
	keyOracleTimeout  = "oracle.timeout"
	keyStorageBackend = "storage.backend"
	keyStorageDataDir = "storage.data_dir"
	keyStorageRedis   = "storage.redis_url"
	keyStorageTTL     = "storage.cache_ttl"
	keyRosterPath     = "roster.path"
	keyOutputDir      = "output.dir"
	keyMetricsFile    = "output.metrics_file"
	keySources        = "sources"
)

// defaultAPIKeyEnvs names the environment variable read for each provider
// when none is configured.
var defaultAPIKeyEnvs = map[domain.AIProvider]string{
	domain.AIProviderAnthropic: "ANTHROPIC_API_KEY",
	domain.AIProviderOpenAI:    "OPENAI_API_KEY",
	domain.AIProviderGemini:    "GEMINI_API_KEY",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	provider := s.getProvider(keyLLMProvider, defaults.Oracle.LLM.Provider)
	keyEnv := s.getString(keyLLMAPIKeyEnv, defaultAPIKeyEnvs[provider])

	settings := &domain.Settings{
		Thresholds: domain.Thresholds{
			MatchThreshold: s.getExplicitInt(keyMatchThreshold, defaults.Thresholds.MatchThreshold),
			MinSources:     s.getExplicitInt(keyMinSources, defaults.Thresholds.MinSources),
			HighSources:    s.getExplicitInt(keyHighSources, defaults.Thresholds.HighSources),
		},
		Workers: s.getInt(keyWorkers, defaults.Workers),
		Oracle: domain.OracleSettings{
			LLM: domain.LLMSettings{
				Provider:  provider,
				Model:     s.getString(keyLLMModel, domain.DefaultLLMModels()[provider]),
				BaseURL:   s.configStore.GetString(keyLLMBaseURL),
				APIKeyEnv: keyEnv,
			},
			RequestsPerSecond: s.getFloat(keyOracleRPS, defaults.Oracle.RequestsPerSecond),
			Burst:             s.getInt(keyOracleBurst, defaults.Oracle.Burst),
			MaxConcurrency:    s.getInt(keyOracleConc, defaults.Oracle.MaxConcurrency),
			RequestBudget:     s.getExplicitInt(keyOracleBudget, defaults.Oracle.RequestBudget),
			MaxRetries:        s.getInt(keyOracleRetries, defaults.Oracle.MaxRetries),
			BackoffBase:       s.getDuration(keyOracleBackoff, defaults.Oracle.BackoffBase),
			BackoffMax:        s.getDuration(keyOracleMaxWait, defaults.Oracle.BackoffMax),
			Timeout:           s.getDuration(keyOracleTimeout, defaults.Oracle.Timeout),
		},
		Storage: domain.StorageSettings{
			Backend:  domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			DataDir:  s.configStore.GetString(keyStorageDataDir),
			RedisURL: s.configStore.GetString(keyStorageRedis),
			CacheTTL: s.getDuration(keyStorageTTL, defaults.Storage.CacheTTL),
		},
		Roster: domain.RosterSettings{
			Path: s.configStore.GetString(keyRosterPath),
		},
		Output: domain.OutputSettings{
			Dir:         s.getString(keyOutputDir, defaults.Output.Dir),
			MetricsFile: s.configStore.GetString(keyMetricsFile),
		},
	}
	if keyEnv != "" {
		settings.Oracle.LLM.APIKey = s.getenv(keyEnv)
	}
	if provider.IsLocal() && settings.Oracle.LLM.BaseURL == "" {
		settings.Oracle.LLM.BaseURL = "http://localhost:11434"
	}

	sources, err := s.getSources()
	if err != nil {
		return nil, err
	}
	settings.Sources = sources

	return settings, nil
}

// Save persists application settings. API keys are never written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyMatchThreshold, settings.Thresholds.MatchThreshold},
		{keyWorkers, settings.Workers},
		{keyMinSources, settings.Thresholds.MinSources},
		{keyHighSources, settings.Thresholds.HighSources},
		{keyLLMProvider, settings.Oracle.LLM.Provider.String()},
		{keyLLMModel, settings.Oracle.LLM.Model},
		{keyLLMBaseURL, settings.Oracle.LLM.BaseURL},
		{keyLLMAPIKeyEnv, settings.Oracle.LLM.APIKeyEnv},
		{keyOracleRPS, settings.Oracle.RequestsPerSecond},
		{keyOracleBurst, settings.Oracle.Burst},
		{keyOracleConc, settings.Oracle.MaxConcurrency},
		{keyOracleBudget, settings.Oracle.RequestBudget},
		{keyOracleRetries, settings.Oracle.MaxRetries},
		{keyOracleBackoff, settings.Oracle.BackoffBase.String()},
		{keyOracleMaxWait, settings.Oracle.BackoffMax.String()},
		{keyOracleTimeout, settings.Oracle.Timeout.String()},
		{keyStorageBackend, string(settings.Storage.Backend)},
		{keyStorageDataDir, settings.Storage.DataDir},
		{keyStorageRedis, settings.Storage.RedisURL},
		{keyStorageTTL, settings.Storage.CacheTTL.String()},
		{keyRosterPath, settings.Roster.Path},
		{keyOutputDir, settings.Output.Dir},
		{keyMetricsFile, settings.Output.MetricsFile},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	tables := make([]any, 0, len(settings.Sources))
	for _, src := range settings.Sources {
		tables = append(tables, map[string]any{
			"id":        string(src.ID),
			"kind":      string(src.Kind),
			"path":      src.Path,
			"owner":     src.Owner,
			"repo":      src.Repo,
			"ref":       src.Ref,
			"token_env": src.TokenEnv,
		})
	}
	if err := s.configStore.Set(keySources, tables); err != nil {
		return fmt.Errorf("save sources: %w", err)
	}
	return nil
}

// SetLLMProvider configures the oracle provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKeyEnv string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Oracle.LLM.Provider = provider
	if model != "" {
		settings.Oracle.LLM.Model = model
	} else {
		settings.Oracle.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	if provider.IsLocal() {
		if settings.Oracle.LLM.BaseURL == "" {
			settings.Oracle.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.Oracle.LLM.BaseURL = ""
	}

	if apiKeyEnv == "" {
		apiKeyEnv = defaultAPIKeyEnvs[provider]
	}
	settings.Oracle.LLM.APIKeyEnv = apiKeyEnv

	return s.Save(settings)
}

// Validate checks the settings, including the threshold floors.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.Oracle.LLM)
}

func (s *SettingsService) getSources() ([]domain.SourceSettings, error) {
	var out []domain.SourceSettings
	for i, table := range s.configStore.GetTables(keySources) {
		str := func(field string) string {
			v, _ := table[field].(string)
			return v
		}
		id, err := domain.ParseSourceID(str("id"))
		if err != nil {
			return nil, fmt.Errorf("sources[%d]: %w", i, err)
		}
		kind := domain.SourceKind(str("kind"))
		if kind == "" {
			kind = domain.SourceKindFile
		}
		out = append(out, domain.SourceSettings{
			ID:       id,
			Kind:     kind,
			Path:     str("path"),
			Owner:    str("owner"),
			Repo:     str("repo"),
			Ref:      str("ref"),
			TokenEnv: str("token_env"),
		})
	}
	return out, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

// getExplicitInt honours an explicit zero so that a loosened floor is
// rejected by validation instead of silently defaulted.
func (s *SettingsService) getExplicitInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	raw := s.configStore.GetString(key)
	if raw == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
