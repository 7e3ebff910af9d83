package driving

import "github.com/knowbeforeyouvote/kbyv/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings. API keys are resolved
	// from the environment variables named in configuration.
	Get() (*domain.Settings, error)

	// Save persists application settings. API keys are never persisted.
	Save(settings *domain.Settings) error

	// SetLLMProvider configures the oracle provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKeyEnv string) error

	// Validate checks the settings, including the threshold floors.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
