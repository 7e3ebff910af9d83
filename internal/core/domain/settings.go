package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// Enforced floors. Configuration may tighten these but never loosen them.
const (
	// MatchThresholdFloor is the minimum similarity score for shortlisting.
	MatchThresholdFloor = 92

	// MinSourcesFloor is the minimum distinct-source count for a displayed connection.
	MinSourcesFloor = 2

	// HighSourcesFloor is the minimum distinct-source count for HIGH confidence.
	HighSourcesFloor = 3
)

// Thresholds holds the matching and corroboration cut-offs.
type Thresholds struct {
	// MatchThreshold is the inclusive similarity score cut-off, 0-100.
	MatchThreshold int

	// MinSources is the distinct-source count needed for MEDIUM.
	MinSources int

	// HighSources is the distinct-source count needed for HIGH.
	HighSources int
}

// DefaultThresholds returns the floor values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MatchThreshold: MatchThresholdFloor,
		MinSources:     MinSourcesFloor,
		HighSources:    HighSourcesFloor,
	}
}

// Validate rejects any threshold set looser than the floors.
func (t Thresholds) Validate() error {
	if t.MatchThreshold < MatchThresholdFloor || t.MatchThreshold > 100 {
		return fmt.Errorf("%w: match threshold %d (floor %d)",
			ErrThresholdBelowFloor, t.MatchThreshold, MatchThresholdFloor)
	}
	if t.MinSources < MinSourcesFloor {
		return fmt.Errorf("%w: min_sources %d (floor %d)",
			ErrThresholdBelowFloor, t.MinSources, MinSourcesFloor)
	}
	if t.HighSources < HighSourcesFloor || t.HighSources <= t.MinSources {
		return fmt.Errorf("%w: high_sources %d must be >= %d and > min_sources %d",
			ErrThresholdBelowFloor, t.HighSources, HighSourcesFloor, t.MinSources)
	}
	return nil
}

// AIProvider identifies a reasoning service provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// AllLLMProviders returns providers that can act as the oracle.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-2.5-flash",
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is resolved at load time from APIKeyEnv; never persisted.
	APIKey string

	// APIKeyEnv names the environment variable holding the key.
	APIKeyEnv string
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// OracleSettings holds the reasoning collaborator's call discipline.
type OracleSettings struct {
	LLM LLMSettings

	// RequestsPerSecond and Burst configure the client-side rate limiter.
	RequestsPerSecond float64
	Burst             int

	// MaxConcurrency caps in-flight oracle calls.
	MaxConcurrency int

	// RequestBudget caps oracle calls per run. Zero means unlimited.
	RequestBudget int

	// MaxRetries is the number of attempts for transient failures.
	MaxRetries int

	// BackoffBase and BackoffMax bound the exponential backoff between attempts.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// Timeout bounds a single oracle call.
	Timeout time.Duration
}

// Validate checks the oracle call discipline.
func (o OracleSettings) Validate() error {
	if o.RequestsPerSecond <= 0 || o.Burst < 1 {
		return fmt.Errorf("%w: oracle rate %.2f/s burst %d", ErrInvalidInput, o.RequestsPerSecond, o.Burst)
	}
	if o.MaxConcurrency < 1 || o.MaxRetries < 1 {
		return fmt.Errorf("%w: oracle concurrency %d retries %d", ErrInvalidInput, o.MaxConcurrency, o.MaxRetries)
	}
	if o.RequestBudget < 0 {
		return fmt.Errorf("%w: negative request budget", ErrInvalidInput)
	}
	return nil
}

// StorageBackend selects where verdict cache, faults and audit records live.
type StorageBackend string

// Storage backends.
const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageMemory, StorageSQLite, StorageRedis:
		return true
	default:
		return false
	}
}

// StorageSettings configures persistence.
type StorageSettings struct {
	Backend StorageBackend

	// DataDir holds the sqlite database. Also used for faults and audit with redis.
	DataDir string

	// RedisURL is the verdict cache location for the redis backend.
	RedisURL string

	// CacheTTL expires cached verdicts. Zero keeps them indefinitely.
	CacheTTL time.Duration
}

// SourceKind selects how an entity batch is fetched.
type SourceKind string

// Source kinds.
const (
	SourceKindFile   SourceKind = "file"
	SourceKindGitHub SourceKind = "github"
)

// SourceSettings configures one entity source.
type SourceSettings struct {
	ID   SourceID
	Kind SourceKind

	// Path is the local file (file kind) or the repository path (github kind).
	Path string

	// Owner, Repo and Ref locate a GitHub-hosted batch.
	Owner string
	Repo  string
	Ref   string

	// TokenEnv names the environment variable holding a GitHub token.
	TokenEnv string
}

// Validate checks a source entry.
func (s SourceSettings) Validate() error {
	if !s.ID.IsValid() {
		return fmt.Errorf("%w: source %q", ErrUnsupportedType, s.ID)
	}
	switch s.Kind {
	case SourceKindFile:
		if s.Path == "" {
			return fmt.Errorf("%w: source %s has no path", ErrInvalidInput, s.ID)
		}
	case SourceKindGitHub:
		if s.Owner == "" || s.Repo == "" || s.Path == "" {
			return fmt.Errorf("%w: source %s needs owner, repo and path", ErrInvalidInput, s.ID)
		}
	default:
		return fmt.Errorf("%w: source kind %q", ErrUnsupportedType, s.Kind)
	}
	return nil
}

// RosterSettings locates the candidate roster.
type RosterSettings struct {
	Path string
}

// OutputSettings locates the publication artifacts.
type OutputSettings struct {
	Dir string

	// MetricsFile, when set, receives a Prometheus text exposition after each run.
	MetricsFile string
}

// Settings holds all application settings.
type Settings struct {
	Thresholds Thresholds

	// Workers sizes the matching and classification worker pools.
	Workers int

	Oracle  OracleSettings
	Storage StorageSettings
	Sources []SourceSettings
	Roster  RosterSettings
	Output  OutputSettings
}

// DefaultSettings returns settings with the floor thresholds and a
// conservative oracle discipline. The oracle provider is left unconfigured.
func DefaultSettings() Settings {
	return Settings{
		Thresholds: DefaultThresholds(),
		Workers:    4,
		Oracle: OracleSettings{
			RequestsPerSecond: 2,
			Burst:             1,
			MaxConcurrency:    4,
			MaxRetries:        3,
			BackoffBase:       500 * time.Millisecond,
			BackoffMax:        8 * time.Second,
			Timeout:           60 * time.Second,
		},
		Storage: StorageSettings{
			Backend: StorageMemory,
		},
		Output: OutputSettings{
			Dir: "data",
		},
	}
}

// Validate checks the whole configuration.
func (s Settings) Validate() error {
	if err := s.Thresholds.Validate(); err != nil {
		return err
	}
	if s.Workers < 1 {
		return fmt.Errorf("%w: workers %d", ErrInvalidInput, s.Workers)
	}
	if err := s.Oracle.Validate(); err != nil {
		return err
	}
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: storage backend %q", ErrUnsupportedType, s.Storage.Backend)
	}
	if s.Storage.Backend == StorageRedis && s.Storage.RedisURL == "" {
		return fmt.Errorf("%w: redis backend without url", ErrInvalidInput)
	}
	for _, src := range s.Sources {
		if err := src.Validate(); err != nil {
			return err
		}
	}
	return nil
}
