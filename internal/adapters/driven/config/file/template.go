package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrConfigExists is returned by WriteTemplate when a config file is present
// and overwrite was not requested.
var ErrConfigExists = errors.New("config file already exists")

// configTemplate documents every key the settings service reads. Thresholds
// may be raised but never lowered below 92 / 2 / 3.
const configTemplate = `# kbyv configuration

[matching]
# Inclusive similarity cut-off, 0-100. Floor: 92.
threshold = 92
workers = 4

[corroboration]
# Distinct databases needed for MEDIUM (floor 2) and HIGH (floor 3).
min_sources = 2
high_sources = 3

[oracle]
# One of: ollama, openai, anthropic, gemini. Leave empty to run without an oracle.
provider = ""
model = ""
# base_url = "http://localhost:11434"
# The API key is read from this environment variable and never written here.
# api_key_env = "ANTHROPIC_API_KEY"
requests_per_second = 2.0
burst = 1
max_concurrency = 4
# Zero means unlimited.
request_budget = 0
max_retries = 3
backoff_base = "500ms"
backoff_max = "8s"
timeout = "60s"

[storage]
# One of: memory, sqlite, redis.
backend = "sqlite"
data_dir = "data"
# redis_url = "redis://localhost:6379/0"
# cache_ttl = "720h"

[roster]
path = "candidates.yaml"

[output]
dir = "data"
# metrics_file = "data/metrics.prom"

# One table per entity database. kind is "file" (JSON or YAML) or "github".
[[sources]]
id = "doj"
kind = "file"
path = "sources/doj.json"

[[sources]]
id = "phelix"
kind = "file"
path = "sources/phelix.json"

# [[sources]]
# id = "maxandrews"
# kind = "github"
# owner = "example"
# repo = "entity-exports"
# ref = "main"
# path = "maxandrews.json"
# token_env = "GITHUB_TOKEN"
`

// WriteTemplate writes the annotated default configuration into configDir.
// Returns the written path.
func WriteTemplate(configDir string, overwrite bool) (string, error) {
	if configDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return "", err
		}
		configDir = dir
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, ConfigFileName)
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return path, fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
