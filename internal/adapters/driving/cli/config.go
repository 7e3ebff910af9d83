package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/config/file"
	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and edit kbyv configuration: thresholds, the oracle provider,
storage, entity sources and output locations.

Thresholds may be tightened but never loosened below the documented floors
(match score 92, two sources for MEDIUM, three for HIGH).`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write an annotated default configuration",
	Long: `Writes config.toml with every setting at its default and two example
entity sources. Refuses to overwrite an existing file unless --force is set.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the oracle provider",
	Long: `Select the reasoning provider used for disambiguation and classification.
API keys are read from an environment variable; only its name is stored.`,
	RunE: runConfigLLM,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configLLMCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Matching]")
	cmd.Printf("  Threshold: %d\n", settings.Thresholds.MatchThreshold)
	cmd.Printf("  Workers: %d\n", settings.Workers)
	cmd.Println()

	cmd.Println("[Corroboration]")
	cmd.Printf("  MEDIUM at: %d sources\n", settings.Thresholds.MinSources)
	cmd.Printf("  HIGH at: %d sources\n", settings.Thresholds.HighSources)
	cmd.Println()

	llm := settings.Oracle.LLM
	cmd.Println("[Oracle]")
	cmd.Printf("  Provider: %s\n", llm.Provider.Description())
	cmd.Printf("  Model: %s\n", llm.Model)
	if llm.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", llm.BaseURL)
	}
	if llm.Provider.RequiresAPIKey() {
		if llm.APIKey != "" {
			cmd.Printf("  API Key: %s (from $%s)\n", maskAPIKey(llm.APIKey), llm.APIKeyEnv)
		} else {
			cmd.Printf("  API Key: (not set, export $%s)\n", llm.APIKeyEnv)
		}
	}
	cmd.Printf("  Rate: %.2f/s burst %d, concurrency %d\n",
		settings.Oracle.RequestsPerSecond, settings.Oracle.Burst, settings.Oracle.MaxConcurrency)
	if settings.Oracle.RequestBudget > 0 {
		cmd.Printf("  Budget: %d calls per run\n", settings.Oracle.RequestBudget)
	}
	status := "configured"
	if !llm.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Backend == domain.StorageRedis {
		cmd.Printf("  Redis: %s\n", settings.Storage.RedisURL)
	}
	cmd.Println()

	cmd.Println("[Sources]")
	if len(settings.Sources) == 0 {
		cmd.Println("  (none)")
	}
	for _, src := range settings.Sources {
		switch src.Kind {
		case domain.SourceKindGitHub:
			cmd.Printf("  %-12s github %s/%s/%s\n", src.ID, src.Owner, src.Repo, src.Path)
		default:
			cmd.Printf("  %-12s file   %s\n", src.ID, src.Path)
		}
	}
	cmd.Println()

	cmd.Println("[Output]")
	cmd.Printf("  Roster: %s\n", settings.Roster.Path)
	cmd.Printf("  Directory: %s\n", settings.Output.Dir)
	if settings.Output.MetricsFile != "" {
		cmd.Printf("  Metrics: %s\n", settings.Output.MetricsFile)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Edit the config file or run 'kbyv config init --force' to start over.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path, err := file.WriteTemplate(configDir, configInitForce)
	if err != nil {
		if errors.Is(err, file.ErrConfigExists) {
			return fmt.Errorf("%w (use --force to overwrite)", err)
		}
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selectedProvider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKeyEnv string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Environment variable holding the API key [provider default]: ")
		apiKeyEnv = readLine(reader)
	}

	if err := settingsService.SetLLMProvider(selectedProvider, model, apiKeyEnv); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
