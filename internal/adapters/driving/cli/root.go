// Package cli provides the kbyv command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
	"github.com/knowbeforeyouvote/kbyv/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

var (
	configDir string
	verbose   bool
	noOracle  bool
)

// Services consumed by the commands. Set by Configure or by the bootstrap
// function once flags are parsed.
var (
	settingsService driving.SettingsService
	nameService     driving.NameService
	faultService    driving.FaultService
	newPipeline     PipelineFactory
	closeServices   func() error
)

// PipelineFactory builds the pipeline for one run. Building is deferred
// until a run is requested because it connects to the oracle.
type PipelineFactory func(ctx context.Context) (driving.Pipeline, error)

// Options are the global flags passed to the bootstrap function.
type Options struct {
	// ConfigDir overrides the default config directory.
	ConfigDir string

	// NoOracle runs without a reasoning collaborator. Every shortlisted
	// pair is then UNCERTAIN and nothing is published as a connection.
	NoOracle bool
}

// Services groups the ports the commands use.
type Services struct {
	Settings driving.SettingsService
	Names    driving.NameService
	Faults   driving.FaultService
	Pipeline PipelineFactory

	// Close releases stores and connections. May be nil.
	Close func() error
}

// BootstrapFunc builds services from the parsed global flags.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var bootstrap BootstrapFunc

var rootCmd = &cobra.Command{
	Use:   "kbyv",
	Short: "Cross-reference ballot candidates against document databases",
	Long: `kbyv cross-references ballot candidates against independently collected
entity databases, corroborates matches across sources, and publishes only
connections documented in at least two independent databases, each with
primary-source citations.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.kbyv)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug output")
	rootCmd.PersistentFlags().BoolVar(&noOracle, "no-oracle", false,
		"run without the disambiguation oracle (testing only, publishes no connections)")
}

// SetBootstrap registers the function that builds services after flags are parsed.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// Configure sets the services directly.
func Configure(s *Services) {
	if s == nil {
		settingsService, nameService, faultService, newPipeline, closeServices = nil, nil, nil, nil, nil
		return
	}
	settingsService = s.Settings
	nameService = s.Names
	faultService = s.Faults
	newPipeline = s.Pipeline
	closeServices = s.Close
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd.Name() == "version" || isConfigInit(cmd) {
		return nil
	}

	s, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, NoOracle: noOracle})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	Configure(s)
	return nil
}

func isConfigInit(cmd *cobra.Command) bool {
	return cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config"
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	err := rootCmd.Execute()
	if closeServices != nil {
		if closeErr := closeServices(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close: %w", closeErr))
		}
	}
	_ = logger.Sync() //nolint:errcheck // stderr may not support sync
	return err
}
