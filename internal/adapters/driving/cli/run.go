package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

var runJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cross-referencing pipeline",
	Long: `Runs the full pipeline: ingest the roster and every entity source, normalise
names, shortlist similar names, disambiguate each pair with the oracle,
corroborate across sources, classify and cite corroborated connections,
and publish the results.

A connection is published only when it is documented in at least two
independent databases. Failures isolated to one source, pair or candidate
are recorded as faults and retried on the next run.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&runJSON, "json", false, "output the run report as JSON")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	if newPipeline == nil {
		return errors.New("pipeline not configured")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := newPipeline(ctx)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	report, runErr := pipeline.Run(ctx)
	if report != nil {
		if err := outputReport(cmd, report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

func outputReport(cmd *cobra.Command, report *domain.RunReport) error {
	if runJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	out := cmd.OutOrStdout()
	styled, width := terminalInfo(out)
	_, err := fmt.Fprint(out, renderReport(report, styled, width))
	return err
}
