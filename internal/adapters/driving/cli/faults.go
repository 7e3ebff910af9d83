package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var faultsCmd = &cobra.Command{
	Use:   "faults",
	Short: "List faults awaiting retry",
	Long: `Lists faults recorded by earlier runs that have not been resolved: oracle
calls that failed, sources that could not be loaded, and records dropped
for data-quality reasons. Each is retried on the next run.`,
	Args: cobra.NoArgs,
	RunE: runFaults,
}

func init() {
	rootCmd.AddCommand(faultsCmd)
}

func runFaults(cmd *cobra.Command, _ []string) error {
	if faultService == nil {
		return errors.New("fault service not configured")
	}

	faults, err := faultService.Outstanding(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list faults: %w", err)
	}

	if len(faults) == 0 {
		cmd.Println("No outstanding faults.")
		return nil
	}

	cmd.Printf("%d outstanding faults:\n\n", len(faults))
	for _, f := range faults {
		subject := f.CandidateID
		if f.SourceID != "" {
			if subject != "" {
				subject += " "
			}
			subject += "[" + string(f.SourceID) + "]"
		}
		if f.Subject != "" {
			subject += " " + f.Subject
		}
		cmd.Printf("  %-12s %-14s %s\n", f.Kind, f.Stage, subject)
		cmd.Printf("      %s (run %s, %s)\n", f.Reason, f.RunID, f.At.Format("2006-01-02 15:04"))
	}
	return nil
}
