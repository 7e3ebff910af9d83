package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize [name]",
	Short: "Show the canonical form of a name",
	Long: `Shows the canonical comparable form of a person name and every variant
used for matching: nickname expansions, reordered and middle-name-dropped
forms. Generational suffixes are kept so that Jr. and Sr. never collapse.`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

var scoreCmd = &cobra.Command{
	Use:   "score [name] [name]",
	Short: "Score the similarity of two names",
	Long: `Scores two person names on the 0-100 scale used for shortlisting. The
score is the best across all variants of both names.`,
	Args: cobra.ExactArgs(2),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	rootCmd.AddCommand(scoreCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	if nameService == nil {
		return errors.New("name service not configured")
	}

	cmd.Printf("Canonical: %s\n", nameService.Normalize(args[0]))
	variants := nameService.Variants(args[0])
	if len(variants) == 0 {
		return nil
	}
	cmd.Println("Variants:")
	for _, v := range variants {
		cmd.Printf("  %s\n", v)
	}
	return nil
}

func runScore(cmd *cobra.Command, args []string) error {
	if nameService == nil {
		return errors.New("name service not configured")
	}

	threshold := domain.MatchThresholdFloor
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		threshold = settings.Thresholds.MatchThreshold
	}

	score := nameService.Score(args[0], args[1])
	verdict := "below threshold"
	if score >= threshold {
		verdict = "shortlisted"
	}
	cmd.Printf("Score: %d (%s, threshold %d)\n", score, verdict, threshold)
	return nil
}
