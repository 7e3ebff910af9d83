package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

const defaultReportWidth = 60

// reportStyles holds the styles used for run summaries.
type reportStyles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Muted   lipgloss.Style
	High    lipgloss.Style
	Medium  lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
}

func newReportStyles(styled bool) reportStyles {
	if !styled {
		plain := lipgloss.NewStyle()
		return reportStyles{plain, plain, plain, plain, plain, plain, plain}
	}
	return reportStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#06B6D4")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
		High:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		Medium:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")),
	}
}

// terminalInfo reports whether w is a terminal and its width.
func terminalInfo(w io.Writer) (bool, int) {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false, defaultReportWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return true, defaultReportWidth
	}
	return true, min(width, 100)
}

// renderReport formats a run report for the terminal.
func renderReport(report *domain.RunReport, styled bool, width int) string {
	s := newReportStyles(styled)
	if width <= 0 {
		width = defaultReportWidth
	}
	rule := s.Muted.Render(strings.Repeat("-", width))

	var b strings.Builder
	fmt.Fprintln(&b, s.Title.Render("Run "+report.RunID))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Stage:      %s\n", report.Stage)
	if !report.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "Duration:   %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintf(&b, "Candidates: %d\n", report.Candidates)
	fmt.Fprintf(&b, "Pairs:      %d shortlisted\n", report.Pairs)
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, s.Heading.Render("Sources"))
	for _, src := range report.SourcesSearched() {
		fmt.Fprintf(&b, "  %-12s %d entities\n", src, report.EntitiesBySource[src])
	}
	for _, src := range report.UnavailableSources {
		fmt.Fprintf(&b, "  %-12s %s\n", src, s.Error.Render("unavailable"))
	}
	fmt.Fprintln(&b)

	counts := report.TierCounts()
	fmt.Fprintln(&b, s.Heading.Render("Confidence"))
	fmt.Fprintf(&b, "  %-14s %d\n", domain.TierHigh, counts[domain.TierHigh])
	fmt.Fprintf(&b, "  %-14s %d\n", domain.TierMedium, counts[domain.TierMedium])
	fmt.Fprintf(&b, "  %-14s %d %s\n", domain.TierNotDisplayed, counts[domain.TierNotDisplayed],
		s.Muted.Render("(audit only)"))
	fmt.Fprintf(&b, "  %-14s %d\n", domain.TierNone, counts[domain.TierNone])
	fmt.Fprintln(&b)

	var published, blocked []*domain.CandidateOutcome
	for _, id := range report.CandidateIDs() {
		o := report.Outcomes[id]
		switch {
		case o.Connection != nil:
			published = append(published, o)
		case o.Blocked:
			blocked = append(blocked, o)
		}
	}

	if len(published) > 0 {
		fmt.Fprintln(&b, s.Heading.Render("Connections"))
		for _, o := range published {
			tier := s.Medium.Render(string(o.Connection.Tier))
			if o.Connection.Tier == domain.TierHigh {
				tier = s.High.Render(string(o.Connection.Tier))
			}
			fmt.Fprintf(&b, "  %-28s %-13s %s  %d sources, %d citations\n",
				o.CandidateID, o.Connection.Level, tier, o.Connection.NumSources, len(o.Connection.Citations))
		}
		fmt.Fprintln(&b)
	}

	if len(blocked) > 0 {
		fmt.Fprintln(&b, s.Heading.Render("Withheld"))
		for _, o := range blocked {
			fmt.Fprintf(&b, "  %-28s %s\n", o.CandidateID, s.Warning.Render(o.BlockReason))
		}
		fmt.Fprintln(&b)
	}

	faults := fmt.Sprintf("Faults: %d", len(report.Faults))
	if report.DeferredFromPrevious > 0 {
		faults += fmt.Sprintf(" (%d deferred from previous runs)", report.DeferredFromPrevious)
	}
	if len(report.Faults) > 0 {
		faults = s.Warning.Render(faults)
	}
	fmt.Fprintln(&b, faults)

	return b.String()
}
