package domain

import "fmt"

// ConfidenceTier is derived solely from the distinct-source count.
type ConfidenceTier string

// Confidence tiers, in increasing order.
const (
	// TierNone means no confirmed link at all.
	TierNone ConfidenceTier = "NONE"

	// TierNotDisplayed means a single source; retained for audit, never surfaced.
	TierNotDisplayed ConfidenceTier = "NOT_DISPLAYED"

	// TierMedium means the minimum number of distinct sources was reached.
	TierMedium ConfidenceTier = "MEDIUM"

	// TierHigh means the high-confidence number of distinct sources was reached.
	TierHigh ConfidenceTier = "HIGH"
)

// Rank orders tiers for monotonicity checks.
func (t ConfidenceTier) Rank() int {
	switch t {
	case TierNotDisplayed:
		return 1
	case TierMedium:
		return 2
	case TierHigh:
		return 3
	default:
		return 0
	}
}

// IsPublic returns true for tiers that may reach the classifier and publication.
func (t ConfidenceTier) IsPublic() bool {
	return t == TierMedium || t == TierHigh
}

// String returns the string representation.
func (t ConfidenceTier) String() string {
	return string(t)
}

// CorroborationVerdict is the per-candidate result of corroboration.
type CorroborationVerdict struct {
	CandidateID string

	// DistinctSourceCount counts distinct source databases, not links.
	DistinctSourceCount int

	Tier ConfidenceTier

	// Sources lists the credited databases in stable order.
	Sources []SourceID

	// SupportingLinks holds every confirmed link, several per source allowed.
	SupportingLinks []ConfirmedLink

	// EvidenceTypes are the distinct evidence kinds across supporting links.
	EvidenceTypes []string
}

// Caveat returns the qualification printed with MEDIUM connections.
func (v CorroborationVerdict) Caveat() string {
	if v.Tier != TierMedium {
		return ""
	}
	return fmt.Sprintf("Based on limited documentation from %d independent sources.", v.DistinctSourceCount)
}

// LinksFrom returns the supporting links credited to one source.
func (v CorroborationVerdict) LinksFrom(source SourceID) []ConfirmedLink {
	var out []ConfirmedLink
	for _, l := range v.SupportingLinks {
		if l.SourceID == source {
			out = append(out, l)
		}
	}
	return out
}
