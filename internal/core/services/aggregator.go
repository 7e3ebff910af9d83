package services

import (
	"sort"
	"strings"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

const maxEvidenceTypeChars = 50

// Aggregate is the single choke point that turns confirmed links into a
// confidence tier. Links are deduplicated by candidate and entity, grouped by
// source, and only distinct sources count. Links for other candidates are
// ignored. The result depends only on the set of links, not their order.
func Aggregate(
	candidateID string,
	links []domain.ConfirmedLink,
	thresholds domain.Thresholds,
) domain.CorroborationVerdict {
	seen := make(map[string]struct{}, len(links))
	sources := make(map[domain.SourceID]struct{})
	var supporting []domain.ConfirmedLink

	for _, link := range links {
		if link.CandidateID != candidateID || !link.SourceID.IsValid() {
			continue
		}
		if _, dup := seen[link.Key()]; dup {
			continue
		}
		seen[link.Key()] = struct{}{}
		sources[link.SourceID] = struct{}{}
		supporting = append(supporting, link)
	}

	sort.SliceStable(supporting, func(i, j int) bool {
		return supporting[i].Key() < supporting[j].Key()
	})

	credited := make([]domain.SourceID, 0, len(sources))
	for s := range sources {
		credited = append(credited, s)
	}
	sort.Slice(credited, func(i, j int) bool { return credited[i] < credited[j] })

	return domain.CorroborationVerdict{
		CandidateID:         candidateID,
		DistinctSourceCount: len(credited),
		Tier:                TierFor(len(credited), thresholds),
		Sources:             credited,
		SupportingLinks:     supporting,
		EvidenceTypes:       evidenceTypes(supporting),
	}
}

// TierFor maps a distinct-source count onto a confidence tier. Thresholds
// below the floors are raised to them, so a zero value never publishes a
// single-source connection.
func TierFor(distinctSources int, thresholds domain.Thresholds) domain.ConfidenceTier {
	thresholds = enforceFloors(thresholds)
	switch {
	case distinctSources <= 0:
		return domain.TierNone
	case distinctSources >= thresholds.HighSources:
		return domain.TierHigh
	case distinctSources >= thresholds.MinSources:
		return domain.TierMedium
	default:
		return domain.TierNotDisplayed
	}
}

// enforceFloors tightens each source threshold to its floor. HighSources
// always sits above MinSources so MEDIUM stays reachable.
func enforceFloors(t domain.Thresholds) domain.Thresholds {
	t.MinSources = max(t.MinSources, domain.MinSourcesFloor)
	t.HighSources = max(t.HighSources, domain.HighSourcesFloor, t.MinSources+1)
	return t
}

func evidenceTypes(links []domain.ConfirmedLink) []string {
	set := make(map[string]struct{})
	for _, link := range links {
		for _, t := range link.Entity.EvidenceTypes {
			t = truncate(collapse(strings.ToLower(t)), maxEvidenceTypeChars)
			if t != "" {
				set[t] = struct{}{}
			}
		}
	}
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
