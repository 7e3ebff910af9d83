package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// MergeRoster merges candidate lists from one or more roster providers.
// Candidates with the same normalised name, jurisdiction and office are
// merged, missing fields filled from later entries and differing names kept
// as aliases. Candidates without an ID get one derived from jurisdiction,
// office and name; colliding IDs are made unique with a numeric suffix.
// The result is ordered by ID.
func MergeRoster(normalizer *NameNormalizer, lists ...[]domain.Candidate) []domain.Candidate {
	if normalizer == nil {
		normalizer = NewNameNormalizer(nil)
	}

	var order []string
	merged := make(map[string]*domain.Candidate)

	for _, list := range lists {
		for _, c := range list {
			if strings.TrimSpace(c.FullName) == "" {
				continue
			}
			key := normalizer.Normalize(c.FullName) + "|" +
				strings.ToUpper(strings.TrimSpace(c.Jurisdiction)) + "|" +
				strings.ToLower(strings.TrimSpace(c.Office))

			existing, ok := merged[key]
			if !ok {
				cp := c
				cp.Aliases = append([]string(nil), c.Aliases...)
				merged[key] = &cp
				order = append(order, key)
				continue
			}
			mergeCandidate(existing, c)
		}
	}

	out := make([]domain.Candidate, 0, len(order))
	for _, key := range order {
		c := merged[key]
		if c.ID == "" {
			c.ID = domain.BuildCandidateID(*c, normalizer.Parse(c.FullName).Canonical())
		}
		c.Aliases = dedupeAliases(c.FullName, c.Aliases)
		out = append(out, *c)
	}

	uniqueIDs(out)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func mergeCandidate(dst *domain.Candidate, src domain.Candidate) {
	if dst.ID == "" {
		dst.ID = src.ID
	}
	if dst.District == "" {
		dst.District = src.District
	}
	if dst.Party == "" {
		dst.Party = src.Party
	}
	if dst.FECID == "" {
		dst.FECID = src.FECID
	}
	dst.Incumbent = dst.Incumbent || src.Incumbent
	if src.FullName != dst.FullName {
		dst.Aliases = append(dst.Aliases, src.FullName)
	}
	dst.Aliases = append(dst.Aliases, src.Aliases...)
}

func dedupeAliases(fullName string, aliases []string) []string {
	seen := map[string]struct{}{fullName: {}}
	var out []string
	for _, a := range aliases {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func uniqueIDs(candidates []domain.Candidate) {
	used := make(map[string]int)
	for i := range candidates {
		id := candidates[i].ID
		used[id]++
		if n := used[id]; n > 1 {
			candidates[i].ID = fmt.Sprintf("%s-%d", id, n)
		}
	}
}
