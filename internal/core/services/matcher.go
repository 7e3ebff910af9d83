package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/sync/errgroup"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// Match is the best-scoring variant pair between two names.
type Match struct {
	Score int
	A     string
	B     string
}

// Matcher scores candidate names against entity names and shortlists
// pairs at or above the threshold. Party, office and incumbency are never
// consulted.
type Matcher struct {
	normalizer *NameNormalizer
	threshold  int
	workers    int
}

// NewMatcher creates a matcher. The threshold must respect the floor.
func NewMatcher(normalizer *NameNormalizer, thresholds domain.Thresholds, workers int) (*Matcher, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, fmt.Errorf("create matcher: %w", err)
	}
	if normalizer == nil {
		normalizer = NewNameNormalizer(nil)
	}
	if workers < 1 {
		workers = 1
	}
	return &Matcher{
		normalizer: normalizer,
		threshold:  thresholds.MatchThreshold,
		workers:    workers,
	}, nil
}

// Threshold returns the inclusive acceptance score.
func (m *Matcher) Threshold() int {
	return m.threshold
}

// Score returns the similarity of two parsed names, 0-100: the maximum over
// all variant pairs. Names with conflicting generational suffixes score 0.
func (m *Matcher) Score(a, b domain.PersonName) int {
	return m.Best(a, b).Score
}

// Best returns the maximum-scoring variant pair of two parsed names.
func (m *Matcher) Best(a, b domain.PersonName) Match {
	if a.IsEmpty() || b.IsEmpty() || !a.SuffixCompatible(b) {
		return Match{}
	}
	return bestOf(m.normalizer.Variants(a), m.normalizer.Variants(b))
}

// Shortlist compares every candidate name form against every entity name
// form and returns the pairs scoring at or above the threshold, ordered by
// source then entity key. Entities are scored in parallel.
func (m *Matcher) Shortlist(
	ctx context.Context,
	candidate domain.Candidate,
	entities []domain.Entity,
) ([]domain.MatchCandidatePair, error) {
	candidateNames := m.parseAll(candidate.FullName, candidate.Aliases)

	results := make([]*domain.MatchCandidatePair, len(entities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	for i := range entities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entity := entities[i]
			best := m.bestAcross(candidateNames, m.parseAll(entity.RawName, entity.Aliases))
			if best.Score < m.threshold {
				return nil
			}
			results[i] = &domain.MatchCandidatePair{
				CandidateID:      candidate.ID,
				Entity:           entity,
				Score:            best.Score,
				CandidateVariant: best.A,
				EntityVariant:    best.B,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("shortlist %s: %w", candidate.ID, err)
	}

	var pairs []domain.MatchCandidatePair
	for _, p := range results {
		if p != nil {
			pairs = append(pairs, *p)
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Entity.Key() < pairs[j].Entity.Key()
	})
	return pairs, nil
}

func (m *Matcher) parseAll(primary string, aliases []string) []domain.PersonName {
	names := make([]domain.PersonName, 0, 1+len(aliases))
	for _, raw := range append([]string{primary}, aliases...) {
		if name := m.normalizer.Parse(raw); !name.IsEmpty() {
			names = append(names, name)
		}
	}
	return names
}

func (m *Matcher) bestAcross(as, bs []domain.PersonName) Match {
	var best Match
	for _, a := range as {
		for _, b := range bs {
			if got := m.Best(a, b); got.Score > best.Score {
				best = got
			}
		}
	}
	return best
}

func bestOf(as, bs []string) Match {
	var best Match
	for _, a := range as {
		for _, b := range bs {
			score := Similarity(a, b)
			if score > best.Score || (score == best.Score && best.A == "") {
				best = Match{Score: score, A: a, B: b}
			}
			if best.Score == 100 {
				return best
			}
		}
	}
	return best
}

// Similarity is the token-sorted normalised edit-distance ratio of two
// comparable strings, floored to an integer in 0-100.
func Similarity(a, b string) int {
	a, b = sortTokens(a), sortTokens(b)
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return (100 * (maxLen - dist)) / maxLen
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
