package services

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

func TestTierFor(t *testing.T) {
	th := domain.DefaultThresholds()

	tests := []struct {
		sources int
		want    domain.ConfidenceTier
	}{
		{-1, domain.TierNone},
		{0, domain.TierNone},
		{1, domain.TierNotDisplayed},
		{2, domain.TierMedium},
		{3, domain.TierHigh},
		{5, domain.TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.sources, th), "sources=%d", tt.sources)
	}

	strict := domain.Thresholds{MatchThreshold: 95, MinSources: 3, HighSources: 4}
	assert.Equal(t, domain.TierNotDisplayed, TierFor(2, strict))
	assert.Equal(t, domain.TierMedium, TierFor(3, strict))
	assert.Equal(t, domain.TierHigh, TierFor(4, strict))

	t.Run("thresholds below floors are raised", func(t *testing.T) {
		for _, th := range []domain.Thresholds{
			{},
			{MinSources: 1, HighSources: 1},
			{MinSources: -3, HighSources: 2},
		} {
			assert.Equal(t, domain.TierNotDisplayed, TierFor(1, th), "%+v", th)
			assert.Equal(t, domain.TierMedium, TierFor(2, th), "%+v", th)
			assert.Equal(t, domain.TierHigh, TierFor(3, th), "%+v", th)
		}
	})

	t.Run("inverted thresholds never loosen", func(t *testing.T) {
		inverted := domain.Thresholds{MinSources: 4, HighSources: 3}
		assert.Equal(t, domain.TierNotDisplayed, TierFor(3, inverted))
		assert.Equal(t, domain.TierMedium, TierFor(4, inverted))
		assert.Equal(t, domain.TierHigh, TierFor(5, inverted))
	})
}

func TestAggregate_CountsDistinctSources(t *testing.T) {
	const id = "ca-1-jane-doe"
	th := domain.DefaultThresholds()

	doj1 := entity(domain.SourceDOJ, "Jane Doe", "EFTA1")
	doj2 := entity(domain.SourceDOJ, "J. Doe", "EFTA2")
	doj2.EvidenceTypes = []string{"  Flight   LOG "}
	phelix := entity(domain.SourcePhelix, "Jane Doe", "doc-1")
	phelix.EvidenceTypes = []string{"email", "flight log"}

	t.Run("one source many links", func(t *testing.T) {
		v := Aggregate(id, []domain.ConfirmedLink{confirmedLink(id, doj1), confirmedLink(id, doj2)}, th)
		assert.Equal(t, 1, v.DistinctSourceCount)
		assert.Equal(t, domain.TierNotDisplayed, v.Tier)
		assert.Len(t, v.SupportingLinks, 2)
	})

	t.Run("zero thresholds keep one source private", func(t *testing.T) {
		v := Aggregate(id, []domain.ConfirmedLink{confirmedLink(id, phelix)}, domain.Thresholds{})
		assert.Equal(t, 1, v.DistinctSourceCount)
		assert.Equal(t, domain.TierNotDisplayed, v.Tier)
		assert.False(t, v.Tier.IsPublic())
	})

	t.Run("two sources", func(t *testing.T) {
		v := Aggregate(id, []domain.ConfirmedLink{
			confirmedLink(id, phelix), confirmedLink(id, doj1), confirmedLink(id, doj2),
		}, th)
		assert.Equal(t, 2, v.DistinctSourceCount)
		assert.Equal(t, domain.TierMedium, v.Tier)
		assert.Equal(t, []domain.SourceID{domain.SourceDOJ, domain.SourcePhelix}, v.Sources)
		assert.Equal(t, []string{"email", "flight log"}, v.EvidenceTypes)
		assert.Equal(t, id, v.CandidateID)
	})

	t.Run("duplicates ignored", func(t *testing.T) {
		v := Aggregate(id, []domain.ConfirmedLink{
			confirmedLink(id, doj1), confirmedLink(id, doj1), confirmedLink(id, doj1),
		}, th)
		assert.Len(t, v.SupportingLinks, 1)
		assert.Equal(t, 1, v.DistinctSourceCount)
	})

	t.Run("same name in one source kept apart", func(t *testing.T) {
		smithA := entity(domain.SourceDOJ, "John Smith", "EFTA10")
		smithB := entity(domain.SourceDOJ, "John Smith", "EFTA20")
		v := Aggregate(id, []domain.ConfirmedLink{
			confirmedLink(id, smithA), confirmedLink(id, smithB), confirmedLink(id, smithA),
		}, th)
		assert.Len(t, v.SupportingLinks, 2)
		assert.Equal(t, 1, v.DistinctSourceCount)
	})

	t.Run("other candidates and unknown sources ignored", func(t *testing.T) {
		bogus := entity(domain.SourceID("wikipedia"), "Jane Doe", "x")
		v := Aggregate(id, []domain.ConfirmedLink{
			confirmedLink("tx-2-john-roe", phelix),
			confirmedLink(id, bogus),
			confirmedLink(id, doj1),
		}, th)
		assert.Equal(t, 1, v.DistinctSourceCount)
		assert.Equal(t, []domain.SourceID{domain.SourceDOJ}, v.Sources)
	})

	t.Run("no links", func(t *testing.T) {
		v := Aggregate(id, nil, th)
		assert.Equal(t, domain.TierNone, v.Tier)
		assert.Empty(t, v.Sources)
		assert.Nil(t, v.EvidenceTypes)
	})
}

func TestAggregate_OrderIndependentAndMonotone(t *testing.T) {
	const id = "ca-1-jane-doe"
	th := domain.DefaultThresholds()

	var links []domain.ConfirmedLink
	for _, s := range domain.AllSources() {
		links = append(links,
			confirmedLink(id, entity(s, "Jane Doe", "ref-a")),
			confirmedLink(id, entity(s, "Doe, Jane", "ref-b")),
		)
	}

	want := Aggregate(id, links, th)
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]domain.ConfirmedLink(nil), links...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Aggregate(id, shuffled, th))
	}

	prev := domain.TierNone
	for n := 0; n <= len(links); n++ {
		v := Aggregate(id, links[:n], th)
		assert.GreaterOrEqual(t, v.Tier.Rank(), prev.Rank(), "n=%d", n)
		prev = v.Tier
	}
	assert.Equal(t, domain.TierHigh, prev)
}
