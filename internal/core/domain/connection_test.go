package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectionLevel_Severity(t *testing.T) {
	assert.Greater(t, LevelDirect.Severity(), LevelContact.Severity())
	assert.Greater(t, LevelContact.Severity(), LevelFinancial.Severity())
	assert.Greater(t, LevelFinancial.Severity(), LevelInstitutional.Severity())
	assert.False(t, ConnectionLevel("Associate").IsValid())
}

func TestParseConnectionLevel(t *testing.T) {
	l, err := ParseConnectionLevel(" financial ")
	require.NoError(t, err)
	assert.Equal(t, LevelFinancial, l)

	_, err = ParseConnectionLevel("friend")
	assert.ErrorIs(t, err, ErrUnparseableResponse)
}

func TestLeastSevere(t *testing.T) {
	l, ok := LeastSevere(LevelDirect, LevelContact, "bogus")
	require.True(t, ok)
	assert.Equal(t, LevelContact, l)

	_, ok = LeastSevere("bogus")
	assert.False(t, ok)
}

func TestIsResolvableURL(t *testing.T) {
	tests := []struct {
		raw      string
		expected bool
	}{
		{"https://www.justice.gov/epstein", true},
		{"http://example.org/doc#p3", true},
		{"", false},
		{"EFTA00012345", false},
		{"/relative/path", false},
		{"ftp://example.org/doc", false},
		{"https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsResolvableURL(tt.raw))
		})
	}
}

func TestNewCitation(t *testing.T) {
	c, err := NewCitation(" Flight logs ", "https://www.justice.gov/epstein#x", "x", SourceDOJ)
	require.NoError(t, err)
	assert.Equal(t, "Flight logs", c.Summary)

	_, err = NewCitation("summary", "", "x", SourceDOJ)
	assert.ErrorIs(t, err, ErrUncitedConnection)
}

func validCitation(t *testing.T) Citation {
	t.Helper()
	c, err := NewCitation("Documented", "https://www.justice.gov/epstein#a", "a", SourceDOJ)
	require.NoError(t, err)
	return c
}

func TestNewClassifiedConnection(t *testing.T) {
	medium := CorroborationVerdict{CandidateID: "ca-1-jane-doe", DistinctSourceCount: 2, Tier: TierMedium}
	high := CorroborationVerdict{CandidateID: "ca-1-jane-doe", DistinctSourceCount: 3, Tier: TierHigh}

	t.Run("medium carries caveat", func(t *testing.T) {
		conn, err := NewClassifiedConnection(medium, LevelContact, "emails", []Citation{validCitation(t)})
		require.NoError(t, err)
		assert.Equal(t, "Based on limited documentation from 2 independent sources.", conn.Caveat)
		assert.Equal(t, 2, conn.NumSources)
	})

	t.Run("high has no caveat", func(t *testing.T) {
		conn, err := NewClassifiedConnection(high, LevelDirect, "", []Citation{validCitation(t)})
		require.NoError(t, err)
		assert.Empty(t, conn.Caveat)
	})

	t.Run("non-public tiers rejected", func(t *testing.T) {
		for _, tier := range []ConfidenceTier{TierNone, TierNotDisplayed} {
			v := medium
			v.Tier = tier
			_, err := NewClassifiedConnection(v, LevelContact, "", []Citation{validCitation(t)})
			assert.ErrorIs(t, err, ErrInvariantViolation, tier.String())
		}
	})

	t.Run("public tier below source floor rejected", func(t *testing.T) {
		for _, count := range []int{0, 1} {
			v := high
			v.DistinctSourceCount = count
			_, err := NewClassifiedConnection(v, LevelDirect, "", []Citation{validCitation(t)})
			assert.ErrorIs(t, err, ErrInvariantViolation, "count=%d", count)
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		_, err := NewClassifiedConnection(high, "Associate", "", []Citation{validCitation(t)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("uncited", func(t *testing.T) {
		_, err := NewClassifiedConnection(high, LevelContact, "", nil)
		assert.ErrorIs(t, err, ErrUncitedConnection)

		_, err = NewClassifiedConnection(high, LevelContact, "", []Citation{{Summary: "x"}})
		assert.ErrorIs(t, err, ErrUncitedConnection)
	})

	t.Run("citations copied", func(t *testing.T) {
		cites := []Citation{validCitation(t)}
		conn, err := NewClassifiedConnection(high, LevelContact, "", cites)
		require.NoError(t, err)
		cites[0].Summary = "changed"
		assert.Equal(t, "Documented", conn.Citations[0].Summary)
	})
}

func TestNewConfirmedLink(t *testing.T) {
	pair := MatchCandidatePair{
		CandidateID: "ca-1-jane-doe",
		Entity:      Entity{SourceID: SourcePhelix, RawName: "Jane Doe"},
		Score:       100,
	}

	link, err := NewConfirmedLink(pair, VerdictConfirm)
	require.NoError(t, err)
	assert.Equal(t, SourcePhelix, link.SourceID)
	assert.Equal(t, 100, link.VerdictConfidence)
	assert.Equal(t, "ca-1-jane-doe|phelix/jane doe", link.Key())

	other := pair
	other.Entity.DocumentRefs = []string{"doc-7"}
	otherLink, err := NewConfirmedLink(other, VerdictConfirm)
	require.NoError(t, err)
	assert.Equal(t, "ca-1-jane-doe|phelix/jane doe#doc-7", otherLink.Key())

	for _, v := range []Verdict{VerdictReject, VerdictUncertain} {
		_, err := NewConfirmedLink(pair, v)
		assert.ErrorIs(t, err, ErrInvariantViolation)
	}
}

func TestConnectionRecord(t *testing.T) {
	v := CorroborationVerdict{CandidateID: "ca-1-jane-doe", DistinctSourceCount: 3, Tier: TierHigh}
	conn, err := NewClassifiedConnection(v, LevelContact, "", []Citation{validCitation(t)})
	require.NoError(t, err)

	rec := ConnectionRecord(conn, "")
	assert.True(t, rec.HasConnection)
	assert.Equal(t, TierHigh, rec.Tier)
	assert.Equal(t, "Contact connection documented across 3 independent databases", rec.Summary)

	rec = ConnectionRecord(conn, "Documented in flight logs across 3 independent databases")
	assert.Equal(t, "Documented in flight logs across 3 independent databases", rec.Summary)

	clean := NoConnectionRecord("ca-2-john-roe", []SourceID{SourceDOJ, SourcePhelix})
	assert.False(t, clean.HasConnection)
	assert.Equal(t, TierNone, clean.Tier)
	assert.Equal(t, NoConnectionSummary, clean.Summary)
	assert.Empty(t, clean.Citations)
	assert.Equal(t, []string{"DOJ Epstein Library", "phelix001 Epstein Network"}, clean.DatabasesSearched)
}
