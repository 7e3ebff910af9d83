package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildCandidateID(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		canonical string
		expected  string
	}{
		{
			name:      "senate",
			candidate: Candidate{Office: "U.S. Senate", Jurisdiction: "LA"},
			canonical: "john kennedy",
			expected:  "la-senate-john-kennedy",
		},
		{
			name:      "house district",
			candidate: Candidate{Office: "U.S. House", Jurisdiction: "CA", District: "22"},
			canonical: "jane smith",
			expected:  "ca-22-jane-smith",
		},
		{
			name:      "statewide",
			candidate: Candidate{Office: "Governor", Jurisdiction: "ny"},
			canonical: "jane doe",
			expected:  "ny-jane-doe",
		},
		{
			name:      "missing state and name",
			candidate: Candidate{Office: "U.S. House"},
			canonical: "",
			expected:  "xx-unknown",
		},
		{
			name:      "suffix kept in slug",
			candidate: Candidate{Office: "U.S. House", Jurisdiction: "TX", District: "7"},
			canonical: "john smith jr",
			expected:  "tx-7-john-smith-jr",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildCandidateID(tt.candidate, tt.canonical))
		})
	}
}

func TestPersonName(t *testing.T) {
	n := PersonName{Raw: "Dr. John Q. Smith Jr.", Tokens: []string{"john", "q", "smith"}, Suffix: "jr"}

	assert.Equal(t, "john q smith", n.Base())
	assert.Equal(t, "john q smith jr", n.Canonical())
	assert.Equal(t, "john", n.Given())
	assert.Equal(t, "smith", n.Family())
	assert.False(t, n.IsEmpty())
	assert.True(t, PersonName{}.IsEmpty())
	assert.Equal(t, "", PersonName{}.Given())
}

func TestPersonName_SuffixCompatible(t *testing.T) {
	jr := PersonName{Tokens: []string{"john", "smith"}, Suffix: "jr"}
	sr := PersonName{Tokens: []string{"john", "smith"}, Suffix: "sr"}
	none := PersonName{Tokens: []string{"john", "smith"}}

	assert.False(t, jr.SuffixCompatible(sr))
	assert.True(t, jr.SuffixCompatible(jr))
	assert.True(t, jr.SuffixCompatible(none))
	assert.True(t, none.SuffixCompatible(sr))
}
