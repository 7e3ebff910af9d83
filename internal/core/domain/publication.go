package domain

import (
	"fmt"
	"time"
)

// NoConnectionSummary is the public wording for every candidate without a
// displayable connection, whatever the internal reason.
const NoConnectionSummary = "No documented connections found in available records"

// PublicRecord is the published entry for one candidate.
// Tier is only ever NONE, MEDIUM or HIGH; NOT_DISPLAYED and blocked
// candidates are published as NONE.
type PublicRecord struct {
	CandidateID   string
	HasConnection bool
	Tier          ConfidenceTier
	Level         ConnectionLevel
	NumSources    int
	Summary       string
	Caveat        string
	Citations     []Citation

	// DatabasesSearched is set on no-connection records.
	DatabasesSearched []string
}

// NoConnectionRecord builds the safe default record.
func NoConnectionRecord(candidateID string, searched []SourceID) PublicRecord {
	names := make([]string, 0, len(searched))
	for _, s := range searched {
		names = append(names, s.Info().Name)
	}
	return PublicRecord{
		CandidateID:       candidateID,
		Tier:              TierNone,
		Summary:           NoConnectionSummary,
		DatabasesSearched: names,
	}
}

// ConnectionRecord builds the public record for a classified connection.
// An empty summary is replaced by a generic one naming the level.
func ConnectionRecord(conn ClassifiedConnection, summary string) PublicRecord {
	citations := make([]Citation, len(conn.Citations))
	copy(citations, conn.Citations)
	if summary == "" {
		summary = fmt.Sprintf("%s connection documented across %d independent databases",
			conn.Level, conn.NumSources)
	}
	return PublicRecord{
		CandidateID:   conn.CandidateID,
		HasConnection: true,
		Tier:          conn.Tier,
		Level:         conn.Level,
		NumSources:    conn.NumSources,
		Summary:       summary,
		Caveat:        conn.Caveat,
		Citations:     citations,
	}
}

// PublicationMetadata describes the run that produced a publication.
type PublicationMetadata struct {
	RunID              string
	GeneratedAt        time.Time
	SourcesSearched    []SourceID
	SourcesUnavailable []SourceID
	Thresholds         Thresholds
	OracleModel        string
}

// Publication is the terminal artifact: candidate ID to public record.
type Publication struct {
	Records    map[string]PublicRecord
	Candidates []Candidate
	Metadata   PublicationMetadata
}
