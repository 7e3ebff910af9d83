package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// ConnectionLevel is the evidentiary category of a corroborated connection.
type ConnectionLevel string

// Connection levels.
const (
	// LevelDirect means named as participant in illegal activity.
	LevelDirect ConnectionLevel = "Direct"

	// LevelContact means documented communication or social contact.
	LevelContact ConnectionLevel = "Contact"

	// LevelFinancial means documented money flows such as campaign donations.
	LevelFinancial ConnectionLevel = "Financial"

	// LevelInstitutional means oversight or authority over related investigations.
	LevelInstitutional ConnectionLevel = "Institutional"
)

// ConnectionLevels lists every level from most to least severe.
func ConnectionLevels() []ConnectionLevel {
	return []ConnectionLevel{LevelDirect, LevelContact, LevelFinancial, LevelInstitutional}
}

// Severity ranks levels; higher is more severe.
func (l ConnectionLevel) Severity() int {
	switch l {
	case LevelDirect:
		return 4
	case LevelContact:
		return 3
	case LevelFinancial:
		return 2
	case LevelInstitutional:
		return 1
	default:
		return 0
	}
}

// IsValid returns true if the level is one of the four enumerated levels.
func (l ConnectionLevel) IsValid() bool {
	return l.Severity() > 0
}

// String returns the string representation.
func (l ConnectionLevel) String() string {
	return string(l)
}

// ParseConnectionLevel matches a level name case-insensitively.
func ParseConnectionLevel(raw string) (ConnectionLevel, error) {
	s := strings.TrimSpace(raw)
	for _, l := range ConnectionLevels() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown connection level %q", ErrUnparseableResponse, raw)
}

// LeastSevere returns the least severe valid level of the given ones.
func LeastSevere(levels ...ConnectionLevel) (ConnectionLevel, bool) {
	var best ConnectionLevel
	for _, l := range levels {
		if !l.IsValid() {
			continue
		}
		if best == "" || l.Severity() < best.Severity() {
			best = l
		}
	}
	return best, best != ""
}

// Citation links a claim to a primary-source document.
type Citation struct {
	// Summary is a short factual sentence.
	Summary string

	// DocumentURL is an absolute http(s) URL. Never empty.
	DocumentURL string

	// DocumentRef is the reference the URL was built from.
	DocumentRef string

	SourceID SourceID
}

// NewCitation constructs a citation, rejecting any without a resolvable URL.
func NewCitation(summary, documentURL, documentRef string, source SourceID) (Citation, error) {
	if !IsResolvableURL(documentURL) {
		return Citation{}, fmt.Errorf("%w: %q from %s", ErrUncitedConnection, documentURL, source)
	}
	return Citation{
		Summary:     strings.TrimSpace(summary),
		DocumentURL: documentURL,
		DocumentRef: documentRef,
		SourceID:    source,
	}, nil
}

// IsResolvableURL reports whether raw is an absolute http or https URL with a host.
func IsResolvableURL(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// ClassifiedConnection is a corroborated, classified and cited connection.
type ClassifiedConnection struct {
	CandidateID string
	Level       ConnectionLevel
	Tier        ConfidenceTier
	Citations   []Citation

	// NumSources is the distinct-source count behind Tier.
	NumSources int

	// Caveat qualifies MEDIUM connections.
	Caveat string

	// Reasoning is the classifier's one-line justification, kept for audit.
	Reasoning string
}

// NewClassifiedConnection enforces the construction invariants: the verdict
// must be MEDIUM or HIGH with at least MinSourcesFloor distinct sources, the
// level must be one of the four enumerated levels, and every citation must
// carry a resolvable URL.
func NewClassifiedConnection(
	verdict CorroborationVerdict,
	level ConnectionLevel,
	reasoning string,
	citations []Citation,
) (ClassifiedConnection, error) {
	if !verdict.Tier.IsPublic() {
		return ClassifiedConnection{}, fmt.Errorf("%w: classification for %s at tier %s",
			ErrInvariantViolation, verdict.CandidateID, verdict.Tier)
	}
	if verdict.DistinctSourceCount < MinSourcesFloor {
		return ClassifiedConnection{}, fmt.Errorf("%w: %s has %d distinct sources, %d required",
			ErrInvariantViolation, verdict.CandidateID, verdict.DistinctSourceCount, MinSourcesFloor)
	}
	if !level.IsValid() {
		return ClassifiedConnection{}, fmt.Errorf("%w: level %q for %s",
			ErrInvalidInput, level, verdict.CandidateID)
	}
	if len(citations) == 0 {
		return ClassifiedConnection{}, fmt.Errorf("%w: %s has no citations",
			ErrUncitedConnection, verdict.CandidateID)
	}
	for _, c := range citations {
		if !IsResolvableURL(c.DocumentURL) {
			return ClassifiedConnection{}, fmt.Errorf("%w: %s citation %q",
				ErrUncitedConnection, verdict.CandidateID, c.DocumentURL)
		}
	}

	out := make([]Citation, len(citations))
	copy(out, citations)

	return ClassifiedConnection{
		CandidateID: verdict.CandidateID,
		Level:       level,
		Tier:        verdict.Tier,
		Citations:   out,
		NumSources:  verdict.DistinctSourceCount,
		Caveat:      verdict.Caveat(),
		Reasoning:   reasoning,
	}, nil
}
