package domain

import "strings"

// Candidate is a person appearing on a ballot.
// Office, Jurisdiction, District, Party and Incumbent are biographical context
// for disambiguation only; they never influence matching or tiering.
type Candidate struct {
	// ID is the stable identifier (jurisdiction + office/district + name slug).
	ID string

	// FullName is the ballot name.
	FullName string

	// Aliases are alternate names collected from roster providers.
	Aliases []string

	// Office is the contested office (e.g. "U.S. Senate", "U.S. House").
	Office string

	// Jurisdiction is the state or territory code.
	Jurisdiction string

	// District is the district number for district-level offices.
	District string

	// Party is the party label as reported by the roster provider.
	Party string

	// Incumbent is true if the candidate currently holds the office.
	Incumbent bool

	// FECID is the Federal Election Commission candidate identifier, if known.
	FECID string
}

// IsSenate returns true if the office is a U.S. Senate seat.
func (c Candidate) IsSenate() bool {
	office := strings.ToLower(c.Office)
	return strings.Contains(office, "senate")
}

// BuildCandidateID derives the stable candidate identifier from its
// jurisdiction, office and canonical name, e.g. "ca-22-jane-smith" or
// "la-senate-john-kennedy".
func BuildCandidateID(c Candidate, canonicalName string) string {
	state := strings.ToLower(strings.TrimSpace(c.Jurisdiction))
	if state == "" {
		state = "xx"
	}
	slug := strings.Join(strings.Fields(canonicalName), "-")
	if slug == "" {
		slug = "unknown"
	}

	switch {
	case c.IsSenate():
		return state + "-senate-" + slug
	case strings.TrimSpace(c.District) != "":
		return state + "-" + strings.ToLower(strings.TrimSpace(c.District)) + "-" + slug
	default:
		return state + "-" + slug
	}
}
