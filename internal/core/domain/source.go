package domain

import (
	"fmt"
	"strings"
)

// SourceID identifies one of the independently collected entity databases.
// The set is fixed; corroboration counts distinct values of this type.
type SourceID string

// Known entity databases.
const (
	// SourceMaxAndrews is the Epstein Doc Explorer relationship triples from the email corpus.
	SourceMaxAndrews SourceID = "maxandrews"

	// SourceLMSBand is the NER entity and co-occurrence set over DOJ datasets 8-12.
	SourceLMSBand SourceID = "lmsband"

	// SourceSvetimFM is the entity network and financial transaction analysis.
	SourceSvetimFM SourceID = "svetimfm"

	// SourcePhelix is the categorized FOIA entity network.
	SourcePhelix SourceID = "phelix"

	// SourceDOJ is the DOJ library itself, for curated direct extractions.
	SourceDOJ SourceID = "doj"
)

// SourceInfo describes a source database for publication metadata.
type SourceInfo struct {
	ID          SourceID
	Name        string
	URL         string
	Description string
}

var sourceRegistry = map[SourceID]SourceInfo{
	SourceMaxAndrews: {
		ID:          SourceMaxAndrews,
		Name:        "Epstein Doc Explorer",
		URL:         "https://github.com/maxandrews/Epstein-doc-explorer",
		Description: "15,000+ RDF relationship triples from email corpus",
	},
	SourceLMSBand: {
		ID:          SourceLMSBand,
		Name:        "LMSBAND Epstein Files DB",
		URL:         "https://github.com/LMSBAND/epstein-files-db",
		Description: "DOJ Datasets 8-12 with NER entities and co-occurrence graph",
	},
	SourceSvetimFM: {
		ID:          SourceSvetimFM,
		Name:        "SvetimFM Entity Analysis",
		URL:         "https://github.com/SvetimFM/epstein-files-visualizations",
		Description: "68,798 documents with entity networks and financial transactions",
	},
	SourcePhelix: {
		ID:          SourcePhelix,
		Name:        "phelix001 Epstein Network",
		URL:         "https://github.com/phelix001/epstein-network",
		Description: "19,154 FOIA documents with categorized entities",
	},
	SourceDOJ: {
		ID:          SourceDOJ,
		Name:        "DOJ Epstein Library",
		URL:         "https://www.justice.gov/epstein",
		Description: "Primary-source releases from the Department of Justice",
	},
}

// AllSources returns every known source ID in stable order.
func AllSources() []SourceID {
	return []SourceID{SourceDOJ, SourceLMSBand, SourceMaxAndrews, SourcePhelix, SourceSvetimFM}
}

// ParseSourceID validates a raw source identifier.
func ParseSourceID(raw string) (SourceID, error) {
	id := SourceID(strings.ToLower(strings.TrimSpace(raw)))
	if !id.IsValid() {
		return "", fmt.Errorf("%w: unknown source %q", ErrUnsupportedType, raw)
	}
	return id, nil
}

// IsValid returns true if the source is part of the enumerated set.
func (s SourceID) IsValid() bool {
	_, ok := sourceRegistry[s]
	return ok
}

// Info returns the registry description of the source.
func (s SourceID) Info() SourceInfo {
	if info, ok := sourceRegistry[s]; ok {
		return info
	}
	return SourceInfo{ID: s, Name: string(s)}
}

// String returns the string representation.
func (s SourceID) String() string {
	return string(s)
}
