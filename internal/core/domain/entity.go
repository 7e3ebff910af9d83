package domain

import (
	"fmt"
	"strings"
)

// Entity is a person mention extracted from one source database.
// Entities are created once per ingestion batch and never mutated afterwards;
// merging across sources happens logically during corroboration.
type Entity struct {
	// SourceID is the originating database.
	SourceID SourceID

	// RawName is the name exactly as extracted.
	RawName string

	// CanonicalName is the normalised comparable form. Derived during the
	// normalisation stage; empty on freshly ingested records.
	CanonicalName string

	// Aliases are alternate spellings the source recorded for the same mention.
	Aliases []string

	// Categories are source-assigned labels (e.g. "political", "business").
	Categories []string

	// DocumentRefs are primary-source document identifiers or URLs. Never empty.
	DocumentRefs []string

	// ContextSnippets are short excerpts used for disambiguation and classification.
	ContextSnippets []string

	// EvidenceTypes are source-assigned evidence kinds (e.g. "flight_log", "email").
	EvidenceTypes []string
}

// Key identifies the mention within its source.
func (e Entity) Key() string {
	return EntityKey(e.SourceID, e.RawName, e.DocumentRefs...)
}

// EntityKey builds the per-source identity key for a raw mention. The first
// non-blank document ref is appended so two people sharing a name in one
// source keep distinct keys.
func EntityKey(source SourceID, rawName string, refs ...string) string {
	key := string(source) + "/" + strings.Join(strings.Fields(strings.ToLower(rawName)), " ")
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			return key + "#" + ref
		}
	}
	return key
}

// Validate checks the ingestion contract: a known source, a name,
// and at least one non-blank document reference.
func (e Entity) Validate() error {
	if !e.SourceID.IsValid() {
		return fmt.Errorf("%w: entity %q has unknown source %q", ErrInvalidInput, e.RawName, e.SourceID)
	}
	if strings.TrimSpace(e.RawName) == "" {
		return fmt.Errorf("%w: entity without a name in source %s", ErrInvalidInput, e.SourceID)
	}
	for _, ref := range e.DocumentRefs {
		if strings.TrimSpace(ref) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrMissingDocumentRef, e.Key())
}

// WithCanonicalName returns a copy carrying the derived canonical name.
func (e Entity) WithCanonicalName(canonical string) Entity {
	out := e
	out.CanonicalName = canonical
	return out
}
