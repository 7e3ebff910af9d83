// Package batchfile loads entity batches from local JSON or YAML files.
//
// A batch file is either a list of entity records or a document with a
// "source" field and an "entities" list:
//
//	source: doj
//	entities:
//	  - name: Jane Doe
//	    documents: [EFTA00012345]
//	    snippets: ["Flight manifest lists J. Doe ..."]
//	    evidence_types: [flight_log]
//
// JSON batches use the same field names.
package batchfile

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// Record is one entity as written in a batch file.
type Record struct {
	Source        string   `yaml:"source,omitempty" json:"source,omitempty"`
	Name          string   `yaml:"name" json:"name"`
	Aliases       []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Categories    []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	Documents     []string `yaml:"documents" json:"documents"`
	Snippets      []string `yaml:"snippets,omitempty" json:"snippets,omitempty"`
	EvidenceTypes []string `yaml:"evidence_types,omitempty" json:"evidence_types,omitempty"`
}

// Document is the wrapped batch form.
type Document struct {
	Source   string   `yaml:"source,omitempty" json:"source,omitempty"`
	Entities []Record `yaml:"entities" json:"entities"`
}

// Decode parses a batch for the given source. Records naming another source
// keep that source so ingestion can reject them; records without one inherit
// the batch source. Record-level validation is left to the caller.
func Decode(data []byte, source domain.SourceID) ([]domain.Entity, error) {
	records, batchSource, err := decodeRecords(data)
	if err != nil {
		return nil, err
	}

	if batchSource != "" {
		id, err := domain.ParseSourceID(batchSource)
		if err != nil {
			return nil, fmt.Errorf("batch source: %w", err)
		}
		if id != source {
			return nil, fmt.Errorf("%w: batch declares source %s, configured as %s",
				domain.ErrInvalidInput, id, source)
		}
	}

	entities := make([]domain.Entity, 0, len(records))
	for _, r := range records {
		entitySource := source
		if r.Source != "" {
			entitySource = domain.SourceID(r.Source)
		}
		entities = append(entities, domain.Entity{
			SourceID:        entitySource,
			RawName:         r.Name,
			Aliases:         r.Aliases,
			Categories:      r.Categories,
			DocumentRefs:    r.Documents,
			ContextSnippets: r.Snippets,
			EvidenceTypes:   r.EvidenceTypes,
		})
	}
	return entities, nil
}

func decodeRecords(data []byte) ([]Record, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, "", nil
	}

	// A top-level sequence is the bare list form.
	if trimmed[0] == '[' || trimmed[0] == '-' {
		var records []Record
		if err := yaml.Unmarshal(trimmed, &records); err != nil {
			return nil, "", fmt.Errorf("parse batch: %w", err)
		}
		return records, "", nil
	}

	var doc Document
	if err := yaml.Unmarshal(trimmed, &doc); err != nil {
		return nil, "", fmt.Errorf("parse batch: %w", err)
	}
	return doc.Entities, doc.Source, nil
}
