// Package jsonfile writes the publication as static JSON files.
//
// Three files are written to the output directory:
//
//	connections.json  candidate ID -> public record
//	candidates.json   the merged ballot roster
//	metadata.json     run metadata, data sources and methodology
//
// Output is deterministic for a given publication: map keys are sorted and
// candidates keep their roster order.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure Publisher implements the interface.
var _ driven.Publisher = (*Publisher)(nil)

// Output file names.
const (
	ConnectionsFile = "connections.json"
	CandidatesFile  = "candidates.json"
	MetadataFile    = "metadata.json"
)

// Publisher writes publications to a directory.
type Publisher struct {
	dir string
}

// NewPublisher creates a publisher writing to dir.
func NewPublisher(dir string) *Publisher {
	return &Publisher{dir: dir}
}

// Dir returns the output directory.
func (p *Publisher) Dir() string {
	return p.dir
}

type citationJSON struct {
	Summary     string `json:"summary"`
	DocumentURL string `json:"document_url"`
	Source      string `json:"source"`
	SourceName  string `json:"source_name"`
}

type recordJSON struct {
	HasConnections    bool           `json:"has_connections"`
	Confidence        string         `json:"confidence"`
	Level             string         `json:"level,omitempty"`
	NumSources        int            `json:"num_sources,omitempty"`
	Summary           string         `json:"summary"`
	Caveat            string         `json:"caveat,omitempty"`
	Citations         []citationJSON `json:"citations"`
	DatabasesSearched []string       `json:"databases_searched,omitempty"`
}

type candidateJSON struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Aliases   []string `json:"aliases,omitempty"`
	Party     string   `json:"party"`
	State     string   `json:"state"`
	District  string   `json:"district"`
	Office    string   `json:"office"`
	Incumbent bool     `json:"incumbent"`
}

type dataSourceJSON struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Searched    bool   `json:"searched"`
	Unavailable bool   `json:"unavailable,omitempty"`
}

type methodologyJSON struct {
	MinSourcesToDisplay int      `json:"min_sources_to_display"`
	HighConfidenceAt    int      `json:"high_confidence_sources"`
	FuzzyMatchThreshold int      `json:"fuzzy_match_threshold"`
	AIDisambiguation    bool     `json:"ai_disambiguation"`
	ConnectionLevels    []string `json:"connection_levels"`
}

type metadataJSON struct {
	LastUpdated string           `json:"last_updated"`
	RunID       string           `json:"run_id"`
	OracleModel string           `json:"oracle_model,omitempty"`
	DataSources []dataSourceJSON `json:"data_sources"`
	Methodology methodologyJSON  `json:"methodology"`
}

// Publish validates every record and writes the three files. Nothing is
// written if any record would publish an uncited or non-public connection.
func (p *Publisher) Publish(ctx context.Context, pub domain.Publication) error {
	records := make(map[string]recordJSON, len(pub.Records))
	for id, rec := range pub.Records {
		out, err := toRecordJSON(rec)
		if err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		records[id] = out
	}

	if err := os.MkdirAll(p.dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	files := []struct {
		name  string
		value any
	}{
		{ConnectionsFile, records},
		{CandidatesFile, toCandidatesJSON(pub.Candidates)},
		{MetadataFile, toMetadataJSON(pub.Metadata)},
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeJSON(filepath.Join(p.dir, f.name), f.value); err != nil {
			return err
		}
	}
	return nil
}

func toRecordJSON(rec domain.PublicRecord) (recordJSON, error) {
	if !rec.HasConnection {
		return recordJSON{
			HasConnections:    false,
			Confidence:        string(domain.TierNone),
			Summary:           rec.Summary,
			Citations:         []citationJSON{},
			DatabasesSearched: rec.DatabasesSearched,
		}, nil
	}

	if !rec.Tier.IsPublic() {
		return recordJSON{}, fmt.Errorf("%w: connection with tier %s", domain.ErrInvariantViolation, rec.Tier)
	}
	if rec.NumSources < domain.MinSourcesFloor {
		return recordJSON{}, fmt.Errorf("%w: connection backed by %d sources", domain.ErrInvariantViolation, rec.NumSources)
	}
	if len(rec.Citations) == 0 {
		return recordJSON{}, domain.ErrUncitedConnection
	}

	citations := make([]citationJSON, 0, len(rec.Citations))
	for _, c := range rec.Citations {
		if !domain.IsResolvableURL(c.DocumentURL) {
			return recordJSON{}, fmt.Errorf("%w: %q", domain.ErrUncitedConnection, c.DocumentURL)
		}
		citations = append(citations, citationJSON{
			Summary:     c.Summary,
			DocumentURL: c.DocumentURL,
			Source:      string(c.SourceID),
			SourceName:  c.SourceID.Info().Name,
		})
	}

	return recordJSON{
		HasConnections: true,
		Confidence:     string(rec.Tier),
		Level:          string(rec.Level),
		NumSources:     rec.NumSources,
		Summary:        rec.Summary,
		Caveat:         rec.Caveat,
		Citations:      citations,
	}, nil
}

func toCandidatesJSON(candidates []domain.Candidate) []candidateJSON {
	out := make([]candidateJSON, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, candidateJSON{
			ID:        c.ID,
			Name:      c.FullName,
			Aliases:   c.Aliases,
			Party:     c.Party,
			State:     c.Jurisdiction,
			District:  c.District,
			Office:    c.Office,
			Incumbent: c.Incumbent,
		})
	}
	return out
}

func toMetadataJSON(meta domain.PublicationMetadata) metadataJSON {
	searched := make(map[domain.SourceID]bool, len(meta.SourcesSearched))
	for _, s := range meta.SourcesSearched {
		searched[s] = true
	}
	unavailable := make(map[domain.SourceID]bool, len(meta.SourcesUnavailable))
	for _, s := range meta.SourcesUnavailable {
		unavailable[s] = true
	}

	sources := make([]dataSourceJSON, 0, len(domain.AllSources()))
	for _, id := range domain.AllSources() {
		info := id.Info()
		sources = append(sources, dataSourceJSON{
			ID:          string(id),
			Name:        info.Name,
			URL:         info.URL,
			Description: info.Description,
			Searched:    searched[id],
			Unavailable: unavailable[id],
		})
	}

	levels := make([]string, 0, len(domain.ConnectionLevels()))
	for _, l := range domain.ConnectionLevels() {
		levels = append(levels, string(l))
	}

	return metadataJSON{
		LastUpdated: meta.GeneratedAt.UTC().Format(time.RFC3339),
		RunID:       meta.RunID,
		OracleModel: meta.OracleModel,
		DataSources: sources,
		Methodology: methodologyJSON{
			MinSourcesToDisplay: meta.Thresholds.MinSources,
			HighConfidenceAt:    meta.Thresholds.HighSources,
			FuzzyMatchThreshold: meta.Thresholds.MatchThreshold,
			AIDisambiguation:    meta.OracleModel != "",
			ConnectionLevels:    levels,
		},
	}
}

// writeJSON writes via a temp file and rename so readers never see a
// partially written file.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
