// Package file loads the candidate roster from a local JSON or YAML file.
//
// The file is either a list of candidates or a document with a "candidates"
// list. Several providers can be combined by listing the same person more
// than once; duplicates are merged in core.
package file

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure Roster implements the interface.
var _ driven.CandidateRoster = (*Roster)(nil)

// Record is one candidate as written in a roster file.
type Record struct {
	ID        string   `yaml:"id,omitempty" json:"id,omitempty"`
	Name      string   `yaml:"name" json:"name"`
	Aliases   []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Office    string   `yaml:"office" json:"office"`
	State     string   `yaml:"state" json:"state"`
	District  any      `yaml:"district,omitempty" json:"district,omitempty"`
	Party     string   `yaml:"party,omitempty" json:"party,omitempty"`
	Incumbent bool     `yaml:"incumbent,omitempty" json:"incumbent,omitempty"`
	FECID     string   `yaml:"fec_id,omitempty" json:"fec_id,omitempty"`
}

type document struct {
	Candidates []Record `yaml:"candidates" json:"candidates"`
}

// Roster reads candidates from a file.
type Roster struct {
	path string
}

// NewRoster creates a file-backed roster.
func NewRoster(path string) *Roster {
	return &Roster{path: path}
}

// Load reads and decodes the roster file.
func (r *Roster) Load(ctx context.Context) ([]domain.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.path == "" {
		return nil, fmt.Errorf("%w: roster path not configured", domain.ErrInvalidInput)
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	candidates, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.path, err)
	}
	return candidates, nil
}

// Decode parses roster data in either accepted form.
func Decode(data []byte) ([]domain.Candidate, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var records []Record
	if trimmed[0] == '[' || trimmed[0] == '-' {
		if err := yaml.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("parse roster: %w", err)
		}
	} else {
		var doc document
		if err := yaml.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("parse roster: %w", err)
		}
		records = doc.Candidates
	}

	out := make([]domain.Candidate, 0, len(records))
	for _, rec := range records {
		out = append(out, domain.Candidate{
			ID:           rec.ID,
			FullName:     strings.TrimSpace(rec.Name),
			Aliases:      rec.Aliases,
			Office:       rec.Office,
			Jurisdiction: strings.ToUpper(strings.TrimSpace(rec.State)),
			District:     districtString(rec.District),
			Party:        rec.Party,
			Incumbent:    rec.Incumbent,
			FECID:        rec.FECID,
		})
	}
	return out, nil
}

// districtString accepts districts written as numbers or strings.
func districtString(v any) string {
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(d)
	case uint64:
		return strconv.FormatUint(d, 10)
	case int64:
		return strconv.FormatInt(d, 10)
	case int:
		return strconv.Itoa(d)
	case float64:
		return strconv.FormatFloat(d, 'f', -1, 64)
	default:
		return fmt.Sprint(d)
	}
}
