package batchfile

import (
	"context"
	"fmt"
	"os"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.EntitySource = (*Source)(nil)

// Source reads one source database's batch from a local file.
type Source struct {
	id   domain.SourceID
	path string
}

// NewSource creates a file-backed entity source.
func NewSource(id domain.SourceID, path string) *Source {
	return &Source{id: id, path: path}
}

// ID returns the source database this batch belongs to.
func (s *Source) ID() domain.SourceID {
	return s.id
}

// Load reads and decodes the batch. Any failure marks the source unavailable.
func (s *Source) Load(ctx context.Context) ([]domain.Entity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, s.id, err)
	}

	entities, err := Decode(data, s.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s: %w", domain.ErrSourceUnavailable, s.id, s.path, err)
	}
	return entities, nil
}
