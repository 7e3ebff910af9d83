package github

import (
	"context"
	"fmt"

	"github.com/knowbeforeyouvote/kbyv/internal/adapters/driven/ingest/batchfile"
	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure Source implements the interface.
var _ driven.EntitySource = (*Source)(nil)

// Source reads one source database's batch from a repository file.
type Source struct {
	id     domain.SourceID
	client *Client
	owner  string
	repo   string
	path   string
	ref    string
}

// NewSource creates a GitHub-backed entity source from its settings.
func NewSource(settings domain.SourceSettings, client *Client) (*Source, error) {
	if settings.Kind != domain.SourceKindGitHub {
		return nil, fmt.Errorf("%w: source %s is kind %q", domain.ErrInvalidInput, settings.ID, settings.Kind)
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &Source{
		id:     settings.ID,
		client: client,
		owner:  settings.Owner,
		repo:   settings.Repo,
		path:   settings.Path,
		ref:    settings.Ref,
	}, nil
}

// ID returns the source database this batch belongs to.
func (s *Source) ID() domain.SourceID {
	return s.id
}

// Load fetches and decodes the batch. Any failure marks the source unavailable.
func (s *Source) Load(ctx context.Context) ([]domain.Entity, error) {
	data, err := s.client.GetFileContent(ctx, s.owner, s.repo, s.path, s.ref)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %s/%s/%s: %w",
			domain.ErrSourceUnavailable, s.id, s.owner, s.repo, s.path, err)
	}

	entities, err := batchfile.Decode(data, s.id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrSourceUnavailable, s.id, err)
	}
	return entities, nil
}
