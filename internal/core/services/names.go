package services

import (
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driving"
)

// Ensure NameService implements the interface.
var _ driving.NameService = (*NameService)(nil)

// NameService exposes normalisation and scoring for inspection from the CLI.
type NameService struct {
	normalizer *NameNormalizer
	matcher    *Matcher
}

// NewNameService creates a name service.
func NewNameService(normalizer *NameNormalizer, matcher *Matcher) *NameService {
	return &NameService{normalizer: normalizer, matcher: matcher}
}

// Normalize returns the canonical comparable form of a name.
func (s *NameService) Normalize(raw string) string {
	return s.normalizer.Normalize(raw)
}

// Variants returns every comparable form generated for a name.
func (s *NameService) Variants(raw string) []string {
	return s.normalizer.Variants(s.normalizer.Parse(raw))
}

// Score returns the similarity of two raw names, 0-100.
func (s *NameService) Score(a, b string) int {
	return s.matcher.Score(s.normalizer.Parse(a), s.normalizer.Parse(b))
}
