package memory

import (
	"context"
	"sync"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
)

// Ensure VerdictCache implements the interface.
var _ driven.VerdictCache = (*VerdictCache)(nil)

// VerdictCache is an in-memory implementation of driven.VerdictCache.
// Entries live for the lifetime of the process.
type VerdictCache struct {
	mu       sync.RWMutex
	verdicts map[string]domain.Verdict
}

// NewVerdictCache creates a new in-memory verdict cache.
func NewVerdictCache() *VerdictCache {
	return &VerdictCache{
		verdicts: make(map[string]domain.Verdict),
	}
}

// Get returns a cached verdict.
func (c *VerdictCache) Get(_ context.Context, key string) (domain.Verdict, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.verdicts[key]
	return v, ok, nil
}

// Put stores a verdict. Invalid verdicts are rejected.
func (c *VerdictCache) Put(_ context.Context, key string, verdict domain.Verdict) error {
	if !verdict.IsValid() {
		return domain.ErrInvalidInput
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.verdicts[key] = verdict
	return nil
}

// Len returns the number of cached verdicts.
func (c *VerdictCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.verdicts)
}
