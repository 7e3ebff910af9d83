package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
	"github.com/knowbeforeyouvote/kbyv/internal/core/ports/driven"
	"github.com/knowbeforeyouvote/kbyv/internal/logger"
)

// ReasoningClient wraps the LLM with the call discipline shared by the
// disambiguation oracle and the classifier: a rate limiter, a global
// concurrency cap, a per-run request budget, and bounded exponential
// backoff for transient failures.
type ReasoningClient struct {
	llm     driven.LLMService
	limiter *RateLimiter
	sem     *semaphore.Weighted

	budget int64
	used   atomic.Int64

	maxRetries  int
	backoffBase time.Duration
	backoffMax  time.Duration
	timeout     time.Duration

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewReasoningClient creates a client. llm may be nil, in which case every
// call fails with domain.ErrLLMUnavailable.
func NewReasoningClient(llm driven.LLMService, settings domain.OracleSettings) *ReasoningClient {
	concurrency := settings.MaxConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	retries := settings.MaxRetries
	if retries < 1 {
		retries = 1
	}
	return &ReasoningClient{
		llm:         llm,
		limiter:     NewRateLimiter(settings.RequestsPerSecond, settings.Burst),
		sem:         semaphore.NewWeighted(int64(concurrency)),
		budget:      int64(settings.RequestBudget),
		maxRetries:  retries,
		backoffBase: settings.BackoffBase,
		backoffMax:  settings.BackoffMax,
		timeout:     settings.Timeout,
		sleep:       sleepContext,
	}
}

// Available reports whether a reasoning service is configured.
func (c *ReasoningClient) Available() bool {
	return c != nil && c.llm != nil
}

// ModelName returns the model behind the client, or empty.
func (c *ReasoningClient) ModelName() string {
	if !c.Available() {
		return ""
	}
	return c.llm.ModelName()
}

// ResetBudget starts a new per-run request budget.
func (c *ReasoningClient) ResetBudget() {
	c.used.Store(0)
}

// Used returns the number of requests issued since the last reset.
func (c *ReasoningClient) Used() int {
	return int(c.used.Load())
}

// Complete sends a prompt and returns the raw completion. Transient failures
// are retried with exponential backoff; every attempt counts against the budget.
func (c *ReasoningClient) Complete(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if !c.Available() {
		return "", domain.ErrLLMUnavailable
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer c.sem.Release(1)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt-1)); err != nil {
				return "", err
			}
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		if n := c.used.Add(1); c.budget > 0 && n > c.budget {
			return "", fmt.Errorf("%w: %d requests", domain.ErrBudgetExhausted, c.budget)
		}

		text, err := c.generate(ctx, prompt, opts)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if errors.Is(err, domain.ErrRateLimited) {
			c.limiter.RecordRateLimitError(c.backoff(attempt))
		}
		if !domain.IsTransient(err) || ctx.Err() != nil {
			return "", err
		}
		logger.Debug("reasoning call attempt %d/%d failed: %v", attempt+1, c.maxRetries, err)
	}
	return "", fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr)
}

func (c *ReasoningClient) generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.llm.Generate(ctx, prompt, opts)
}

// backoff returns base * 2^attempt, capped at the configured maximum.
func (c *ReasoningClient) backoff(attempt int) time.Duration {
	d := c.backoffBase
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	for i := 0; i < attempt; i++ {
		d *= 2
		if c.backoffMax > 0 && d >= c.backoffMax {
			return c.backoffMax
		}
	}
	if c.backoffMax > 0 && d > c.backoffMax {
		return c.backoffMax
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
