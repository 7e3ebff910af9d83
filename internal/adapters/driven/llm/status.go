// Package llm holds response handling shared by the HTTP-based LLM adapters.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

// maxErrorBody caps how much of a provider error body ends up in an error message.
const maxErrorBody = 512

// StatusError maps a non-2xx provider response onto the domain error taxonomy.
// Rate limiting and server-side failures are transient; everything else is not.
func StatusError(provider string, status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}

	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%s: %w (status %d): %s", provider, domain.ErrRateLimited, status, msg)
	case status == http.StatusRequestTimeout || status >= http.StatusInternalServerError:
		return fmt.Errorf("%s: %w (status %d): %s", provider, domain.ErrOracleUnavailable, status, msg)
	default:
		return fmt.Errorf("%s: API returned status %d: %s", provider, status, msg)
	}
}

// TransportError wraps a failed round trip. A cancelled context is reported
// as such so callers stop retrying.
func TransportError(ctx context.Context, provider string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", provider, ctxErr)
	}
	return fmt.Errorf("%s: %w: %v", provider, domain.ErrOracleUnavailable, err)
}
