package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRateLimit bool
		wantTransient bool
	}{
		{name: "too many requests", status: http.StatusTooManyRequests, wantRateLimit: true, wantTransient: true},
		{name: "server error", status: http.StatusInternalServerError, wantTransient: true},
		{name: "overloaded", status: 529, wantTransient: true},
		{name: "request timeout", status: http.StatusRequestTimeout, wantTransient: true},
		{name: "unauthorised", status: http.StatusUnauthorized},
		{name: "bad request", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := StatusError("acme", tt.status, []byte("  details  "))

			assert.Error(t, err)
			assert.Contains(t, err.Error(), "acme")
			assert.Contains(t, err.Error(), "details")
			assert.Equal(t, tt.wantRateLimit, errors.Is(err, domain.ErrRateLimited))
			assert.Equal(t, tt.wantTransient, domain.IsTransient(err))
		})
	}
}

func TestStatusError_TruncatesBody(t *testing.T) {
	err := StatusError("acme", http.StatusBadRequest, []byte(strings.Repeat("x", 2000)))

	assert.Less(t, len(err.Error()), 600)
}

func TestTransportError(t *testing.T) {
	err := TransportError(context.Background(), "acme", errors.New("connection refused"))
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = TransportError(ctx, "acme", errors.New("connection refused"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, domain.IsTransient(err))
}
