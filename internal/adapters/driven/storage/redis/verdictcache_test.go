package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "empty", url: ""},
		{name: "wrong scheme", url: "http://localhost:6379"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.url)

			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestNewVerdictCache_Options(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	cache := NewVerdictCache(client, WithTTL(time.Hour), WithKeyPrefix("test:"), nil)

	assert.Equal(t, time.Hour, cache.ttl)
	assert.Equal(t, "test:", cache.prefix)

	defaults := NewVerdictCache(client)
	assert.Zero(t, defaults.ttl)
	assert.Equal(t, DefaultKeyPrefix, defaults.prefix)
}

func TestVerdictCache_PutRejectsInvalidVerdict(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()
	cache := NewVerdictCache(client)

	err := cache.Put(context.Background(), "k", domain.Verdict("PROBABLY"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
