//go:build integration

package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

type VerdictCacheSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	url       string
	client    *goredis.Client
}

func TestVerdictCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(VerdictCacheSuite))
}

func (s *VerdictCacheSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)
	s.url = url

	client, err := NewClient(ctx, url)
	s.Require().NoError(err)
	s.client = client
}

func (s *VerdictCacheSuite) TearDownSuite() {
	if s.client != nil {
		s.NoError(s.client.Close())
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(context.Background()))
	}
}

func (s *VerdictCacheSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
}

func (s *VerdictCacheSuite) TestPutGet() {
	ctx := context.Background()
	cache := NewVerdictCache(s.client)

	_, ok, err := cache.Get(ctx, "ca-1|doj|jane doe")
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(cache.Put(ctx, "ca-1|doj|jane doe", domain.VerdictConfirm))

	got, ok, err := cache.Get(ctx, "ca-1|doj|jane doe")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(domain.VerdictConfirm, got)

	raw, err := s.client.Get(ctx, DefaultKeyPrefix+"ca-1|doj|jane doe").Result()
	s.Require().NoError(err)
	s.Equal("CONFIRM", raw)
}

func (s *VerdictCacheSuite) TestTTL() {
	ctx := context.Background()
	cache := NewVerdictCache(s.client, WithTTL(time.Minute))

	s.Require().NoError(cache.Put(ctx, "k", domain.VerdictReject))

	ttl, err := s.client.TTL(ctx, DefaultKeyPrefix+"k").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *VerdictCacheSuite) TestUnrecognisedValueIsMiss() {
	ctx := context.Background()
	cache := NewVerdictCache(s.client)
	s.Require().NoError(s.client.Set(ctx, DefaultKeyPrefix+"k", "garbage", 0).Err())

	_, ok, err := cache.Get(ctx, "k")

	s.Require().NoError(err)
	s.False(ok)
}

func (s *VerdictCacheSuite) TestSharedAcrossClients() {
	ctx := context.Background()
	other, err := NewClient(ctx, s.url)
	s.Require().NoError(err)
	defer other.Close()

	s.Require().NoError(NewVerdictCache(s.client).Put(ctx, "k", domain.VerdictUncertain))

	got, ok, err := NewVerdictCache(other).Get(ctx, "k")
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(domain.VerdictUncertain, got)
}
