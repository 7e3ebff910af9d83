package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knowbeforeyouvote/kbyv/internal/core/domain"
)

func TestFaultStore(t *testing.T) {
	ctx := context.Background()
	store := NewFaultStore()

	oracle := domain.Fault{Kind: domain.FaultCollaborator, Stage: domain.StageDisambiguated, CandidateID: "ca-1-jane-doe", Subject: "doj/jane doe"}
	source := domain.Fault{Kind: domain.FaultCollaborator, Stage: domain.StageIngested, SourceID: domain.SourcePhelix}

	require.NoError(t, store.Record(ctx, oracle))
	require.NoError(t, store.Record(ctx, source))
	oracle.Reason = "timeout"
	require.NoError(t, store.Record(ctx, oracle))

	faults, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, faults, 2)
	assert.Equal(t, domain.StageDisambiguated, faults[0].Stage)
	assert.Equal(t, "timeout", faults[0].Reason)

	require.NoError(t, store.Resolve(ctx, oracle.Key()))
	require.NoError(t, store.Resolve(ctx, "unknown"))
	faults, err = store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Fault{source}, faults)
}

func TestVerdictCache(t *testing.T) {
	ctx := context.Background()
	cache := NewVerdictCache()

	_, ok, err := cache.Get(ctx, "disambiguate:abc")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, "disambiguate:abc", domain.VerdictReject))
	v, ok, err := cache.Get(ctx, "disambiguate:abc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.VerdictReject, v)

	err = cache.Put(ctx, "disambiguate:def", domain.Verdict("MAYBE"))
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Equal(t, 1, cache.Len())
}

func TestAuditStore(t *testing.T) {
	ctx := context.Background()
	store := NewAuditStore()

	_, err := store.ListVerdicts(ctx, "run-1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	outcomes := []domain.CandidateOutcome{
		{CandidateID: "tx-2-john-roe", Confirmed: 1},
		{CandidateID: "ca-1-jane-doe", Confirmed: 3},
	}
	require.NoError(t, store.SaveVerdicts(ctx, "run-1", outcomes))

	got, err := store.ListVerdicts(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "ca-1-jane-doe", got[0].CandidateID)
	assert.Equal(t, "tx-2-john-roe", outcomes[0].CandidateID)
}
