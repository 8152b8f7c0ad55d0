package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polycache/internal/querysql"
)

func TestLookupEventIDAndName(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.InsertEvents(ctx, []Event{fedEvent()})
	require.NoError(t, err)

	id, ok, err := s.LookupEventID(ctx, "fed-decision-in-january")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "123", id)

	name, ok, err := s.LookupEventName(ctx, "123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fed-decision-in-january", name)

	_, ok, err = s.LookupEventID(ctx, "x' OR '1'='1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExpireEvents_FlipsOnlyPastContracts(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	past := fedEvent()
	past.ID, past.ContractEnd = "past", "2025-12-01T00:00:00Z"
	future := fedEvent()
	future.ID = "future"
	unknown := fedEvent()
	unknown.ID, unknown.ContractEnd = "unknown", "unk"
	broken := fedEvent()
	broken.ID, broken.ContractEnd = "broken", "soon-ish"
	_, err := s.InsertEvents(ctx, []Event{past, future, unknown, broken})
	require.NoError(t, err)

	n, err := s.ExpireEvents(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := s.ReadEvents(ctx, querysql.Args{querysql.ArgEventID: "past"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.False(t, got[0].Active)
	assert.True(t, got[0].Closed)

	got, err = s.ReadEvents(ctx, querysql.Args{querysql.ArgEventID: "future"})
	require.NoError(t, err)
	assert.True(t, got[0].Active)

	n, err = s.ExpireEvents(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, n, "already expired events are no longer active")
}

func TestSetFlags(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.InsertEvents(ctx, []Event{fedEvent()})
	require.NoError(t, err)

	n, err := s.SetResearched(ctx, "123", true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.SetClosed(ctx, "123", true)
	require.NoError(t, err)
	_, err = s.SetActive(ctx, "123", false)
	require.NoError(t, err)

	got, err := s.ReadEvents(ctx, querysql.Args{querysql.ArgEventID: "123"})
	require.NoError(t, err)
	assert.True(t, got[0].Researched)
	assert.True(t, got[0].Closed)
	assert.False(t, got[0].Active)

	n, err = s.SetActive(ctx, "missing", true)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = s.SetFlag(ctx, "volume", "123", true)
	assert.Error(t, err)
}
