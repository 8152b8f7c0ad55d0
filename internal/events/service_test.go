package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/testutil"
)

func newTestService(t *testing.T, f Fetcher) *Service {
	t.Helper()
	return NewService(createTestStore(t), f, ServiceConfig{Clock: testutil.NewFixedClock(testNow)})
}

func TestGetMarkets_BackfillsThenServesFromCache(t *testing.T) {
	f := newFakeFetcher(Payload{Events: []Event{fedEvent()}, Markets: fedMarkets()})
	svc := newTestService(t, f)
	ctx := context.Background()

	got, err := svc.GetMarkets(ctx, MarketsQuery{EventID: "123"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, f.byID.Calls())
	assert.Equal(t, "123", f.byID.LastArgs().Get(querysql.ArgEventID))
	assert.Equal(t, 27, got[0].DTR)

	events, err := svc.Store().ReadEvents(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, events, 1, "the event component is persisted too")

	again, err := svc.GetMarkets(ctx, MarketsQuery{EventID: "123"})
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, 1, f.total(), "second call is served locally")
}

func TestGetMarkets_SortByVolume(t *testing.T) {
	f := newFakeFetcher(Payload{Events: []Event{fedEvent()}, Markets: fedMarkets()})
	svc := newTestService(t, f)

	got, err := svc.GetMarkets(context.Background(), MarketsQuery{
		EventID: "123",
		Window:  Window{SortBy: SortByVolume},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "m2", got[0].MarketID)
	assert.Equal(t, "m1", got[1].MarketID)
}

func TestGetMarkets_NameDoublesAsSlug(t *testing.T) {
	f := newFakeFetcher(Payload{})
	f.byID.FailWith(errors.New("offline"))
	svc := newTestService(t, f)

	got, err := svc.GetMarkets(context.Background(), MarketsQuery{MarketName: "fed-hold"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "fed-hold", f.byID.LastArgs().Get(querysql.ArgEventName))
	assert.False(t, f.byID.LastArgs().Has(querysql.ArgMarketName), "fetch only sees its own args")
}

func TestGetEvents_DefaultModeAndOverride(t *testing.T) {
	f := newFakeFetcher(Payload{Events: []Event{fedEvent()}})
	st := createTestStore(t)
	svc := NewService(st, f, ServiceConfig{Mode: ModeSoon, Clock: testutil.NewFixedClock(testNow)})

	_, err := svc.GetEvents(context.Background(), EventsQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.soon.Calls())
	assert.Zero(t, f.top.Calls())

	custom := testutil.NewFetchRecorder(Payload{})
	_, err = svc.GetEvents(context.Background(), EventsQuery{Force: true, Fetch: custom.Fetch})
	require.NoError(t, err)
	assert.Equal(t, 1, custom.Calls())
}

func TestGetEvents_WindowAndStatusFilters(t *testing.T) {
	soon := fedEvent()
	soon.ID, soon.Name, soon.ContractEnd, soon.Volume = "soon", "soon", "2026-01-03T00:00:00Z", 50
	late := fedEvent()
	late.ID, late.Name, late.ContractEnd, late.Volume = "late", "late", "2026-06-01T00:00:00Z", 10
	past := fedEvent()
	past.ID, past.Name, past.ContractEnd = "past", "past", "2025-12-25T00:00:00Z"
	unknown := fedEvent()
	unknown.ID, unknown.Name, unknown.ContractEnd = "unknown", "unknown", normalize.Unknown
	closed := fedEvent()
	closed.ID, closed.Name, closed.Active = "closed", "closed", false
	noEventEnd := fedEvent()
	noEventEnd.ID, noEventEnd.Name, noEventEnd.EventEnd = "no-event-end", "no-event-end", normalize.Unknown

	f := newFakeFetcher(Payload{Events: []Event{late, soon, past, unknown, closed, noEventEnd}})
	svc := newTestService(t, f)
	ctx := context.Background()

	got, err := svc.GetEvents(ctx, EventsQuery{})
	require.NoError(t, err)
	ids := eventIDs(got)
	assert.Equal(t, []string{"soon", "no-event-end", "late"}, ids, "soonest first")

	got, err = svc.GetEvents(ctx, EventsQuery{Window: Window{MaxDTR: 5}})
	require.NoError(t, err)
	assert.Equal(t, []string{"soon"}, eventIDs(got))

	got, err = svc.GetEvents(ctx, EventsQuery{Window: Window{FilterColumn: normalize.ColumnEventEnd}})
	require.NoError(t, err)
	assert.NotContains(t, eventIDs(got), "no-event-end")

	got, err = svc.GetEvents(ctx, EventsQuery{Inactive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"closed"}, eventIDs(got))

	got, err = svc.GetEvents(ctx, EventsQuery{Window: Window{SortBy: SortByVolume}})
	require.NoError(t, err)
	assert.Equal(t, "late", eventIDs(got)[0])

	assert.Equal(t, 1, f.total())
}

func TestGetEvents_InvalidWindow(t *testing.T) {
	svc := newTestService(t, newFakeFetcher(Payload{}))

	_, err := svc.GetEvents(context.Background(), EventsQuery{Window: Window{SortBy: "name"}})
	assert.ErrorIs(t, err, ErrInvalidWindow)
	_, err = svc.GetMarkets(context.Background(), MarketsQuery{Window: Window{DTRColumn: "created"}})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func eventIDs(views []EventView) []string {
	ids := make([]string, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	return ids
}
