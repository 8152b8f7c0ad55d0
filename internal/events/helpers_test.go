package events

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/testutil"
)

var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "events.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func fedEvent() Event {
	return Event{
		ID:          "123",
		Name:        "fed-decision-in-january",
		Title:       "Fed decision in January?",
		Description: "Resolves on 2026-01-28.",
		Volume:      15234.5,
		Created:     "2025-10-01T00:00:00Z",
		Updated:     "2025-10-02T00:00:00Z",
		EventEnd:    "2026-01-28 00:00:00",
		ContractEnd: "2026-01-28T19:00:00Z",
		Active:      true,
	}
}

func fedMarkets() []Market {
	base := Market{
		EventID:     "123",
		Description: "Resolves on 2026-01-28.",
		Outcomes:    []string{"Yes", "No"},
		EventEnd:    "2026-01-28 00:00:00",
		ContractEnd: "2026-01-28T19:00:00Z",
	}
	cut := base
	cut.MarketID, cut.Name, cut.Title, cut.ConditionID = "m1", "fed-cut-25", "Will the Fed cut 25bps?", "0xaaa"
	cut.ClobTokenIDs = []string{"111", "222"}
	cut.Volume = 900
	hold := base
	hold.MarketID, hold.Name, hold.Title, hold.ConditionID = "m2", "fed-hold", "Will the Fed hold?", "0xbbb"
	hold.ClobTokenIDs = []string{"333", "444"}
	hold.Volume = 300
	return []Market{cut, hold}
}

// fakeFetcher records calls per mode.
type fakeFetcher struct {
	byID *testutil.FetchRecorder[Payload]
	top  *testutil.FetchRecorder[Payload]
	soon *testutil.FetchRecorder[Payload]
}

func newFakeFetcher(p Payload) *fakeFetcher {
	return &fakeFetcher{
		byID: testutil.NewFetchRecorder(p),
		top:  testutil.NewFetchRecorder(p),
		soon: testutil.NewFetchRecorder(p),
	}
}

func (f *fakeFetcher) ByID(ctx context.Context, a querysql.Args) (Payload, error) {
	return f.byID.Fetch(ctx, a)
}

func (f *fakeFetcher) Top(ctx context.Context, a querysql.Args) (Payload, error) {
	return f.top.Fetch(ctx, a)
}

func (f *fakeFetcher) Soon(ctx context.Context, a querysql.Args) (Payload, error) {
	return f.soon.Fetch(ctx, a)
}

func (f *fakeFetcher) total() int {
	return f.byID.Calls() + f.top.Calls() + f.soon.Calls()
}
