package backfill

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/testutil"
)

type item struct {
	Group string
	ID    string
}

type parent struct{ ID string }

type payload struct {
	Parents []parent
	Items   []item
}

// memTable is an idempotent in-memory table keyed by (group, id).
type memTable struct {
	rows      map[string]item
	parents   map[string]parent
	writes    []string
	readCalls int
	readArgs  []querysql.Args
}

func newMemTable(seed ...item) *memTable {
	m := &memTable{rows: map[string]item{}, parents: map[string]parent{}}
	for _, it := range seed {
		m.rows[it.Group+"/"+it.ID] = it
	}
	return m
}

func (m *memTable) read(_ context.Context, args querysql.Args) ([]item, error) {
	m.readCalls++
	m.readArgs = append(m.readArgs, args)
	out := []item{}
	for _, it := range m.rows {
		if g := args.Get(querysql.ArgEventID); g != "" && it.Group != g {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTable) insertItems(_ context.Context, items []item) (int64, error) {
	m.writes = append(m.writes, "items")
	var n int64
	for _, it := range items {
		key := it.Group + "/" + it.ID
		if _, ok := m.rows[key]; ok {
			continue
		}
		m.rows[key] = it
		n++
	}
	return n, nil
}

func (m *memTable) insertParents(_ context.Context, ps []parent) (int64, error) {
	m.writes = append(m.writes, "parents")
	var n int64
	for _, p := range ps {
		if _, ok := m.parents[p.ID]; !ok {
			m.parents[p.ID] = p
			n++
		}
	}
	return n, nil
}

func testPlan(m *memTable, fetch FetchFunc[payload]) Plan[item, payload] {
	return Plan[item, payload]{
		Name:      "items",
		Read:      m.read,
		ReadArgs:  []querysql.Arg{querysql.ArgEventID, querysql.ArgMarketID},
		Fetch:     fetch,
		FetchArgs: []querysql.Arg{querysql.ArgEventID, querysql.ArgEventName},
		Writes: []Step[payload]{
			Into("parents", func(p payload) []parent { return p.Parents }, m.insertParents),
			Into("items", func(p payload) []item { return p.Items }, m.insertItems),
		},
	}
}

var remote = payload{
	Parents: []parent{{ID: "123"}},
	Items:   []item{{Group: "123", ID: "a"}, {Group: "123", ID: "b"}},
}

func TestRun_CacheHitNeverFetches(t *testing.T) {
	m := newMemTable(item{Group: "123", ID: "cached"})
	rec := testutil.NewFetchRecorder(remote)

	rows, stats, err := RunWithStats(context.Background(), New(nil), testPlan(m, rec.Fetch),
		querysql.Args{querysql.ArgEventID: "123"}, false)

	require.NoError(t, err)
	assert.Equal(t, []item{{Group: "123", ID: "cached"}}, rows)
	assert.Equal(t, 0, rec.Calls())
	assert.True(t, stats.CacheHit)
	assert.False(t, stats.Fetched)
	assert.Empty(t, m.writes)
}

func TestRun_CacheMissFetchesInsertsAndRereads(t *testing.T) {
	m := newMemTable()
	rec := testutil.NewFetchRecorder(remote)

	rows, stats, err := RunWithStats(context.Background(), nil, testPlan(m, rec.Fetch),
		querysql.Args{querysql.ArgEventID: "123"}, false)

	require.NoError(t, err)
	assert.Equal(t, remote.Items, rows)
	assert.Equal(t, 1, rec.Calls())
	assert.Equal(t, []string{"parents", "items"}, m.writes, "writes run in plan order")
	assert.Equal(t, int64(1), stats.Inserted["parents"])
	assert.Equal(t, int64(2), stats.Inserted["items"])
	assert.Equal(t, 2, m.readCalls, "read, then re-read after insert")
}

func TestRun_FiltersArgsPerOperation(t *testing.T) {
	m := newMemTable()
	rec := testutil.NewFetchRecorder(remote)
	args := querysql.Args{
		querysql.ArgEventID:     "123",
		querysql.ArgEventName:   "slug",
		querysql.ArgMarketID:    "m1",
		querysql.ArgClobTokenID: "tok",
	}

	_, err := Run(context.Background(), nil, testPlan(m, rec.Fetch), args, false)
	require.NoError(t, err)

	assert.Equal(t, querysql.Args{querysql.ArgEventID: "123", querysql.ArgEventName: "slug"}, rec.LastArgs())
	for _, got := range m.readArgs {
		assert.Equal(t, querysql.Args{querysql.ArgEventID: "123", querysql.ArgMarketID: "m1"}, got)
	}
}

func TestRun_ForceAlwaysFetchesAndKeepsUnion(t *testing.T) {
	m := newMemTable(item{Group: "123", ID: "old"})
	rec := testutil.NewFetchRecorder(remote)

	rows, stats, err := RunWithStats(context.Background(), nil, testPlan(m, rec.Fetch),
		querysql.Args{querysql.ArgEventID: "123"}, true)

	require.NoError(t, err)
	assert.Equal(t, 1, rec.Calls())
	assert.False(t, stats.CacheHit)
	assert.True(t, stats.Fetched)
	assert.Equal(t, []item{
		{Group: "123", ID: "a"},
		{Group: "123", ID: "b"},
		{Group: "123", ID: "old"},
	}, rows)
	assert.Equal(t, 1, m.readCalls, "force path reads only after writing")
}

func TestRun_NoDataReturnsEmptyWithoutWrites(t *testing.T) {
	m := newMemTable()
	rec := testutil.NewFetchRecorder(payload{}).FailWith(fmt.Errorf("event 9: %w", ErrNoData))

	rows, stats, err := RunWithStats(context.Background(), nil, testPlan(m, rec.Fetch),
		querysql.Args{querysql.ArgEventID: "9"}, false)

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
	assert.Empty(t, m.writes)
	assert.False(t, stats.Fetched)
}

func TestRun_RemoteFailureIsNotPropagated(t *testing.T) {
	m := newMemTable()
	rec := testutil.NewFetchRecorder(payload{}).FailWith(errors.New("connection refused"))

	rows, err := Run(context.Background(), nil, testPlan(m, rec.Fetch), nil, false)

	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Empty(t, m.writes)
}

func TestRun_ForceWithFailedFetchFallsBackToLocal(t *testing.T) {
	m := newMemTable(item{Group: "123", ID: "old"})
	rec := testutil.NewFetchRecorder(payload{}).FailWith(errors.New("timeout"))

	rows, err := Run(context.Background(), nil, testPlan(m, rec.Fetch), querysql.Args{querysql.ArgEventID: "123"}, true)

	require.NoError(t, err)
	assert.Equal(t, []item{{Group: "123", ID: "old"}}, rows)
	assert.Empty(t, m.writes)
}

func TestRun_SecondCallIsCacheHit(t *testing.T) {
	m := newMemTable()
	rec := testutil.NewFetchRecorder(remote)
	plan := testPlan(m, rec.Fetch)
	args := querysql.Args{querysql.ArgEventID: "123"}

	_, err := Run(context.Background(), nil, plan, args, false)
	require.NoError(t, err)
	_, err = Run(context.Background(), nil, plan, args, false)
	require.NoError(t, err)

	assert.Equal(t, 1, rec.Calls())
}

func TestRun_ReadErrorPropagates(t *testing.T) {
	boom := errors.New("disk I/O error")
	plan := Plan[item, payload]{
		Name: "broken",
		Read: func(context.Context, querysql.Args) ([]item, error) { return nil, boom },
		Fetch: func(context.Context, querysql.Args) (payload, error) {
			t.Fatal("fetch must not run when the read fails")
			return payload{}, nil
		},
	}

	_, err := Run(context.Background(), nil, plan, nil, false)
	assert.ErrorIs(t, err, boom)
}

func TestRun_WriteErrorPropagates(t *testing.T) {
	m := newMemTable()
	boom := errors.New("constraint failed")
	plan := testPlan(m, testutil.NewFetchRecorder(remote).Fetch)
	plan.Writes = append(plan.Writes, Step[payload]{
		Table: "audit",
		Apply: func(context.Context, payload) (int64, error) { return 0, boom },
	})

	_, err := Run(context.Background(), nil, plan, nil, false)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "write audit")
}

func TestIsNoData(t *testing.T) {
	assert.True(t, IsNoData(fmt.Errorf("wrapped: %w", ErrNoData)))
	assert.False(t, IsNoData(errors.New("other")))
}

func TestRun_LogsWhatTheRequestDid(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := New(zap.New(core))
	m := newMemTable()
	rec := testutil.NewFetchRecorder(remote)
	args := querysql.Args{querysql.ArgEventID: "123"}

	_, err := Run(context.Background(), o, testPlan(m, rec.Fetch), args, false)
	require.NoError(t, err)
	_, err = Run(context.Background(), o, testPlan(m, rec.Fetch), args, false)
	require.NoError(t, err)

	served := logs.FilterMessage("request served").All()
	require.Len(t, served, 2)

	miss := served[0].ContextMap()
	assert.Equal(t, "items", miss["plan"])
	assert.Equal(t, int64(2), miss["rows"])
	assert.Equal(t, false, miss["cache_hit"])
	assert.Equal(t, true, miss["fetched"])
	assert.Equal(t, int64(1), miss["inserted_parents"])
	assert.Equal(t, int64(2), miss["inserted_items"])

	hit := served[1].ContextMap()
	assert.Equal(t, true, hit["cache_hit"])
	assert.Equal(t, false, hit["fetched"])
	assert.NotContains(t, hit, "inserted_items")
}

func TestStats_FieldsOrderedByTable(t *testing.T) {
	fields := Stats{Fetched: true, Inserted: map[string]int64{"markets": 3, "events": 1}}.Fields()

	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"cache_hit", "fetched", "inserted_events", "inserted_markets"}, keys)
}
