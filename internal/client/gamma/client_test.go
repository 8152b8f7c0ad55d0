package gamma

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eventsBody = `[{
	"id": "123",
	"ticker": "fed-decision-in-january",
	"slug": "fed-decision-in-january",
	"title": "Fed decision in January?",
	"description": "Resolves on 2026-01-28.",
	"volume": 15234.5,
	"createdAt": "2025-10-01T00:00:00Z",
	"updatedAt": "2025-10-02T00:00:00Z",
	"endDate": "2026-01-28T19:00:00Z",
	"active": true,
	"closed": false,
	"markets": [{
		"id": "m1",
		"slug": "fed-cut-25",
		"question": "Will the Fed cut 25bps?",
		"conditionId": "0xabc",
		"outcomes": "[\"Yes\", \"No\"]",
		"volumeNum": "1200.25",
		"clobTokenIds": "[\"111\", \"222\"]",
		"endDate": "2026-01-28T19:00:00Z"
	}]
}]`

func TestGetEvents_SendsParamsAndDecodes(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events", r.URL.Path)
		gotQuery = r.URL.RawQuery
		w.Write([]byte(eventsBody))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL+"/")
	events, err := c.GetEvents(context.Background(), EventsParams{ID: "123", Active: Bool(true), Limit: 5})
	require.NoError(t, err)

	assert.Equal(t, "active=true&id=123&limit=5", gotQuery)
	require.Len(t, events, 1)
	evt := events[0]
	assert.Equal(t, "fed-decision-in-january", evt.Ticker)
	assert.InDelta(t, 15234.5, float64(evt.Volume), 1e-9)
	require.NotNil(t, evt.Active)
	assert.True(t, *evt.Active)
	require.Len(t, evt.Markets, 1)
	m := evt.Markets[0]
	assert.Equal(t, StringList{"Yes", "No"}, m.Outcomes)
	assert.Equal(t, StringList{"111", "222"}, m.ClobTokenIDs)
	assert.InDelta(t, 1200.25, float64(m.VolumeNum), 1e-9)
}

func TestGetEvents_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewClient(srv.Client(), srv.URL).GetEvents(context.Background(), EventsParams{})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
}

func TestGetTags_Decodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tags", r.URL.Path)
		w.Write([]byte(`[{"id":"2","label":"Politics","slug":"politics"},{"id":"7","label":"Dating","slug":"dating"}]`))
	}))
	defer srv.Close()

	tags, err := NewClient(srv.Client(), srv.URL).GetTags(context.Background(), TagsParams{})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{ID: "2", Label: "Politics", Slug: "politics"}, {ID: "7", Label: "Dating", Slug: "dating"}}, tags)
}

func TestStringList_AcceptsArray(t *testing.T) {
	var l StringList
	require.NoError(t, l.UnmarshalJSON([]byte(`["Up","Down"]`)))
	assert.Equal(t, StringList{"Up", "Down"}, l)
}

func TestFloat_Null(t *testing.T) {
	f := Float(3)
	require.NoError(t, f.UnmarshalJSON([]byte("null")))
	assert.Zero(t, float64(f))
	assert.Error(t, f.UnmarshalJSON([]byte(`"abc"`)))
}
