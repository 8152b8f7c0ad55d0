// Package contract is a per-event facade over the events and prices caches.
//
// A Contract is addressed by event id or slug; whichever is missing is
// resolved from the local catalog, backfilling it if needed. Every accessor
// goes through the read-through services, so repeated calls are local.
package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/polycache/internal/events"
	"github.com/roach88/polycache/internal/prices"
)

// ErrNotFound is returned when an event cannot be resolved locally or
// remotely.
var ErrNotFound = errors.New("event not found")

// Contract is one event and everything hanging off it.
type Contract struct {
	EventID   string
	EventName string

	events *events.Service
	prices *prices.Service
}

// TokenOutcome pairs an outcome token with the outcome it trades.
type TokenOutcome struct {
	MarketID    string `json:"market_id" yaml:"market_id"`
	ClobTokenID string `json:"clob_token_id" yaml:"clob_token_id"`
	Outcome     string `json:"outcome" yaml:"outcome"`
}

// OutcomePrice is a price point tagged with its outcome.
type OutcomePrice struct {
	prices.PricePoint `yaml:",inline"`
	Outcome           string `json:"outcome" yaml:"outcome"`
}

// Resolve builds a Contract from an event id or slug. When both are given
// they are trusted as is.
func Resolve(ctx context.Context, ev *events.Service, pr *prices.Service, eventID, eventName string) (*Contract, error) {
	if eventID == "" && eventName == "" {
		return nil, fmt.Errorf("resolve contract: event id or name is required")
	}
	c := &Contract{EventID: eventID, EventName: eventName, events: ev, prices: pr}
	if eventID != "" && eventName != "" {
		return c, nil
	}

	if err := c.lookup(ctx); err != nil {
		return nil, err
	}
	if c.EventID != "" && c.EventName != "" {
		return c, nil
	}

	// Not cached yet: backfill the event, then look again.
	if _, err := ev.GetEvents(ctx, c.eventsQuery(false)); err != nil {
		return nil, fmt.Errorf("resolve contract: %w", err)
	}
	if err := c.lookup(ctx); err != nil {
		return nil, err
	}
	if c.EventID == "" || c.EventName == "" {
		return nil, fmt.Errorf("resolve contract %s%s: %w", eventID, eventName, ErrNotFound)
	}
	return c, nil
}

func (c *Contract) lookup(ctx context.Context) error {
	st := c.events.Store()
	var err error
	switch {
	case c.EventID == "":
		c.EventID, _, err = st.LookupEventID(ctx, c.EventName)
	case c.EventName == "":
		c.EventName, _, err = st.LookupEventName(ctx, c.EventID)
	}
	if err != nil {
		return fmt.Errorf("resolve contract: %w", err)
	}
	return nil
}

func (c *Contract) eventsQuery(force bool) events.EventsQuery {
	q := events.EventsQuery{Force: force}
	if c.EventID != "" {
		q.EventID = c.EventID
	} else {
		q.EventName = c.EventName
	}
	return q
}

// Event returns the event row, or ErrNotFound when it is outside the
// default window (already resolved, or inactive).
func (c *Contract) Event(ctx context.Context, force bool) (events.EventView, error) {
	rows, err := c.events.GetEvents(ctx, c.eventsQuery(force))
	if err != nil {
		return events.EventView{}, err
	}
	if len(rows) == 0 {
		return events.EventView{}, fmt.Errorf("event %s: %w", c.EventID, ErrNotFound)
	}
	return rows[0], nil
}

// Markets returns the event's markets, or the one named by marketID.
func (c *Contract) Markets(ctx context.Context, marketID string, force bool) ([]events.MarketView, error) {
	return c.events.GetMarkets(ctx, events.MarketsQuery{
		EventID:  c.EventID,
		MarketID: marketID,
		Force:    force,
	})
}

// MarketIDs lists the event's market ids.
func (c *Contract) MarketIDs(ctx context.Context) ([]string, error) {
	markets, err := c.Markets(ctx, "", false)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(markets))
	for _, m := range markets {
		ids = append(ids, m.MarketID)
	}
	return ids, nil
}

// ClobTokenIDs lists outcome token ids across the event's markets, or for
// one market.
func (c *Contract) ClobTokenIDs(ctx context.Context, marketID string) ([]string, error) {
	pairs, err := c.tokenOutcomes(ctx, marketID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, p.ClobTokenID)
	}
	return ids, nil
}

// Outcomes lists outcome labels across the event's markets, or for one
// market.
func (c *Contract) Outcomes(ctx context.Context, marketID string) ([]string, error) {
	markets, err := c.Markets(ctx, marketID, false)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, m := range markets {
		out = append(out, m.Outcomes...)
	}
	return out, nil
}

// TokenOutcomes pairs each token with its outcome, market by market.
func (c *Contract) TokenOutcomes(ctx context.Context, marketID string) ([]TokenOutcome, error) {
	return c.tokenOutcomes(ctx, marketID)
}

func (c *Contract) tokenOutcomes(ctx context.Context, marketID string) ([]TokenOutcome, error) {
	markets, err := c.Markets(ctx, marketID, false)
	if err != nil {
		return nil, err
	}
	var out []TokenOutcome
	for _, m := range markets {
		n := min(len(m.ClobTokenIDs), len(m.Outcomes))
		for i := 0; i < n; i++ {
			out = append(out, TokenOutcome{
				MarketID:    m.MarketID,
				ClobTokenID: m.ClobTokenIDs[i],
				Outcome:     m.Outcomes[i],
			})
		}
	}
	return out, nil
}

// Prices returns price history for every token of the event, one market,
// or a single token, each point tagged with its outcome.
func (c *Contract) Prices(ctx context.Context, marketID, clobTokenID string, force bool) ([]OutcomePrice, error) {
	pairs, err := c.tokenOutcomes(ctx, marketID)
	if err != nil {
		return nil, err
	}
	if clobTokenID != "" {
		var only []TokenOutcome
		for _, p := range pairs {
			if p.ClobTokenID == clobTokenID {
				only = append(only, p)
				break
			}
		}
		if len(only) == 0 {
			only = []TokenOutcome{{ClobTokenID: clobTokenID}}
		}
		pairs = only
	}

	out := []OutcomePrice{}
	for _, p := range pairs {
		points, err := c.prices.GetPrices(ctx, prices.Query{ClobTokenID: p.ClobTokenID, Force: force})
		if err != nil {
			return nil, err
		}
		for _, pt := range points {
			out = append(out, OutcomePrice{PricePoint: pt, Outcome: p.Outcome})
		}
	}
	return out, nil
}

// DownloadAll warms the cache with the event, its markets and every
// token's price history.
func (c *Contract) DownloadAll(ctx context.Context) error {
	if _, err := c.Markets(ctx, "", false); err != nil {
		return err
	}
	if _, err := c.events.GetEvents(ctx, c.eventsQuery(false)); err != nil {
		return err
	}
	_, err := c.Prices(ctx, "", "", false)
	return err
}

// Summary renders the event header shown by the CLI.
func (c *Contract) Summary(ctx context.Context) (string, error) {
	evt, err := c.Event(ctx, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ID: %s\nName: %s\nEVENT END: %s\nCONTRACT END: %s\n\nDescription: %s\n",
		c.EventID, c.EventName, evt.EventEnd, evt.ContractEnd, evt.Description), nil
}
