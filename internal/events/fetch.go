package events

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/backfill"
	"github.com/roach88/polycache/internal/client/gamma"
	"github.com/roach88/polycache/internal/dates"
	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/querysql"
)

const (
	DefaultLimit    = 100
	DefaultSoonDays = 3
	// Top and by-id fetches keep markets for any event ending within this
	// many days.
	defaultWindowDays = 3000
)

// EventsClient is the slice of the Gamma client the fetcher needs.
type EventsClient interface {
	GetEvents(ctx context.Context, params gamma.EventsParams) ([]gamma.Event, error)
}

// GammaFetcher turns Gamma /events responses into catalog payloads.
type GammaFetcher struct {
	Client   EventsClient
	Clock    normalize.Clock
	Logger   *zap.Logger
	Limit    int
	SoonDays int
}

func (f *GammaFetcher) now() time.Time {
	if f.Clock == nil {
		return normalize.SystemClock{}.Now()
	}
	return f.Clock.Now()
}

func (f *GammaFetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}

func (f *GammaFetcher) limit() int {
	if f.Limit <= 0 {
		return DefaultLimit
	}
	return f.Limit
}

// ByID fetches one event by event_id, or by event_name (its slug) when no
// id is given.
func (f *GammaFetcher) ByID(ctx context.Context, args querysql.Args) (Payload, error) {
	var params gamma.EventsParams
	switch {
	case args.Has(querysql.ArgEventID):
		params.ID = args.Get(querysql.ArgEventID)
	case args.Has(querysql.ArgEventName):
		params.Slug = args.Get(querysql.ArgEventName)
	default:
		return Payload{}, fmt.Errorf("fetch event: no id or slug: %w", backfill.ErrNoData)
	}
	return f.fetch(ctx, params, defaultWindowDays)
}

// Top fetches the highest-volume active events.
func (f *GammaFetcher) Top(ctx context.Context, _ querysql.Args) (Payload, error) {
	return f.fetch(ctx, gamma.EventsParams{
		Active:    gamma.Bool(true),
		Closed:    gamma.Bool(false),
		Limit:     f.limit(),
		Order:     "volume",
		Ascending: gamma.Bool(false),
	}, defaultWindowDays)
}

// Soon fetches active events and keeps markets only for those resolving
// within SoonDays.
func (f *GammaFetcher) Soon(ctx context.Context, _ querysql.Args) (Payload, error) {
	days := f.SoonDays
	if days <= 0 {
		days = DefaultSoonDays
	}
	return f.fetch(ctx, gamma.EventsParams{
		Active: gamma.Bool(true),
		Closed: gamma.Bool(false),
		Limit:  f.limit(),
		Order:  "volume",
	}, days)
}

func (f *GammaFetcher) fetch(ctx context.Context, params gamma.EventsParams, windowDays int) (Payload, error) {
	raw, err := f.Client.GetEvents(ctx, params)
	if err != nil {
		return Payload{}, fmt.Errorf("gamma events: %w", err)
	}
	if len(raw) == 0 {
		return Payload{}, fmt.Errorf("gamma events: empty response: %w", backfill.ErrNoData)
	}
	now := f.now()
	payload := convert(raw, now, now.AddDate(0, 0, windowDays))
	if len(payload.Markets) == 0 {
		f.logger().Info("no markets resolving in window",
			zap.Int("events", len(payload.Events)),
			zap.Int("window_days", windowDays))
	}
	return payload, nil
}

// convert maps raw events to rows. Every event is kept; an event's markets
// are kept only when its end date falls in (now, until].
func convert(raw []gamma.Event, now, until time.Time) Payload {
	var p Payload
	for _, e := range raw {
		evt := Event{
			ID:          orUnknown(e.ID),
			Name:        orUnknown(e.Ticker),
			Title:       orUnknown(e.Title),
			Description: orUnknown(e.Description),
			Volume:      float64(e.Volume),
			Created:     orUnknown(e.CreatedAt),
			Updated:     orUnknown(e.UpdatedAt),
			ContractEnd: orUnknown(e.EndDate),
			Active:      boolOr(e.Active, true),
			Closed:      boolOr(e.Closed, true),
		}
		evt.EventEnd = extractEnd(evt.Description, evt.Name, now)
		p.Events = append(p.Events, evt)

		if e.EndDate == "" {
			continue
		}
		end, err := normalize.ParseTimestamp(e.EndDate)
		if err != nil || !end.After(now) || end.After(until) {
			continue
		}
		for _, m := range e.Markets {
			mkt := Market{
				EventID:      evt.ID,
				MarketID:     orUnknown(m.ID),
				Name:         orUnknown(m.Slug),
				Title:        orUnknown(m.Question),
				ConditionID:  orUnknown(m.ConditionID),
				Description:  orUnknown(m.Description),
				Outcomes:     []string(m.Outcomes),
				Volume:       float64(m.VolumeNum),
				ClobTokenIDs: []string(m.ClobTokenIDs),
				Created:      orUnknown(m.CreatedAt),
				Updated:      orUnknown(m.UpdatedAt),
				ContractEnd:  orUnknown(m.EndDate),
			}
			mkt.EventEnd = extractEnd(mkt.Description, mkt.Name, now)
			p.Markets = append(p.Markets, mkt)
		}
	}
	return p
}

func extractEnd(description, name string, now time.Time) string {
	if description == normalize.Unknown {
		return normalize.Unknown
	}
	return dates.SmartExtract(description, name, now)
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
