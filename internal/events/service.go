package events

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/backfill"
	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/querysql"
)

// Mode picks the catalog fetch used when a request names no event.
type Mode string

const (
	ModeTop  Mode = "top"
	ModeSoon Mode = "soon"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeTop || m == ModeSoon
}

// SortKey orders results ascending.
type SortKey string

const (
	SortByDTR    SortKey = "dtr"
	SortByVolume SortKey = "volume"
)

// DefaultMaxDTR admits effectively every future event.
const DefaultMaxDTR = 10_000

// Fetcher is the remote side of the catalog.
type Fetcher interface {
	ByID(ctx context.Context, args querysql.Args) (Payload, error)
	Top(ctx context.Context, args querysql.Args) (Payload, error)
	Soon(ctx context.Context, args querysql.Args) (Payload, error)
}

// ErrInvalidWindow is returned for an unknown sort key or date column.
var ErrInvalidWindow = errors.New("invalid window")

// Window is the post-read shaping shared by event and market requests.
// Zero fields take defaults: sort by dtr, contract_end for both columns,
// DefaultMaxDTR.
type Window struct {
	SortBy       SortKey
	FilterColumn normalize.DateColumn
	DTRColumn    normalize.DateColumn
	MaxDTR       int
}

func (w Window) withDefaults() (Window, error) {
	if w.SortBy == "" {
		w.SortBy = SortByDTR
	}
	if w.FilterColumn == "" {
		w.FilterColumn = normalize.ColumnContractEnd
	}
	if w.DTRColumn == "" {
		w.DTRColumn = normalize.ColumnContractEnd
	}
	if w.MaxDTR <= 0 {
		w.MaxDTR = DefaultMaxDTR
	}
	if w.SortBy != SortByDTR && w.SortBy != SortByVolume {
		return w, fmt.Errorf("unknown sort key %q: %w", w.SortBy, ErrInvalidWindow)
	}
	if !w.FilterColumn.Valid() {
		return w, fmt.Errorf("unknown date column %q: %w", w.FilterColumn, ErrInvalidWindow)
	}
	if !w.DTRColumn.Valid() {
		return w, fmt.Errorf("unknown date column %q: %w", w.DTRColumn, ErrInvalidWindow)
	}
	return w, nil
}

// EventsQuery selects events. Inactive asks for inactive events instead of
// active ones. Fetch overrides the default catalog fetch when no event is
// named.
type EventsQuery struct {
	EventID   string
	EventName string
	Inactive  bool
	Window
	Force bool
	Fetch backfill.FetchFunc[Payload]
}

// MarketsQuery selects markets. MarketName doubles as the event slug when
// a fetch is needed.
type MarketsQuery struct {
	EventID    string
	MarketID   string
	MarketName string
	Window
	Force bool
	Fetch backfill.FetchFunc[Payload]
}

// ServiceConfig carries the Service collaborators. Nil fields take defaults.
type ServiceConfig struct {
	Mode   Mode
	Clock  normalize.Clock
	Logger *zap.Logger
}

// Service answers catalog requests through the read-through cache.
type Service struct {
	store   *Store
	fetcher Fetcher
	orch    *backfill.Orchestrator
	clock   normalize.Clock
	logger  *zap.Logger
	mode    Mode
}

func NewService(st *Store, fetcher Fetcher, cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = normalize.SystemClock{}
	}
	if !cfg.Mode.Valid() {
		cfg.Mode = ModeTop
	}
	return &Service{
		store:   st,
		fetcher: fetcher,
		orch:    backfill.New(cfg.Logger),
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		mode:    cfg.Mode,
	}
}

// Store returns the backing catalog store.
func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) selectFetch(args querysql.Args, override backfill.FetchFunc[Payload]) backfill.FetchFunc[Payload] {
	if args.Has(querysql.ArgEventID) || args.Has(querysql.ArgEventName) {
		return s.fetcher.ByID
	}
	if override != nil {
		return override
	}
	if s.mode == ModeSoon {
		return s.fetcher.Soon
	}
	return s.fetcher.Top
}

func (s *Service) writes() []backfill.Step[Payload] {
	return []backfill.Step[Payload]{
		backfill.Into(TableEvents, func(p Payload) []Event { return p.Events }, s.store.InsertEvents),
		backfill.Into(TableMarkets, func(p Payload) []Market { return p.Markets }, s.store.InsertMarkets),
	}
}

var fetchArgs = []querysql.Arg{querysql.ArgEventID, querysql.ArgEventName}

// GetEvents returns events matching q, each with its days-to-resolution.
func (s *Service) GetEvents(ctx context.Context, q EventsQuery) ([]EventView, error) {
	w, err := q.Window.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	args := querysql.Args{
		querysql.ArgEventID:   q.EventID,
		querysql.ArgEventName: q.EventName,
	}
	plan := backfill.Plan[Event, Payload]{
		Name:      "events",
		Read:      s.store.ReadEvents,
		ReadArgs:  EventReadArgs,
		Fetch:     s.selectFetch(args, q.Fetch),
		FetchArgs: fetchArgs,
		Writes:    s.writes(),
	}
	rows, err := backfill.Run(ctx, s.orch, plan, args, q.Force)
	if err != nil {
		return nil, err
	}

	shaped := shape(rows, w, s.clock, s.logger)
	wantActive := !q.Inactive
	out := make([]EventView, 0, len(shaped))
	for _, r := range shaped {
		if r.Row.Active != wantActive {
			continue
		}
		out = append(out, EventView{Event: r.Row, DTR: r.DTR})
	}
	if w.SortBy == SortByVolume {
		slices.SortStableFunc(out, func(a, b EventView) int { return compareFloat(a.Volume, b.Volume) })
	} else {
		slices.SortStableFunc(out, func(a, b EventView) int { return a.DTR - b.DTR })
	}
	return out, nil
}

// GetMarkets returns markets matching q, each with its days-to-resolution.
func (s *Service) GetMarkets(ctx context.Context, q MarketsQuery) ([]MarketView, error) {
	w, err := q.Window.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	args := querysql.Args{
		querysql.ArgEventID:    q.EventID,
		querysql.ArgMarketID:   q.MarketID,
		querysql.ArgMarketName: q.MarketName,
		querysql.ArgEventName:  q.MarketName,
	}
	plan := backfill.Plan[Market, Payload]{
		Name:      "markets",
		Read:      s.store.ReadMarkets,
		ReadArgs:  MarketReadArgs,
		Fetch:     s.selectFetch(args, q.Fetch),
		FetchArgs: fetchArgs,
		Writes:    s.writes(),
	}
	rows, err := backfill.Run(ctx, s.orch, plan, args, q.Force)
	if err != nil {
		return nil, err
	}

	shaped := shape(rows, w, s.clock, s.logger)
	out := make([]MarketView, 0, len(shaped))
	for _, r := range shaped {
		out = append(out, MarketView{Market: r.Row, DTR: r.DTR})
	}
	if w.SortBy == SortByVolume {
		slices.SortStableFunc(out, func(a, b MarketView) int { return compareFloat(a.Volume, b.Volume) })
	} else {
		slices.SortStableFunc(out, func(a, b MarketView) int { return a.DTR - b.DTR })
	}
	return out, nil
}

// shape attaches dtr and keeps rows inside the window.
func shape[T normalize.Dated](rows []T, w Window, clock normalize.Clock, logger *zap.Logger) []normalize.WithDTR[T] {
	withDTR := normalize.ComputeDTR(rows, w.DTRColumn, clock.Now(), logger)
	if w.FilterColumn != w.DTRColumn {
		withDTR = normalize.DropUnknown(withDTR, w.FilterColumn)
	}
	return normalize.WithinDTR(withDTR, w.MaxDTR)
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
