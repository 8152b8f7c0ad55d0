package events

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/store"
)

// Store owns the write path of the events and markets tables.
type Store struct {
	db     *store.Store
	owned  bool
	logger *zap.Logger
}

// Open opens a store file with the catalog schemas registered.
func Open(path string, logger *zap.Logger, opts ...store.Option) (*Store, error) {
	opts = append(opts, store.WithSchemas(Schemas()...))
	db, err := store.Open(path, opts...)
	if err != nil {
		return nil, err
	}
	s := NewStore(db, logger)
	s.owned = true
	return s, nil
}

// NewStore wraps an already open store. The caller keeps ownership of db and
// is expected to have registered Schemas on it; if not, the first read
// bootstraps them.
func NewStore(db *store.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// Close closes the underlying store if Open created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

// InsertEvents persists events, skipping ids already present.
func (s *Store) InsertEvents(ctx context.Context, events []Event) (int64, error) {
	rows := make([][]any, 0, len(events))
	for _, e := range events {
		rows = append(rows, []any{
			e.ID, e.Name, e.Title, e.Description, e.Volume, e.Created, e.Updated,
			orUnknown(e.EventEnd), orUnknown(e.ContractEnd),
			e.Active, e.Closed, e.Researched,
		})
	}
	n, err := s.db.Insert(ctx, insertEventSQL, rows)
	if err != nil {
		return 0, fmt.Errorf("insert events: %w", err)
	}
	return n, nil
}

// InsertMarkets persists markets, skipping (event_id, market_id) pairs
// already present.
func (s *Store) InsertMarkets(ctx context.Context, markets []Market) (int64, error) {
	rows := make([][]any, 0, len(markets))
	for _, m := range markets {
		rows = append(rows, []any{
			m.EventID, m.MarketID, m.Name, m.Title, m.ConditionID, m.Description,
			normalize.EncodeList(m.Outcomes), m.Volume, normalize.EncodeList(m.ClobTokenIDs),
			m.Created, m.Updated, orUnknown(m.EventEnd), orUnknown(m.ContractEnd),
		})
	}
	n, err := s.db.Insert(ctx, insertMarketSQL, rows)
	if err != nil {
		return 0, fmt.Errorf("insert markets: %w", err)
	}
	return n, nil
}

// ReadEvents returns events matching args. Recognised args are event_id
// and event_name; with neither, every event is returned.
func (s *Store) ReadEvents(ctx context.Context, args querysql.Args) ([]Event, error) {
	query, params := querysql.Build(selectEventsSQL, eventColumns, args)
	table, err := s.db.ReadOrRecreate(ctx, EventsSchema, query, params)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	out := make([]Event, 0, table.Len())
	for i := range table.Rows {
		r := table.Row(i)
		out = append(out, Event{
			ID:          r.String("id"),
			Name:        r.String("name"),
			Title:       r.String("title"),
			Description: r.String("description"),
			Volume:      r.Float("volume"),
			Created:     r.String("created"),
			Updated:     r.String("updated"),
			EventEnd:    orUnknown(r.String("event_end")),
			ContractEnd: orUnknown(r.String("contract_end")),
			Active:      r.Bool("active"),
			Closed:      r.Bool("closed"),
			Researched:  r.Bool("researched"),
		})
	}
	return out, nil
}

// ReadMarkets returns markets matching args. Recognised args are event_id,
// market_id and market_name.
func (s *Store) ReadMarkets(ctx context.Context, args querysql.Args) ([]Market, error) {
	query, params := querysql.Build(selectMarketsSQL, marketColumns, args)
	table, err := s.db.ReadOrRecreate(ctx, MarketsSchema, query, params)
	if err != nil {
		return nil, fmt.Errorf("read markets: %w", err)
	}
	out := make([]Market, 0, table.Len())
	for i := range table.Rows {
		r := table.Row(i)
		out = append(out, Market{
			EventID:      r.String("event_id"),
			MarketID:     r.String("market_id"),
			Name:         r.String("name"),
			Title:        r.String("title"),
			ConditionID:  r.String("condition_id"),
			Description:  r.String("description"),
			Outcomes:     normalize.DecodeList(r.String("outcomes")),
			Volume:       r.Float("volume"),
			ClobTokenIDs: normalize.DecodeList(r.String("clob_token_ids")),
			Created:      r.String("created"),
			Updated:      r.String("updated"),
			EventEnd:     orUnknown(r.String("event_end")),
			ContractEnd:  orUnknown(r.String("contract_end")),
		})
	}
	return out, nil
}
