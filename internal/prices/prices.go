// Package prices caches per-token price history from the CLOB.
package prices

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/backfill"
	"github.com/roach88/polycache/internal/client/clob"
	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/querysql"
	"github.com/roach88/polycache/internal/store"
)

const TablePrices = "prices"

var Schema = store.Schema{
	Name: TablePrices,
	Create: `CREATE TABLE IF NOT EXISTS prices (
		clob_token_id TEXT,
		date TEXT,
		price TEXT,
		PRIMARY KEY (clob_token_id, date))`,
}

const insertPriceSQL = `INSERT OR IGNORE INTO prices (clob_token_id, date, price) VALUES (?, ?, ?)`

const selectPricesSQL = `SELECT clob_token_id, date, price FROM prices`

var columns = querysql.ColumnMap{
	{Arg: querysql.ArgClobTokenID, Name: "clob_token_id"},
	{Arg: querysql.ArgDate, Name: "date"},
}

// ReadArgs are the filters ReadPrices understands.
var ReadArgs = []querysql.Arg{querysql.ArgClobTokenID, querysql.ArgDate}

// PricePoint is one row of the prices table. Date uses normalize.StoredLayout.
type PricePoint struct {
	ClobTokenID string          `json:"clob_token_id" yaml:"clob_token_id"`
	Date        string          `json:"date" yaml:"date"`
	Price       decimal.Decimal `json:"price" yaml:"price"`
}

// Store owns the write path of the prices table.
type Store struct {
	db     *store.Store
	logger *zap.Logger
}

func NewStore(db *store.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{db: db, logger: logger}
}

// InsertPrices persists points, skipping (token, date) pairs already stored.
func (s *Store) InsertPrices(ctx context.Context, points []PricePoint) (int64, error) {
	rows := make([][]any, 0, len(points))
	for _, p := range points {
		rows = append(rows, []any{p.ClobTokenID, p.Date, p.Price.String()})
	}
	n, err := s.db.Insert(ctx, insertPriceSQL, rows)
	if err != nil {
		return 0, fmt.Errorf("insert prices: %w", err)
	}
	return n, nil
}

// ReadPrices returns points matching args ordered by token and date.
// A stored price that is not a number is logged and skipped.
func (s *Store) ReadPrices(ctx context.Context, args querysql.Args) ([]PricePoint, error) {
	query, params := querysql.Build(selectPricesSQL, columns, args)
	table, err := s.db.ReadOrRecreate(ctx, Schema, query+" ORDER BY clob_token_id, date", params)
	if err != nil {
		return nil, fmt.Errorf("read prices: %w", err)
	}
	out := make([]PricePoint, 0, table.Len())
	for i := range table.Rows {
		r := table.Row(i)
		price, err := decimal.NewFromString(r.String("price"))
		if err != nil {
			s.logger.Warn("skipping malformed price",
				zap.String("clob_token_id", r.String("clob_token_id")),
				zap.String("date", r.String("date")),
				zap.Error(err))
			continue
		}
		out = append(out, PricePoint{
			ClobTokenID: r.String("clob_token_id"),
			Date:        r.String("date"),
			Price:       price,
		})
	}
	return out, nil
}

// HistoryClient is the slice of the CLOB client the fetcher needs.
type HistoryClient interface {
	GetPriceHistory(ctx context.Context, tokenID, interval string, fidelity int) ([]clob.PricePoint, error)
}

// ClobFetcher fetches a token's full history from the CLOB.
type ClobFetcher struct {
	Client   HistoryClient
	Interval string
	Fidelity int
}

// Fetch implements backfill.FetchFunc for prices. The date arg is ignored:
// the CLOB serves whole histories.
func (f *ClobFetcher) Fetch(ctx context.Context, args querysql.Args) ([]PricePoint, error) {
	token := args.Get(querysql.ArgClobTokenID)
	if token == "" {
		return nil, fmt.Errorf("fetch prices: no clob_token_id: %w", backfill.ErrNoData)
	}
	history, err := f.Client.GetPriceHistory(ctx, token, f.Interval, f.Fidelity)
	if err != nil {
		return nil, fmt.Errorf("fetch prices for %s: %w", token, err)
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("fetch prices for %s: empty history: %w", token, backfill.ErrNoData)
	}
	out := make([]PricePoint, 0, len(history))
	for _, h := range history {
		out = append(out, PricePoint{
			ClobTokenID: token,
			Date:        time.Unix(h.T, 0).UTC().Format(normalize.StoredLayout),
			Price:       h.P,
		})
	}
	return out, nil
}

// Query selects price points. Date narrows to one sample.
type Query struct {
	ClobTokenID string
	Date        string
	Force       bool
}

// Service answers price requests through the read-through cache.
type Service struct {
	store *Store
	fetch backfill.FetchFunc[[]PricePoint]
	orch  *backfill.Orchestrator
}

func NewService(st *Store, fetch backfill.FetchFunc[[]PricePoint], logger *zap.Logger) *Service {
	return &Service{store: st, fetch: fetch, orch: backfill.New(logger)}
}

// GetPrices returns the stored history for q, backfilling when empty.
func (s *Service) GetPrices(ctx context.Context, q Query) ([]PricePoint, error) {
	plan := backfill.Plan[PricePoint, []PricePoint]{
		Name:      "prices",
		Read:      s.store.ReadPrices,
		ReadArgs:  ReadArgs,
		Fetch:     s.fetch,
		FetchArgs: []querysql.Arg{querysql.ArgClobTokenID},
		Writes: []backfill.Step[[]PricePoint]{
			backfill.Into(TablePrices, func(p []PricePoint) []PricePoint { return p }, s.store.InsertPrices),
		},
	}
	args := querysql.Args{
		querysql.ArgClobTokenID: q.ClobTokenID,
		querysql.ArgDate:        q.Date,
	}
	return backfill.Run(ctx, s.orch, plan, args, q.Force)
}
