package backfill

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/querysql"
)

// ReadFunc reads rows matching args from the local store.
type ReadFunc[T any] func(ctx context.Context, args querysql.Args) ([]T, error)

// FetchFunc fetches a payload for args from the remote source.
type FetchFunc[R any] func(ctx context.Context, args querysql.Args) (R, error)

// Step is one entry of a write plan: it persists one component of a fetch
// payload into one table.
type Step[R any] struct {
	Table string
	Apply func(ctx context.Context, payload R) (int64, error)
}

// Into pairs a selector that picks rows out of a payload with the writer for
// the table those rows belong to.
func Into[R, E any](table string, selector func(R) []E, writer func(context.Context, []E) (int64, error)) Step[R] {
	return Step[R]{
		Table: table,
		Apply: func(ctx context.Context, payload R) (int64, error) {
			return writer(ctx, selector(payload))
		},
	}
}

// Plan describes one read-through request.
//
// ReadArgs and FetchArgs list the filter names each side accepts; Run
// narrows the caller's args to them before calling. Writes run in order
// after every successful fetch.
type Plan[T, R any] struct {
	Name      string
	Read      ReadFunc[T]
	ReadArgs  []querysql.Arg
	Fetch     FetchFunc[R]
	FetchArgs []querysql.Arg
	Writes    []Step[R]
}

// Stats reports what a Run did.
type Stats struct {
	CacheHit bool
	Fetched  bool
	Inserted map[string]int64
}

// Fields renders s as log fields, one inserted_<table> count per write.
func (s Stats) Fields() []zap.Field {
	fields := []zap.Field{zap.Bool("cache_hit", s.CacheHit), zap.Bool("fetched", s.Fetched)}
	tables := make([]string, 0, len(s.Inserted))
	for table := range s.Inserted {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	for _, table := range tables {
		fields = append(fields, zap.Int64("inserted_"+table, s.Inserted[table]))
	}
	return fields
}
