package backfill

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/polycache/internal/querysql"
)

// Orchestrator runs read-through plans. The zero value logs nothing.
type Orchestrator struct {
	Logger *zap.Logger
}

// New returns an Orchestrator that logs to logger.
func New(logger *zap.Logger) *Orchestrator {
	return &Orchestrator{Logger: logger}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o == nil || o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Run answers plan for args, backfilling from the remote source when needed.
// What the request did is logged at debug level.
func Run[T, R any](ctx context.Context, o *Orchestrator, plan Plan[T, R], args querysql.Args, force bool) ([]T, error) {
	rows, stats, err := RunWithStats(ctx, o, plan, args, force)
	if err != nil {
		return nil, err
	}
	fields := append([]zap.Field{zap.String("plan", plan.Name), zap.Int("rows", len(rows))}, stats.Fields()...)
	o.logger().Debug("request served", fields...)
	return rows, nil
}

// RunWithStats is Run plus a report of whether the cache was hit and how
// many rows each write inserted.
//
// With force set the fetch always runs, its payload is written, and the
// local store is read back. Otherwise the local store is read first and a
// non-empty result is returned without touching the network. On an empty
// result the fetch runs; if it yields nothing the empty, typed result is
// returned and no writes happen.
//
// Fetch errors never propagate. Read and write errors do.
func RunWithStats[T, R any](ctx context.Context, o *Orchestrator, plan Plan[T, R], args querysql.Args, force bool) ([]T, Stats, error) {
	log := o.logger().With(zap.String("plan", plan.Name))
	readArgs := args.Only(plan.ReadArgs...)
	fetchArgs := args.Only(plan.FetchArgs...)
	stats := Stats{Inserted: map[string]int64{}}

	if !force {
		local, err := plan.Read(ctx, readArgs)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: read: %w", plan.Name, err)
		}
		if len(local) > 0 {
			log.Debug("cache hit", zap.Int("rows", len(local)))
			stats.CacheHit = true
			return local, stats, nil
		}
		log.Info("cache miss, fetching from remote", zap.Any("args", fetchArgs))
	} else {
		log.Info("force update, fetching from remote", zap.Any("args", fetchArgs))
	}

	payload, err := plan.Fetch(ctx, fetchArgs)
	if err != nil {
		if IsNoData(err) {
			log.Info("remote returned no data", zap.Error(err))
		} else {
			log.Warn("remote fetch failed", zap.Error(err))
		}
		if !force {
			return []T{}, stats, nil
		}
		// A forced refresh that could not reach the remote still answers
		// from whatever the store already has.
		return readBack(ctx, plan, readArgs, stats)
	}
	stats.Fetched = true

	for _, step := range plan.Writes {
		n, err := step.Apply(ctx, payload)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: write %s: %w", plan.Name, step.Table, err)
		}
		stats.Inserted[step.Table] += n
		log.Debug("persisted fetch component", zap.String("table", step.Table), zap.Int64("inserted", n))
	}

	return readBack(ctx, plan, readArgs, stats)
}

func readBack[T, R any](ctx context.Context, plan Plan[T, R], readArgs querysql.Args, stats Stats) ([]T, Stats, error) {
	rows, err := plan.Read(ctx, readArgs)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: re-read: %w", plan.Name, err)
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, stats, nil
}
