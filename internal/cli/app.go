package cli

import (
	"errors"
	"net/http"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roach88/polycache/internal/client/clob"
	"github.com/roach88/polycache/internal/client/gamma"
	"github.com/roach88/polycache/internal/config"
	"github.com/roach88/polycache/internal/events"
	"github.com/roach88/polycache/internal/logger"
	"github.com/roach88/polycache/internal/normalize"
	"github.com/roach88/polycache/internal/prices"
	"github.com/roach88/polycache/internal/store"
	"github.com/roach88/polycache/internal/tags"
)

// app is everything a command needs, wired from config.
type app struct {
	cfg     config.Config
	log     *zap.Logger
	db      *store.Store
	clock   normalize.Clock
	catalog *events.GammaFetcher
	events  *events.Service
	prices  *prices.Service
	tags    *tags.Service
}

// openApp loads config, opens the cache file and builds the services.
// Failures are reported through f. Callers must Close the result.
func openApp(opts *RootOptions, f *OutputFormatter) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, f.Fail(ExitCommandError, CodeInput, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.DB.Path = opts.Database
	}
	if opts.Verbose {
		cfg.Log.Level = zapcore.DebugLevel.String()
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, f.Fail(ExitCommandError, CodeInput, "failed to build logger", err)
	}

	schemas := append(events.Schemas(), prices.Schema, tags.Schema)
	db, err := store.Open(cfg.DB.Path,
		store.WithBusyTimeout(cfg.DB.BusyTimeout),
		store.WithSchemas(schemas...))
	if err != nil {
		return nil, failStore(f, "failed to open database", err)
	}

	clock := normalize.SystemClock{}
	gammaClient := gamma.NewClient(&http.Client{Timeout: cfg.Gamma.Timeout}, cfg.Gamma.BaseURL)
	clobClient := clob.NewClient(&http.Client{Timeout: cfg.ClobREST.Timeout}, cfg.ClobREST.BaseURL)

	catalog := &events.GammaFetcher{
		Client:   gammaClient,
		Clock:    clock,
		Logger:   log.Named("gamma"),
		Limit:    cfg.Catalog.Limit,
		SoonDays: cfg.Catalog.SoonDays,
	}
	priceFetcher := &prices.ClobFetcher{
		Client:   clobClient,
		Interval: cfg.ClobREST.Interval,
		Fidelity: cfg.ClobREST.Fidelity,
	}
	tagFetcher := &tags.GammaFetcher{Client: gammaClient}

	return &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		clock:   clock,
		catalog: catalog,
		events: events.NewService(events.NewStore(db, log), catalog, events.ServiceConfig{
			Mode:   events.Mode(cfg.Catalog.Mode),
			Clock:  clock,
			Logger: log,
		}),
		prices: prices.NewService(prices.NewStore(db, log), priceFetcher.Fetch, log),
		tags:   tags.NewService(tags.NewStore(db), tagFetcher.Fetch, log),
	}, nil
}

// failStore reports a failed cache operation. Rejected window flags are
// input errors; everything else touched the cache file.
func failStore(f *OutputFormatter, message string, err error) error {
	if errors.Is(err, events.ErrInvalidWindow) {
		return f.Fail(ExitCommandError, CodeInput, message, err)
	}
	if store.IsLockContention(err) {
		message += ": cache file is locked by another writer"
	}
	return f.Fail(ExitCommandError, CodeStore, message, err)
}

func (a *app) Close() error {
	_ = a.log.Sync()
	return a.db.Close()
}
