// Package cronrunner runs housekeeping jobs on cron schedules.
//
// Specs take five fields, an optional leading seconds field, or a
// descriptor such as "@every 1h". A job that is still running when its next
// tick arrives is skipped, and a panicking job is logged and recovered, so a
// slow or broken pass never piles up writers on the cache file.
package cronrunner

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner schedules named jobs that all share one base context. Cancel the
// base context to tell running jobs to wind down, then call Stop.
type Runner struct {
	cron    *cron.Cron
	logger  *zap.Logger
	baseCtx context.Context
}

// New returns a stopped runner. A nil logger logs nothing and a nil
// baseCtx means context.Background.
func New(logger *zap.Logger, baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	adapter := cronLogger{logger.Sugar()}
	return &Runner{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(adapter),
			cron.WithChain(cron.Recover(adapter), cron.SkipIfStillRunning(adapter)),
		),
		logger:  logger,
		baseCtx: baseCtx,
	}
}

// Add schedules job under name. The returned error reports a bad spec.
func (r *Runner) Add(name, spec string, job func(context.Context)) (cron.EntryID, error) {
	log := r.logger.With(zap.String("job", name))
	return r.cron.AddFunc(spec, func() {
		start := time.Now()
		job(r.baseCtx)
		log.Debug("cron job finished", zap.Duration("took", time.Since(start)))
	})
}

// Len returns the number of scheduled jobs.
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

// Start begins firing jobs in the background. It does not block.
func (r *Runner) Start() {
	r.logger.Info("cron started", zap.Int("jobs", r.Len()))
	r.cron.Start()
}

// Stop halts the schedule and waits for running jobs to return.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("cron stopped")
}

// cronLogger routes the scheduler's own messages into zap. Its routine
// chatter goes to debug.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
