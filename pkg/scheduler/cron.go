package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Cron struct {
	c      *cron.Cron
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCron builds a cron runner whose jobs recover from panics and never
// overlap with themselves.
func NewCron(loc *time.Location, logger *zap.Logger) *Cron {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := zapCronLogger{l: logger.Named("cron")}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())
	return &Cron{c: c, loc: loc, ctx: ctx, cancel: cancel}
}

func (cr *Cron) Start() { cr.c.Start() }

// Stop cancels the jobs' context and waits for running jobs to return.
func (cr *Cron) Stop() {
	cr.cancel()
	<-cr.c.Stop().Done()
}

func (cr *Cron) Add(expr string, job Job) (cron.EntryID, error) {
	return cr.c.AddFunc(expr, func() { job.Run(cr.ctx) })
}

func (cr *Cron) Entries() []cron.Entry { return cr.c.Entries() }

// zapCronLogger adapts zap to cron.Logger.
type zapCronLogger struct{ l *zap.Logger }

func (z zapCronLogger) Info(msg string, kv ...interface{}) {
	z.l.Sugar().Debugw(msg, kv...)
}

func (z zapCronLogger) Error(err error, msg string, kv ...interface{}) {
	z.l.Sugar().Errorw(msg, append(kv, "error", err)...)
}
