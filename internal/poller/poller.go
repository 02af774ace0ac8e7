// Package poller runs the fetch → validate → translate → notify cycle.
//
// The loop is strictly sequential. Its only state is the time cursor and
// the last error report, both owned by Loop.
package poller

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"hwbot/internal/homework"
	"hwbot/internal/schedule"
	logx "hwbot/pkg/logx"
)

// Fetcher returns the raw API document for statuses changed since fromDate.
type Fetcher interface {
	Fetch(ctx context.Context, fromDate int64) (any, error)
}

// Deliverer sends a message to the chat. It must absorb its own failures.
type Deliverer interface {
	Deliver(ctx context.Context, text string)
}

// ErrorMessagePrefix starts every error notification.
const ErrorMessagePrefix = "Сбой в работе программы: "

type Loop struct {
	fetch    Fetcher
	notify   Deliverer
	schedule schedule.Schedule
	log      logx.Logger

	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
	heartbeat func()

	cursor  int64
	lastErr homework.Report
}

type Option func(*Loop)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Loop) { l.now = now }
}

// WithSleep replaces the context-aware timer used between cycles.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(l *Loop) { l.sleep = sleep }
}

// WithHeartbeat registers a callback run once after every cycle.
func WithHeartbeat(fn func()) Option {
	return func(l *Loop) { l.heartbeat = fn }
}

func New(fetch Fetcher, notify Deliverer, sched schedule.Schedule, log logx.Logger, opts ...Option) *Loop {
	if log.IsZero() {
		log = logx.Nop()
	}
	l := &Loop{
		fetch:    fetch,
		notify:   notify,
		schedule: sched,
		log:      log,
		now:      time.Now,
		sleep:    sleepCtx,
	}
	for _, o := range opts {
		o(l)
	}
	if l.schedule == nil {
		l.schedule = schedule.Fixed(600 * time.Second)
	}
	l.cursor = l.now().Unix()
	return l
}

// Cursor is the from_date the next fetch will use.
func (l *Loop) Cursor() int64 { return l.cursor }

// LastError is the report of the most recent failed cycle. It is not
// cleared by successful cycles.
func (l *Loop) LastError() homework.Report { return l.lastErr }

// Run loops until ctx is canceled. Cycle errors never stop it; they are
// reported (once per distinct report) and the loop sleeps and retries.
func (l *Loop) Run(ctx context.Context) error {
	l.log.Info("poll loop started", logx.Int64("from_date", l.cursor))
	for {
		_ = l.RunOnce(ctx)
		if l.heartbeat != nil {
			l.heartbeat()
		}
		if ctx.Err() != nil {
			return fmt.Errorf("poll loop stopped: %w", ctx.Err())
		}

		now := l.now()
		wait := schedule.Delay(l.schedule, now)
		l.log.Debug("sleeping", logx.Duration("wait", wait))
		if err := l.sleep(ctx, wait); err != nil {
			return fmt.Errorf("poll loop stopped: %w", err)
		}
	}
}

// RunOnce executes a single cycle without the trailing sleep. The returned
// error has already been handled (logged and, unless duplicate, notified);
// it is returned for callers that want to inspect the outcome.
func (l *Loop) RunOnce(ctx context.Context) error {
	err := l.cycle(ctx)
	if err == nil {
		l.cursor = l.now().Unix()
		return nil
	}
	if ctx.Err() != nil {
		// Shutting down; an aborted request is not a failure to report.
		return err
	}
	l.handleError(ctx, err)
	return err
}

func (l *Loop) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("cycle panicked", logx.Any("panic", r), logx.String("stack", string(debug.Stack())))
			err = homework.Errorf(homework.KindPanic, "паника в цикле опроса: %v", r)
		}
	}()

	l.log.Debug("fetching statuses", logx.Int64("from_date", l.cursor))
	raw, err := l.fetch.Fetch(ctx, l.cursor)
	if err != nil {
		return err
	}

	items, err := homework.CheckResponse(raw)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		l.log.Debug("no new homework statuses")
		return nil
	}

	// A bad item aborts the rest of the batch; notifications already sent
	// for earlier items stay sent.
	for _, item := range items {
		hw, msg, err := homework.Translate(item)
		if err != nil {
			return err
		}
		l.notify.Deliver(ctx, msg)
		l.log.Info("homework status notified",
			logx.String("homework", hw.Name),
			logx.String("status", string(hw.Status)),
		)
	}
	return nil
}

func (l *Loop) handleError(ctx context.Context, err error) {
	report := homework.ReportOf(err)
	fields := []logx.Field{logx.String("kind", string(report.Kind)), logx.Err(err)}
	var he *homework.Error
	if errors.As(err, &he) && he.StatusCode != 0 {
		fields = append(fields, logx.Int("status_code", he.StatusCode))
	}
	l.log.Error("poll cycle failed", fields...)

	if report == l.lastErr {
		l.log.Debug("same error as previous cycle; notification suppressed", logx.String("kind", string(report.Kind)))
		return
	}
	l.lastErr = report
	l.notify.Deliver(ctx, ErrorMessagePrefix+report.Detail)
	l.log.Info("error notified", logx.String("kind", string(report.Kind)))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
