package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/desertthunder/tunelink/internal/shared"
)

// DefaultPresenceSchedule refreshes the status every ten minutes.
const DefaultPresenceSchedule = "*/10 * * * *"

// CountReader reads the search counter.
type CountReader interface {
	Count(ctx context.Context) (int64, error)
}

// StatusSetter updates the bot's "listening to" status.
type StatusSetter interface {
	SetListening(ctx context.Context, name string) error
}

// PresenceText is the status shown for a counter value.
func PresenceText(count int64) string {
	return fmt.Sprintf("%d links", count)
}

// PresenceRefresher keeps the bot status in sync with the search counter.
type PresenceRefresher struct {
	counter  CountReader
	status   StatusSetter
	schedule string
	logger   *log.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewPresenceRefresher creates a refresher running on a standard 5-field cron schedule.
func NewPresenceRefresher(counter CountReader, status StatusSetter, schedule string, logger *log.Logger) *PresenceRefresher {
	if schedule == "" {
		schedule = DefaultPresenceSchedule
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PresenceRefresher{counter: counter, status: status, schedule: schedule, logger: logger}
}

// Refresh reads the counter and updates the status once.
func (r *PresenceRefresher) Refresh(ctx context.Context) error {
	n, err := r.counter.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to read search count: %w", err)
	}
	if err := r.status.SetListening(ctx, PresenceText(n)); err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}
	return nil
}

// Start refreshes immediately and then on schedule until ctx is done or Stop is called.
//
// Refresh failures are logged and never stop the schedule. An invalid schedule is returned as an error.
func (r *PresenceRefresher) Start(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{r.logger}))
	if _, err := c.AddFunc(r.schedule, func() { r.refreshAndLog(ctx) }); err != nil {
		return fmt.Errorf("%w: invalid presence schedule %q: %v", shared.ErrInvalidConfig, r.schedule, err)
	}

	r.mu.Lock()
	r.cron = c
	r.mu.Unlock()

	r.refreshAndLog(ctx)
	c.Start()

	go func() {
		<-ctx.Done()
		r.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *PresenceRefresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// Sync refreshes once and logs a failure instead of returning it. Used as the gateway ready hook.
func (r *PresenceRefresher) Sync(ctx context.Context) {
	r.refreshAndLog(ctx)
}

func (r *PresenceRefresher) refreshAndLog(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("presence refresh failed", "error", err)
		return
	}
	r.logger.Debug("presence refreshed")
}

// cronLogger adapts [log.Logger] to [cron.Logger].
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
