package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"wishsender/internal/model"
	"wishsender/pkg/metrics"
)

// Runner executes one birthday check pass.
type Runner interface {
	Run(ctx context.Context, ref time.Time) (model.RunSummary, error)
}

// Guard optionally serializes runs across instances. A nil guard means
// single-instance deployment.
type Guard interface {
	Acquire(ctx context.Context) bool
	Release(ctx context.Context)
}

// Scheduler triggers the daily check at a configured time of day and exposes
// a manual trigger for operations. Scheduled and manual runs never overlap:
// the mutex makes a manual trigger wait for any in-flight run. A failed run
// is logged and retried at the next cadence; it never brings the process down.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	guard  Guard
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger

	mu sync.Mutex // single-flight: one run at a time
}

func New(runner Runner, guard Guard, loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(loc)),
		runner: runner,
		guard:  guard,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Start registers the daily schedule. runAt is "HH:MM" in the scheduler's
// location.
func (s *Scheduler) Start(runAt string) error {
	spec, err := cronSpec(runAt)
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc(spec, func() {
		summary, runErr := s.execute(context.Background(), "scheduled")
		if runErr != nil {
			s.logger.Error("Scheduled birthday check failed", zap.Error(runErr))
			return
		}
		s.logger.Info("Scheduled birthday check finished",
			zap.Int("sent", summary.SentCount),
			zap.Int("failed", summary.FailedCount),
		)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule daily check: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("run_at", runAt),
		zap.String("timezone", s.loc.String()),
	)
	return nil
}

// Stop cancels the recurring trigger. An in-flight run finishes on its own.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

// TriggerNow runs a check immediately, waiting for any in-flight run first.
func (s *Scheduler) TriggerNow(ctx context.Context) (model.RunSummary, error) {
	return s.execute(ctx, "manual")
}

func (s *Scheduler) execute(ctx context.Context, trigger string) (model.RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()

	if s.guard != nil {
		if !s.guard.Acquire(ctx) {
			metrics.RecordRun(trigger, "skipped_lock", time.Since(start))
			return model.RunSummary{}, fmt.Errorf("another instance is running the check")
		}
		defer s.guard.Release(ctx)
	}

	ref := s.now().In(s.loc)
	s.logger.Info("Starting birthday check run",
		zap.String("trigger", trigger),
		zap.String("date", ref.Format("2006-01-02")),
	)

	summary, err := s.runner.Run(ctx, ref)
	if err != nil {
		metrics.RecordRun(trigger, "error", time.Since(start))
		return summary, err
	}

	metrics.RecordRun(trigger, "ok", time.Since(start))
	return summary, nil
}

// cronSpec converts "HH:MM" to a daily cron expression.
func cronSpec(runAt string) (string, error) {
	parts := strings.SplitN(runAt, ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid run_at %q, expected HH:MM", runAt)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid run_at hour in %q", runAt)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid run_at minute in %q", runAt)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}
