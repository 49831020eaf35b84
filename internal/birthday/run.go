package birthday

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"wishsender/internal/model"
	"wishsender/pkg/metrics"
)

// ContactDirectory is the read-only source of contacts.
type ContactDirectory interface {
	ListContacts(ctx context.Context) ([]model.Contact, error)
}

// CheckRun executes one full pass: fetch every contact, match birthdays
// against the reference date, drop contacts the ledger already covers, and
// dispatch wishes for the rest.
type CheckRun struct {
	directory   ContactDirectory
	ledger      *SendLedger
	dispatcher  *Dispatcher
	concurrency int
	logger      *zap.Logger
}

func NewCheckRun(
	directory ContactDirectory,
	ledger *SendLedger,
	dispatcher *Dispatcher,
	concurrency int,
	logger *zap.Logger,
) *CheckRun {
	if concurrency < 1 {
		concurrency = 1
	}
	return &CheckRun{
		directory:   directory,
		ledger:      ledger,
		dispatcher:  dispatcher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run performs one check for the given reference date and returns the tally.
// Re-running with the same date is idempotent for contacts whose send
// succeeded; failed attempts are retried or not per the ledger policy.
func (r *CheckRun) Run(ctx context.Context, ref time.Time) (model.RunSummary, error) {
	start := time.Now()
	summary := model.RunSummary{}

	contacts, err := r.directory.ListContacts(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	summary.CheckedCount = len(contacts)

	matched := make([]model.Contact, 0)
	for _, c := range contacts {
		ok, err := MatchesDay(ref, c.DOB)
		if err != nil {
			var malformed *MalformedDateError
			if errors.As(err, &malformed) {
				summary.MalformedCount++
				r.logger.Warn("Skipping contact with malformed date of birth",
					zap.Int64("contact_id", c.ID),
					zap.String("dob", c.DOB),
				)
				continue
			}
			return summary, err
		}
		if ok {
			matched = append(matched, c)
		}
	}
	summary.MatchedCount = len(matched)

	r.logger.Info("Birthday matching completed",
		zap.String("date", ref.Format("2006-01-02")),
		zap.Int("checked", summary.CheckedCount),
		zap.Int("matched", summary.MatchedCount),
		zap.Int("malformed", summary.MalformedCount),
	)

	if len(matched) == 0 {
		summary.Duration = time.Since(start)
		summary.DurationMilliseconds = summary.Duration.Milliseconds()
		return summary, nil
	}

	// One ledger read covers the whole run.
	alreadySent, err := r.ledger.AlreadySent(ctx, ref)
	if err != nil {
		return summary, err
	}

	pending := make([]model.Contact, 0, len(matched))
	for _, c := range matched {
		if _, ok := alreadySent[c.ID]; ok {
			summary.SkippedAlreadySent++
			metrics.RecordWish("skipped_already_sent")
			continue
		}
		pending = append(pending, c)
	}

	sent, failed, runErr := r.dispatchAll(ctx, pending)
	summary.SentCount = sent
	summary.FailedCount = failed

	summary.Duration = time.Since(start)
	summary.DurationMilliseconds = summary.Duration.Milliseconds()

	r.logger.Info("Birthday check run completed",
		zap.Int("sent", summary.SentCount),
		zap.Int("failed", summary.FailedCount),
		zap.Int("skipped_already_sent", summary.SkippedAlreadySent),
		zap.Duration("duration", summary.Duration),
	)

	return summary, runErr
}

// dispatchAll fans pending contacts out over a bounded worker pool. Each
// contact's outcome is independent; a delivery failure never stops the run,
// but a ledger failure cancels the remaining work.
func (r *CheckRun) dispatchAll(ctx context.Context, pending []model.Contact) (sent, failed int, err error) {
	if len(pending) == 0 {
		return 0, 0, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan model.Contact)
	var wg sync.WaitGroup
	var mu sync.Mutex

	workers := r.concurrency
	if workers > len(pending) {
		workers = len(pending)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for contact := range jobs {
				entry, dispatchErr := r.dispatcher.Dispatch(runCtx, contact)

				mu.Lock()
				switch entry.Status {
				case model.StatusSent:
					sent++
					metrics.RecordWish("sent")
				case model.StatusFailed:
					failed++
					metrics.RecordWish("failed")
				}
				if dispatchErr != nil && err == nil {
					err = dispatchErr
				}
				mu.Unlock()

				if dispatchErr != nil {
					// The ledger is down; sending more without being able to
					// record would invite duplicates tomorrow.
					cancel()
					return
				}
			}
		}()
	}

	for _, contact := range pending {
		select {
		case jobs <- contact:
		case <-runCtx.Done():
		}
		if runCtx.Err() != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()

	return sent, failed, err
}
