package birthday

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wishsender/internal/model"
)

// LogStore is the durable, append-only record of dispatch attempts.
type LogStore interface {
	QueryLogs(ctx context.Context, from, to time.Time) ([]model.SendLogEntry, error)
	AppendLog(ctx context.Context, entry *model.SendLogEntry) error
}

// SendLedger answers "was this contact already notified today?" against the
// log store. "Today" is the half-open interval [startOfDay(ref), +24h) in one
// fixed location; per-contact time zones are out of scope.
type SendLedger struct {
	store LogStore
	loc   *time.Location

	// retryFailed controls whether a failed attempt counts toward dedup.
	// When true (the default policy) failed contacts are retried by later
	// runs the same day; only a 'sent' entry suppresses another send.
	retryFailed bool
}

func NewSendLedger(store LogStore, loc *time.Location, retryFailed bool) *SendLedger {
	return &SendLedger{
		store:       store,
		loc:         loc,
		retryFailed: retryFailed,
	}
}

// DayWindow returns the bounds of the calendar day containing ref in the
// ledger's location.
func (l *SendLedger) DayWindow(ref time.Time) (time.Time, time.Time) {
	local := ref.In(l.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, l.loc)
	return start, start.Add(24 * time.Hour)
}

// AlreadySent loads the day's entries in a single query and returns the set of
// contact ids that count as already notified. One store round-trip per run,
// regardless of contact count.
func (l *SendLedger) AlreadySent(ctx context.Context, ref time.Time) (map[int64]struct{}, error) {
	from, to := l.DayWindow(ref)
	entries, err := l.store.QueryLogs(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	sent := make(map[int64]struct{}, len(entries))
	for _, e := range entries {
		if e.Status == model.StatusSent || !l.retryFailed {
			sent[e.ContactID] = struct{}{}
		}
	}
	return sent, nil
}

// HasSentToday answers the dedup question for a single contact. The check run
// prefers AlreadySent; this exists for callers that only care about one id.
func (l *SendLedger) HasSentToday(ctx context.Context, contactID int64, ref time.Time) (bool, error) {
	sent, err := l.AlreadySent(ctx, ref)
	if err != nil {
		return false, err
	}
	_, ok := sent[contactID]
	return ok, nil
}

// Record appends one attempt to the store. ErrDuplicateSend passes through
// untouched so the dispatcher can downgrade it; anything else is a ledger
// availability failure.
func (l *SendLedger) Record(ctx context.Context, entry *model.SendLogEntry) error {
	err := l.store.AppendLog(ctx, entry)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicateSend) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
}
