package birthday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wishsender/internal/model"
)

func TestDayWindow(t *testing.T) {
	ledger := NewSendLedger(newFakeStore(), time.UTC, true)

	ref := time.Date(2024, 6, 1, 15, 42, 7, 0, time.UTC)
	from, to := ledger.DayWindow(ref)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), to)
}

func TestDayWindowUsesConfiguredZone(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	ledger := NewSendLedger(newFakeStore(), loc, true)

	// 02:00 UTC on June 2nd is still June 1st in New York.
	ref := time.Date(2024, 6, 2, 2, 0, 0, 0, time.UTC)
	from, _ := ledger.DayWindow(ref)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, loc), from)
}

func TestAlreadySentFiltersToDay(t *testing.T) {
	store := newFakeStore()
	ref := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Yesterday's send must not count toward today.
	require.NoError(t, store.AppendLog(context.Background(), &model.SendLogEntry{
		ContactID: 1,
		Status:    model.StatusSent,
		SentAt:    time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC),
	}))
	require.NoError(t, store.AppendLog(context.Background(), &model.SendLogEntry{
		ContactID: 2,
		Status:    model.StatusSent,
		SentAt:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}))

	ledger := NewSendLedger(store, time.UTC, true)
	sent, err := ledger.AlreadySent(context.Background(), ref)
	require.NoError(t, err)

	assert.NotContains(t, sent, int64(1))
	assert.Contains(t, sent, int64(2))
}

func TestAlreadySentRetryPolicy(t *testing.T) {
	ref := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	failedEntry := &model.SendLogEntry{
		ContactID:    7,
		Status:       model.StatusFailed,
		SentAt:       time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		ErrorMessage: "smtp timeout",
	}

	t.Run("retry_failed on: failed attempt does not suppress", func(t *testing.T) {
		store := newFakeStore()
		require.NoError(t, store.AppendLog(context.Background(), failedEntry))

		ledger := NewSendLedger(store, time.UTC, true)
		sent, err := ledger.AlreadySent(context.Background(), ref)
		require.NoError(t, err)
		assert.NotContains(t, sent, int64(7))
	})

	t.Run("retry_failed off: one attempt per day", func(t *testing.T) {
		store := newFakeStore()
		require.NoError(t, store.AppendLog(context.Background(), failedEntry))

		ledger := NewSendLedger(store, time.UTC, false)
		sent, err := ledger.AlreadySent(context.Background(), ref)
		require.NoError(t, err)
		assert.Contains(t, sent, int64(7))
	})
}

func TestAlreadySentLedgerUnavailable(t *testing.T) {
	store := newFakeStore()
	store.queryErr = errors.New("connection refused")

	ledger := NewSendLedger(store, time.UTC, true)
	_, err := ledger.AlreadySent(context.Background(), time.Now())
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}

func TestHasSentToday(t *testing.T) {
	store := newFakeStore()
	ref := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendLog(context.Background(), &model.SendLogEntry{
		ContactID: 3,
		Status:    model.StatusSent,
		SentAt:    ref,
	}))

	ledger := NewSendLedger(store, time.UTC, true)

	got, err := ledger.HasSentToday(context.Background(), 3, ref)
	require.NoError(t, err)
	assert.True(t, got)

	got, err = ledger.HasSentToday(context.Background(), 4, ref)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestRecordWrapsStoreFailure(t *testing.T) {
	store := newFakeStore()
	store.appendErr = errors.New("disk full")

	ledger := NewSendLedger(store, time.UTC, true)
	err := ledger.Record(context.Background(), &model.SendLogEntry{ContactID: 1})
	assert.ErrorIs(t, err, ErrLedgerUnavailable)
}

func TestRecordPassesThroughDuplicate(t *testing.T) {
	store := newFakeStore()
	ledger := NewSendLedger(store, time.UTC, true)
	sentAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	first := &model.SendLogEntry{ContactID: 5, Status: model.StatusSent, SentAt: sentAt}
	require.NoError(t, ledger.Record(context.Background(), first))

	second := &model.SendLogEntry{ContactID: 5, Status: model.StatusSent, SentAt: sentAt.Add(time.Hour)}
	err := ledger.Record(context.Background(), second)
	assert.ErrorIs(t, err, ErrDuplicateSend)
	assert.NotErrorIs(t, err, ErrLedgerUnavailable)
}
