package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wishsender/internal/model"
)

// countingRunner tracks how many runs execute at once.
type countingRunner struct {
	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	delay       time.Duration
}

func (r *countingRunner) Run(context.Context, time.Time) (model.RunSummary, error) {
	cur := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)

	for {
		max := r.maxInFlight.Load()
		if cur <= max || r.maxInFlight.CompareAndSwap(max, cur) {
			break
		}
	}

	time.Sleep(r.delay)
	r.calls.Add(1)
	return model.RunSummary{SentCount: 1}, nil
}

type denyingGuard struct{}

func (denyingGuard) Acquire(context.Context) bool { return false }
func (denyingGuard) Release(context.Context)      {}

func TestTriggerNowRunsOnce(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, nil, time.UTC, zap.NewNop())

	summary, err := s.TriggerNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.SentCount)
	assert.Equal(t, int32(1), runner.calls.Load())
}

func TestRunsAreSerialized(t *testing.T) {
	runner := &countingRunner{delay: 20 * time.Millisecond}
	s := New(runner, nil, time.UTC, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.TriggerNow(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), runner.calls.Load(), "every trigger runs, in turn")
	assert.Equal(t, int32(1), runner.maxInFlight.Load(), "never more than one run in flight")
}

func TestGuardDeniesRun(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, denyingGuard{}, time.UTC, zap.NewNop())

	_, err := s.TriggerNow(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(0), runner.calls.Load())
}

func TestStartRejectsBadRunAt(t *testing.T) {
	s := New(&countingRunner{}, nil, time.UTC, zap.NewNop())
	defer s.Stop()

	assert.Error(t, s.Start("noon"))
	assert.Error(t, s.Start("25:00"))
	assert.Error(t, s.Start("08:61"))
}

func TestStartAndStop(t *testing.T) {
	s := New(&countingRunner{}, nil, time.UTC, zap.NewNop())
	require.NoError(t, s.Start("08:00"))
	s.Stop()
}

func TestCronSpec(t *testing.T) {
	tests := []struct {
		runAt   string
		want    string
		wantErr bool
	}{
		{runAt: "08:00", want: "0 8 * * *"},
		{runAt: "00:00", want: "0 0 * * *"},
		{runAt: "23:59", want: "59 23 * * *"},
		{runAt: "8:5", want: "5 8 * * *"},
		{runAt: "24:00", wantErr: true},
		{runAt: "12:60", wantErr: true},
		{runAt: "noon", wantErr: true},
		{runAt: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.runAt, func(t *testing.T) {
			got, err := cronSpec(tt.runAt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
