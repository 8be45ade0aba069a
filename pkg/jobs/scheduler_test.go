package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchedulerRegisterRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Logger: zap.NewNop()})
	defer s.Stop()

	err := s.Register("scan", "every now and then", func(context.Context) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan")
}

func TestSchedulerRegisterRejectsDuplicates(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	defer s.Stop()

	noop := func(context.Context) error { return nil }
	require.NoError(t, s.Register("scan", "@every 1h", noop))
	require.Error(t, s.Register("scan", "@every 1h", noop))
}

func TestSchedulerRunNow(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	defer s.Stop()

	calls := 0
	boom := errors.New("boom")
	require.NoError(t, s.Register("scan", "*/15 * * * *", func(context.Context) error {
		calls++
		if calls > 1 {
			return boom
		}
		return nil
	}))

	require.NoError(t, s.RunNow(context.Background(), "scan"))
	require.ErrorIs(t, s.RunNow(context.Background(), "scan"), boom)
	assert.Equal(t, 2, calls)
}

func TestSchedulerRunNowUnknownJob(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	defer s.Stop()

	require.Error(t, s.RunNow(context.Background(), "missing"))
}

func TestSchedulerStartStopIdempotent(t *testing.T) {
	s := NewScheduler(SchedulerConfig{})
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}
