package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduler_RunsImmediatelyAndOnInterval(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.Add(Job{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Timeout:  time.Second,
		Fn: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestScheduler_FailingJobKeepsRunning(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler()
	s.Add(Job{
		Name:     "fail",
		Interval: 10 * time.Millisecond,
		Fn: func(context.Context) error {
			runs.Add(1)
			return errors.New("upstream down")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	s.Wait()
}

func TestScheduler_TimeoutBoundsJobContext(t *testing.T) {
	done := make(chan error, 1)
	s := NewScheduler()
	s.Add(Job{
		Name:     "slow",
		Interval: time.Hour,
		Timeout:  20 * time.Millisecond,
		Fn: func(ctx context.Context) error {
			<-ctx.Done()
			done <- ctx.Err()
			return ctx.Err()
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(time.Second):
		t.Fatal("job context was not cancelled by its timeout")
	}
	cancel()
	s.Wait()
}
