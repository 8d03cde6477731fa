// Package job runs periodic background work outside the request path.
package job

import (
	"context"
	"sync"
	"time"

	"github.com/Queun/ai-teach-platform-sub000/internal/infra/logger"
)

// Job is a periodic background task.
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler runs registered jobs until their context is cancelled.
type Scheduler struct {
	jobs []Job
	wg   sync.WaitGroup
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Add(j Job) {
	s.jobs = append(s.jobs, j)
}

// Start launches every job in its own goroutine. A job runs once right
// away and then on each tick of its interval.
func (s *Scheduler) Start(ctx context.Context) {
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.run(ctx, j)
	}
}

// Wait blocks until all jobs have returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, j Job) {
	defer s.wg.Done()

	s.execute(ctx, j)

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Logger.InfoContext(ctx, "job stopping", "job", j.Name)
			return
		case <-ticker.C:
			s.execute(ctx, j)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, j Job) {
	if ctx.Err() != nil {
		return
	}

	jobCtx := ctx
	if j.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := j.Fn(jobCtx); err != nil {
		logger.Logger.WarnContext(ctx, "job failed", "job", j.Name, "error", err)
		return
	}
	logger.Logger.DebugContext(ctx, "job finished", "job", j.Name, "duration_ms", time.Since(start).Milliseconds())
}
