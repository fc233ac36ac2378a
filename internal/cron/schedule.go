package cron

import (
	"context"
	"time"
)

// Every wraps a job so it runs at most once per interval. The service ticks
// faster than most jobs need to run; the wrapper skips cycles until the
// interval has elapsed. Cadence is tracked in process memory, so a restarted
// worker runs the job on its first cycle.
func Every(interval time.Duration, job Job) Job {
	if interval <= 0 || job == nil {
		return job
	}
	return &throttledJob{interval: interval, job: job, now: time.Now}
}

type throttledJob struct {
	interval time.Duration
	job      Job
	now      func() time.Time
	lastRun  time.Time
}

func (t *throttledJob) Name() string { return t.job.Name() }

func (t *throttledJob) Run(ctx context.Context) error {
	if !t.lastRun.IsZero() && t.now().Sub(t.lastRun) < t.interval {
		return nil
	}
	t.lastRun = t.now()
	return t.job.Run(ctx)
}
