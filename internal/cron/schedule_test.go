package cron

import (
	"context"
	"testing"
	"time"
)

func TestEveryThrottlesRuns(t *testing.T) {
	inner := &testJob{name: "throttled"}
	wrapped := Every(time.Hour, inner)
	if wrapped.Name() != "throttled" {
		t.Fatalf("wrapper must keep the job name, got %q", wrapped.Name())
	}

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	wrapped.(*throttledJob).now = func() time.Time { return now }

	ctx := context.Background()
	if err := wrapped.Run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := wrapped.Run(ctx); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if inner.runs != 1 {
		t.Fatalf("expected 1 run inside the interval, got %d", inner.runs)
	}

	now = now.Add(61 * time.Minute)
	if err := wrapped.Run(ctx); err != nil {
		t.Fatalf("third run: %v", err)
	}
	if inner.runs != 2 {
		t.Fatalf("expected a second run after the interval, got %d", inner.runs)
	}
}
