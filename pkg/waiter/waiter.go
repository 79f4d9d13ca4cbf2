// Package waiter implements SPEC_FULL.md §4.2: polling a cluster task
// to a terminal state under a deadline.
//
// The waiter is a cooperative suspension point with no shared state; it
// never touches the persistent store (spec §4.2, §5).
package waiter

import (
	"context"
	"time"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/metrics"
)

// DefaultDeadline is the waiter's default total deadline (spec §4.2).
const DefaultDeadline = 30 * time.Second

// DefaultInterval is the poll interval used by the orchestrators (spec
// §4.7.1 step 8: "Δ=1s").
const DefaultInterval = 1 * time.Second

// Options configures one Wait call. A zero Deadline means
// DefaultDeadline.
type Options struct {
	Interval time.Duration
	Deadline time.Duration
}

// Wait polls client.TaskStatus(node, task) every opts.Interval until it
// observes Completed (returns nil), Failed (returns an error carrying
// the reason), or opts.Deadline elapses first (returns a Timeout error
// carrying elapsed seconds as a float) — spec §4.2, Testable Property 7.
func Wait(ctx context.Context, client hypervisor.Client, operation apperr.ClusterOp, node string, task hypervisor.UPID, opts Options) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.TaskWaitSeconds, string(operation))

	start := time.Now()
	for {
		result, err := client.TaskStatus(ctx, node, task)
		if err != nil {
			return err
		}

		switch result.State {
		case hypervisor.TaskCompleted:
			return nil
		case hypervisor.TaskFailed:
			return apperr.NewCluster(operation, 0, result.Reason)
		}

		elapsed := time.Since(start)
		if elapsed >= deadline {
			return apperr.NewTimeout(elapsed.Seconds())
		}

		select {
		case <-ctx.Done():
			return apperr.NewTimeout(time.Since(start).Seconds())
		case <-time.After(minDuration(interval, deadline-elapsed)):
		}
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
