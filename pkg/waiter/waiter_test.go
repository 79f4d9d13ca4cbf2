package waiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
)

func TestWaitReturnsNilOnCompleted(t *testing.T) {
	mock := &hypervisor.Mock{TaskResult: hypervisor.TaskResult{State: hypervisor.TaskCompleted}}
	err := Wait(context.Background(), mock, apperr.ClusterOpStart, "pve1", "UPID:...", Options{Interval: time.Millisecond})
	require.NoError(t, err)
}

func TestWaitReturnsClusterErrorOnFailed(t *testing.T) {
	mock := &hypervisor.Mock{TaskResult: hypervisor.TaskResult{State: hypervisor.TaskFailed, Reason: "disk full"}}
	err := Wait(context.Background(), mock, apperr.ClusterOpCreate, "pve1", "UPID:...", Options{Interval: time.Millisecond})
	require.Error(t, err)
	tagged, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindCluster, tagged.Kind)
	assert.Equal(t, "disk full", tagged.Body)
}

func TestWaitTimesOutWhilePending(t *testing.T) {
	mock := &hypervisor.Mock{TaskResult: hypervisor.TaskResult{State: hypervisor.TaskPending}}
	start := time.Now()
	err := Wait(context.Background(), mock, apperr.ClusterOpStop, "pve1", "UPID:...", Options{
		Interval: 5 * time.Millisecond,
		Deadline: 20 * time.Millisecond,
	})
	elapsed := time.Since(start)
	require.Error(t, err)
	tagged, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindTimeout, tagged.Kind)
	// Testable Property 7: bounded by deadline + interval.
	assert.LessOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestWaitPropagatesClientError(t *testing.T) {
	mock := &hypervisor.Mock{Err: assert.AnError}
	err := Wait(context.Background(), mock, apperr.ClusterOpReboot, "pve1", "UPID:...", Options{Interval: time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	mock := &hypervisor.Mock{TaskResult: hypervisor.TaskResult{State: hypervisor.TaskPending}}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	err := Wait(ctx, mock, apperr.ClusterOpShutdown, "pve1", "UPID:...", Options{
		Interval: time.Second,
		Deadline: time.Minute,
	})
	require.Error(t, err)
	tagged, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindTimeout, tagged.Kind)
}
