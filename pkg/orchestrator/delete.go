package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/metrics"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
	"github.com/cuemby/vmctrl/pkg/waiter"
)

// Delete runs the 4.7.3 deletion orchestration to completion,
// independent of the HTTP request that spawned it.
func Delete(ctx context.Context, a app.App, userID, serverID string) {
	timer := metrics.NewTimer()
	err := runDelete(ctx, a, userID, serverID)
	metrics.OrchestrationDuration.WithLabelValues("delete").Observe(timer.Duration().Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OrchestrationsTotal.WithLabelValues("delete", outcome).Inc()
}

func runDelete(ctx context.Context, a app.App, userID, serverID string) error {
	prior, err := SetTransientStatus(ctx, a.Store, userID, serverID, types.ServerStatusDeleting)
	if err != nil {
		return err
	}

	tx, err := a.Store.Begin(ctx)
	if err != nil {
		RevertTransientStatus(ctx, a.Store, userID, serverID, prior)
		return fmt.Errorf("begin delete transaction: %w", err)
	}

	var result error
	defer func() {
		Finalize(ctx, tx, result)
		if result != nil {
			RevertTransientStatus(ctx, a.Store, userID, serverID, prior)
		}
	}()

	vm, err := store.GetVMRefForServer(ctx, tx, userID, serverID)
	if err != nil {
		result = err
		return result
	}

	upid, err := a.Cluster.Delete(ctx, vm)
	if err != nil {
		result = err
		return result
	}
	if err := waiter.Wait(ctx, a.Cluster, apperr.ClusterOpDelete, vm.Node, upid, waiter.Options{}); err != nil {
		result = err
		return result
	}

	if err := store.DeleteServer(ctx, tx, serverID); err != nil {
		result = err
		return result
	}

	return nil
}
