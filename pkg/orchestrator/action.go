package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/metrics"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
	"github.com/cuemby/vmctrl/pkg/waiter"
)

// transientAndFinal maps an action to its transient/final server
// statuses (spec §4.3's transition table).
func transientAndFinal(action types.Action) (transient, final types.ServerStatus) {
	switch action {
	case types.ActionStart:
		return types.ServerStatusStarting, types.ServerStatusRunning
	case types.ActionStop:
		return types.ServerStatusStopping, types.ServerStatusStopped
	case types.ActionShutdown:
		return types.ServerStatusShuttingDown, types.ServerStatusStopped
	case types.ActionReboot:
		return types.ServerStatusRebooting, types.ServerStatusRunning
	default:
		return types.ServerStatusFailed, types.ServerStatusFailed
	}
}

func clusterCall(action types.Action) (apperr.ClusterOp, func(ctx context.Context, cluster hypervisor.Client, vm hypervisor.VM) (hypervisor.UPID, error)) {
	switch action {
	case types.ActionStart:
		return apperr.ClusterOpStart, hypervisor.Client.Start
	case types.ActionStop:
		return apperr.ClusterOpStop, hypervisor.Client.Stop
	case types.ActionShutdown:
		return apperr.ClusterOpShutdown, hypervisor.Client.Shutdown
	case types.ActionReboot:
		return apperr.ClusterOpReboot, hypervisor.Client.Reboot
	}
	return "", nil
}

// Action runs the 4.7.2 start/stop/shutdown/reboot orchestration to
// completion, independent of the HTTP request that spawned it.
func Action(ctx context.Context, a app.App, userID, serverID string, action types.Action) {
	timer := metrics.NewTimer()
	err := runAction(ctx, a, userID, serverID, action)
	metrics.OrchestrationDuration.WithLabelValues(string(action)).Observe(timer.Duration().Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OrchestrationsTotal.WithLabelValues(string(action), outcome).Inc()
}

func runAction(ctx context.Context, a app.App, userID, serverID string, action types.Action) error {
	transient, final := transientAndFinal(action)
	op, call := clusterCall(action)

	prior, err := SetTransientStatus(ctx, a.Store, userID, serverID, transient)
	if err != nil {
		return err
	}

	tx, err := a.Store.Begin(ctx)
	if err != nil {
		RevertTransientStatus(ctx, a.Store, userID, serverID, prior)
		return fmt.Errorf("begin action transaction: %w", err)
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

	upid, err := call(ctx, a.Cluster, vm)
	if err != nil {
		result = err
		return result
	}
	if err := waiter.Wait(ctx, a.Cluster, op, vm.Node, upid, waiter.Options{}); err != nil {
		result = err
		return result
	}

	if err := store.UpdateServerStatus(ctx, tx, serverID, final); err != nil {
		result = err
		return result
	}

	return nil
}
