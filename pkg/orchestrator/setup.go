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

// SetupParams is the new-server request payload threaded through the
// setup orchestration (spec §6.1 new-server payload, §4.7.1).
type SetupParams struct {
	HostName  string
	ProductID string
	Config    types.NewServerConfig
}

// Setup runs the 4.7.1 new-server orchestration to completion,
// independent of the HTTP request that spawned it (spec §4.8, §5): the
// handler has already returned 202 by the time this runs.
func Setup(ctx context.Context, a app.App, userID string, params SetupParams) {
	timer := metrics.NewTimer()
	err := setup(ctx, a, userID, params)
	metrics.OrchestrationDuration.WithLabelValues("setup").Observe(timer.Duration().Seconds())
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.OrchestrationsTotal.WithLabelValues("setup", outcome).Inc()
}

func setup(ctx context.Context, a app.App, userID string, params SetupParams) error {
	tx, err := a.Store.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin setup transaction: %w", err)
	}
	var result error
	defer func() { Finalize(ctx, tx, result) }()

	server, err := store.InsertServer(ctx, tx, params.HostName)
	if err != nil {
		result = err
		return result
	}

	templateID, err := store.GetTemplateIDByOSName(ctx, tx, params.Config.OS)
	if err != nil {
		result = err
		return result
	}

	service, err := store.InsertService(ctx, tx, userID, server.ID, params.ProductID, templateID)
	if err != nil {
		result = err
		return result
	}

	if err := store.InsertConfigValue(ctx, tx, service.ID, types.OptionCPUCores, params.Config.CPUCores); err != nil {
		result = err
		return result
	}
	if err := store.InsertConfigValue(ctx, tx, service.ID, types.OptionRAMGB, params.Config.RAMGB); err != nil {
		result = err
		return result
	}
	if err := store.InsertCustomValue(ctx, tx, service.ID, types.FieldOS, params.Config.OS); err != nil {
		result = err
		return result
	}
	if err := store.InsertCustomValue(ctx, tx, service.ID, types.FieldDatacenter, params.Config.Datacenter); err != nil {
		result = err
		return result
	}

	ip, err := store.ReserveIP(ctx, tx, params.Config.Datacenter, server.ID)
	if err != nil {
		result = err
		return result
	}

	network, err := store.GetNetworkForIP(ctx, tx, ip.NetworkID)
	if err != nil {
		result = err
		return result
	}

	templateRef, err := store.GetVMRefForService(ctx, tx, service.ID)
	if err != nil {
		result = err
		return result
	}

	newVMID, createUPID, err := a.Cluster.Create(ctx, templateRef)
	if err != nil {
		result = err
		return result
	}
	if err := waiter.Wait(ctx, a.Cluster, apperr.ClusterOpCreate, templateRef.Node, createUPID, waiter.Options{}); err != nil {
		result = err
		return result
	}

	if err := store.SetServerVMID(ctx, tx, server.ID, newVMID, templateRef.Node); err != nil {
		result = err
		return result
	}

	networkConfig, err := hypervisor.BuildNetworkConfig(ip.Address, network.Gateway, network.SubnetMask)
	if err != nil {
		result = fmt.Errorf("build network config: %w", err)
		return result
	}

	newVM := hypervisor.VM{Node: templateRef.Node, ID: newVMID}
	configUPID, err := a.Cluster.VMConfigure(ctx, newVM, hypervisor.VMConfig{
		CIDR:     networkConfig,
		CPUCores: params.Config.CPUCores,
		RAMGB:    params.Config.RAMGB,
	})
	if err != nil {
		result = err
		return result
	}
	if err := waiter.Wait(ctx, a.Cluster, apperr.ClusterOpConfig, templateRef.Node, configUPID, waiter.Options{}); err != nil {
		result = err
		return result
	}

	if err := store.UpdateServerStatus(ctx, tx, server.ID, types.ServerStatusStopped); err != nil {
		result = err
		return result
	}
	if err := store.UpdateServiceStatus(ctx, tx, service.ID, types.ServiceStatusActive); err != nil {
		result = err
		return result
	}

	return nil
}
