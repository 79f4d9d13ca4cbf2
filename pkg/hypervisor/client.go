// Package hypervisor defines the capability interface the orchestrator
// depends on for cluster operations, plus an HTTP adapter implementing
// it against a Proxmox-style hypervisor cluster API.
//
// The orchestrator never imports the HTTP adapter directly; it is
// constructed once in cmd/vmctrl and threaded through the application
// handle as the Client interface, so tests can substitute an in-memory
// implementation returning fixed UPIDs (spec §9).
package hypervisor

import "context"

// UPID is the cluster's opaque, colon-delimited unique process
// identifier for a long-running task. The only permitted manipulations
// are percent-encoding it for a URL path and byte-identity comparison
// (spec §4.1, §9).
type UPID string

// VMStatus is the coarse running/stopped state reported by
// /status/current.
type VMStatus string

const (
	VMStatusRunning VMStatus = "running"
	VMStatusStopped VMStatus = "stopped"
)

// TaskState is the tri-state collapse of the cluster's
// {status, exitstatus} task response (spec §4.1). The zero TaskState is
// not a valid state, so an unset TaskResult is distinguishable from an
// explicit TaskPending.
type TaskState int

const (
	TaskPending TaskState = iota + 1
	TaskCompleted
	TaskFailed
)

// TaskResult is the outcome of one task_status poll.
type TaskResult struct {
	State  TaskState
	Reason string // populated only when State == TaskFailed
}

// VM identifies a cluster-side VM by node and numeric id.
type VM struct {
	Node string
	ID   int64
}

// Template identifies a cluster-side clone source by node and numeric
// template id.
type Template struct {
	Node string
	ID   int64
}

// VMConfig carries the clone-time configuration applied via vm_config
// (spec §4.7.1 step 10).
type VMConfig struct {
	// CIDR is "ip=<addr>/<bits>,gw=<gw>" — see BuildNetworkConfig.
	CIDR     string
	CPUCores int64
	RAMGB    int64
}

// Client is the capability interface the orchestrator depends on. All
// operations are asynchronous from the caller's point of view: they
// return as soon as the cluster has accepted the request and handed
// back a task reference (or, for vm_status/task_status, a synchronous
// answer).
type Client interface {
	Start(ctx context.Context, vm VM) (UPID, error)
	Shutdown(ctx context.Context, vm VM) (UPID, error)
	Stop(ctx context.Context, vm VM) (UPID, error)
	Reboot(ctx context.Context, vm VM) (UPID, error)
	Create(ctx context.Context, tmpl Template) (newVMID int64, upid UPID, err error)
	Delete(ctx context.Context, vm VM) (UPID, error)
	VMConfigure(ctx context.Context, vm VM, cfg VMConfig) (UPID, error)
	VMStatus(ctx context.Context, vm VM) (VMStatus, error)
	TaskStatus(ctx context.Context, node string, task UPID) (TaskResult, error)
}
