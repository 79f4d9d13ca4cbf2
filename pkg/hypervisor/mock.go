package hypervisor

import (
	"context"
	"sync"
)

// Mock is an in-memory Client used by orchestrator and httpapi tests
// (spec §9: "tests substitute an in-memory adapter returning fixed
// UPIDs and Completed"). Every call is recorded in Calls for assertions.
type Mock struct {
	mu sync.Mutex

	// NextVMID is returned by Create and incremented after each call.
	NextVMID int64
	// UPID is returned by every operation that produces one.
	UPID UPID
	// TaskResult is returned by every TaskStatus call, unless
	// TaskResultFunc is set. A zero TaskResult yields TaskCompleted.
	TaskResult     TaskResult
	TaskResultFunc func(node string, task UPID) TaskResult
	VMStatusResult VMStatus

	// Err, if set, is returned by every call instead of a result.
	Err error
	// ErrOn, if non-empty, restricts Err to calls whose operation name
	// (e.g. "start", "create") matches.
	ErrOn string

	Calls []string
}

func (m *Mock) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, op)
	if m.Err != nil && (m.ErrOn == "" || m.ErrOn == op) {
		return m.Err
	}
	return nil
}

func (m *Mock) Start(ctx context.Context, vm VM) (UPID, error) {
	if err := m.record("start"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) Shutdown(ctx context.Context, vm VM) (UPID, error) {
	if err := m.record("shutdown"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) Stop(ctx context.Context, vm VM) (UPID, error) {
	if err := m.record("stop"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) Reboot(ctx context.Context, vm VM) (UPID, error) {
	if err := m.record("reboot"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) Create(ctx context.Context, tmpl Template) (int64, UPID, error) {
	if err := m.record("create"); err != nil {
		return 0, "", err
	}
	m.mu.Lock()
	id := m.NextVMID
	m.NextVMID++
	m.mu.Unlock()
	return id, m.UPID, nil
}

func (m *Mock) Delete(ctx context.Context, vm VM) (UPID, error) {
	if err := m.record("delete"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) VMConfigure(ctx context.Context, vm VM, cfg VMConfig) (UPID, error) {
	if err := m.record("vm_config"); err != nil {
		return "", err
	}
	return m.UPID, nil
}

func (m *Mock) VMStatus(ctx context.Context, vm VM) (VMStatus, error) {
	if err := m.record("vm_status"); err != nil {
		return "", err
	}
	if m.VMStatusResult == "" {
		return VMStatusStopped, nil
	}
	return m.VMStatusResult, nil
}

func (m *Mock) TaskStatus(ctx context.Context, node string, task UPID) (TaskResult, error) {
	if err := m.record("task_status"); err != nil {
		return TaskResult{}, err
	}
	if m.TaskResultFunc != nil {
		return m.TaskResultFunc(node, task), nil
	}
	if m.TaskResult.State == 0 && m.TaskResult.Reason == "" {
		return TaskResult{State: TaskCompleted}, nil
	}
	return m.TaskResult, nil
}

var _ Client = (*Mock)(nil)
