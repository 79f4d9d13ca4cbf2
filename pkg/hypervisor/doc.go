/*
Package hypervisor implements SPEC_FULL.md §4.1: the Client capability
interface orchestrators depend on, and HTTPClient, the one concrete
adapter against a Proxmox-style cluster API.

The orchestrator package never imports HTTPClient; it holds a Client
interface value so tests can substitute an in-memory fake that returns
fixed UPIDs and a Completed task status (see Mock in mock.go, used by
the pkg/waiter tests and the orchestration-level tests in
pkg/orchestrator).
*/
package hypervisor
