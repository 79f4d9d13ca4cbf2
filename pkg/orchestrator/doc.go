// Package orchestrator drives the long-running VM lifecycle operations
// (setup, action, delete) to completion in a goroutine detached from
// the HTTP request that triggered them. Each orchestration owns its
// own transaction and its own transient-status visibility marker;
// neither is shared with the request that spawned it.
package orchestrator
