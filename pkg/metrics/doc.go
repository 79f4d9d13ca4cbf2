// Package metrics registers vmctrl's Prometheus collectors and serves
// them on /metrics via Handler. Recording a metric never fails an
// orchestration: all Observe/Inc calls are fire-and-forget against
// in-memory collectors.
package metrics
