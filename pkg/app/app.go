// Package app implements SPEC_FULL.md §4.14: the shared, cheaply
// clonable application handle threaded through every HTTP handler and
// every detached orchestration goroutine (spec §5).
package app

import (
	"github.com/cuemby/vmctrl/pkg/auth"
	"github.com/cuemby/vmctrl/pkg/config"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/store"
)

// App bundles the process-wide, thread-safe collaborators an
// orchestration needs: a database pool, a hypervisor client behind the
// capability interface, and the token service for issuing/validating
// bearer tokens. Every field is itself a pooled/reference-counted
// handle, so App is safe to copy by value (spec §5: "no other global
// mutable state").
type App struct {
	Store   *store.Store
	Cluster hypervisor.Client
	Tokens  *auth.TokenService
	Config  *config.Config
}

// New builds an App from its collaborators.
func New(cfg *config.Config, st *store.Store, cluster hypervisor.Client, tokens *auth.TokenService) *App {
	return &App{Store: st, Cluster: cluster, Tokens: tokens, Config: cfg}
}

// Clone returns a shallow copy. Handlers and orchestrators take this
// copy rather than a pointer to the shared App so that nothing at the
// call site can observe or depend on shared mutable App state — every
// field it contains is already its own thread-safe handle.
func (a App) Clone() App {
	return a
}
