package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/types"
)

func TestTransientAndFinalCoversEveryAction(t *testing.T) {
	cases := []struct {
		action            types.Action
		transient, final types.ServerStatus
	}{
		{types.ActionStart, types.ServerStatusStarting, types.ServerStatusRunning},
		{types.ActionStop, types.ServerStatusStopping, types.ServerStatusStopped},
		{types.ActionShutdown, types.ServerStatusShuttingDown, types.ServerStatusStopped},
		{types.ActionReboot, types.ServerStatusRebooting, types.ServerStatusRunning},
	}
	for _, c := range cases {
		transient, final := transientAndFinal(c.action)
		assert.Equal(t, c.transient, transient, c.action)
		assert.Equal(t, c.final, final, c.action)
	}
}

func TestClusterCallMapsEveryActionToItsOperation(t *testing.T) {
	cases := map[types.Action]apperr.ClusterOp{
		types.ActionStart:    apperr.ClusterOpStart,
		types.ActionStop:     apperr.ClusterOpStop,
		types.ActionShutdown: apperr.ClusterOpShutdown,
		types.ActionReboot:   apperr.ClusterOpReboot,
	}
	for action, op := range cases {
		gotOp, call := clusterCall(action)
		assert.Equal(t, op, gotOp, action)
		assert.NotNil(t, call, action)
	}
}
