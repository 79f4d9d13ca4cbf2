package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/vmctrl/pkg/log"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
)

// SetTransientStatus implements C4 (spec §4.5): it opens its own short
// transaction, reads the server's current status (ownership-checked),
// writes target, and commits — independently of whatever orchestration
// transaction follows. This is what lets a client polling GET /servers
// observe the in-flight transition; it is a visibility marker, not a
// mutual-exclusion lock (spec §5, §9).
func SetTransientStatus(ctx context.Context, st *store.Store, userID, serverID string, target types.ServerStatus) (prior types.ServerStatus, err error) {
	tx, err := st.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin transient-status transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	prior, err = store.GetServerStatusForUser(ctx, tx, userID, serverID)
	if err != nil {
		return "", err
	}

	if err := store.UpdateServerStatus(ctx, tx, serverID, target); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit transient status: %w", err)
	}
	return prior, nil
}

// RevertTransientStatus is the guard's best-effort revert path (spec
// §4.5, §4.7.2 step 8, §4.7.3 step 7): failures here are logged and
// swallowed since the orchestration outcome is already determined.
func RevertTransientStatus(ctx context.Context, st *store.Store, userID, serverID string, prior types.ServerStatus) {
	if _, err := SetTransientStatus(ctx, st, userID, serverID, prior); err != nil {
		log.WithServerID(serverID).Error().Err(err).Str("prior_status", string(prior)).Msg("failed to revert transient status")
	}
}
