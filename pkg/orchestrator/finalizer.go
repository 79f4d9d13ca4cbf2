package orchestrator

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/cuemby/vmctrl/pkg/log"
)

// Finalize is C5 (spec §4.6): commit the orchestration transaction on
// success, roll back on failure. Commit- and rollback-errors are
// logged but never returned — the orchestration's outcome is already
// fixed, and there is no caller left to hand an error to (spec §4.8:
// the HTTP handler that spawned this orchestration already returned).
func Finalize(ctx context.Context, tx pgx.Tx, result error) {
	if result == nil {
		if err := tx.Commit(ctx); err != nil {
			log.Logger.Error().Err(err).Msg("failed to commit orchestration transaction")
		}
		return
	}

	if err := tx.Rollback(ctx); err != nil {
		log.Logger.Error().Err(err).Msg("failed to roll back orchestration transaction")
	}
	log.Logger.Error().Err(result).Msg("orchestration failed")
}
