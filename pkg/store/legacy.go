package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/cuemby/vmctrl/pkg/apperr"
)

// LegacyServer is one row from the WHMCS-era export consumed by the
// cmd/vmctrl-migrate importer (SPEC_FULL.md §4.15).
type LegacyServer struct {
	WHMCSServiceID int64
	HostName       string
	Status         string
	VMID           *int64
	NodeName       *string
}

// ImportLegacyServer inserts a server row keyed by its legacy WHMCS
// service id, doing nothing if that id was already imported. Running
// the importer twice against the same export is therefore a no-op the
// second time (SPEC_FULL.md §4.15 idempotency requirement).
func ImportLegacyServer(ctx context.Context, db DBTX, row LegacyServer) (inserted bool, err error) {
	tag, err := db.Exec(ctx, `
		INSERT INTO servers (id, host_name, status, whmcs_id, vm_id, node_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (whmcs_id) WHERE whmcs_id IS NOT NULL DO NOTHING
	`, uuid.NewString(), row.HostName, row.Status, row.WHMCSServiceID, row.VMID, row.NodeName)
	if err != nil {
		return false, apperr.WrapPersistence(err)
	}
	return tag.RowsAffected() > 0, nil
}
