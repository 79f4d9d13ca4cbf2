package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/types"
)

// InsertServer creates the minimal server row at the start of a setup
// orchestration (spec §4.7.1 step 2): no vm_id/node yet, status
// SettingUp.
func InsertServer(ctx context.Context, db DBTX, hostName string) (types.Server, error) {
	id := uuid.NewString()
	row := db.QueryRow(ctx, `
		INSERT INTO servers (id, host_name, status)
		VALUES ($1, $2, $3)
		RETURNING id, vm_id, node_name, host_name, status, whmcs_id, created_at, updated_at
	`, id, hostName, types.ServerStatusSettingUp)
	return scanServer(row)
}

// SetServerVMID persists the cluster-assigned vm id and node after the
// clone completes (spec §4.7.1 step 9).
func SetServerVMID(ctx context.Context, db DBTX, serverID string, vmID int64, nodeName string) error {
	tag, err := db.Exec(ctx, `
		UPDATE servers SET vm_id = $1, node_name = $2, updated_at = now() WHERE id = $3
	`, vmID, nodeName, serverID)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateServerStatus writes a new status onto a server row. Used both
// by the transient-status guard and by orchestrators persisting a
// terminal status.
func UpdateServerStatus(ctx context.Context, db DBTX, serverID string, status types.ServerStatus) error {
	tag, err := db.Exec(ctx, `UPDATE servers SET status = $1, updated_at = now() WHERE id = $2`, status, serverID)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const serverViewSelect = `
	SELECT s.id, s.vm_id, s.node_name, s.host_name, s.status, s.whmcs_id, s.created_at, s.updated_at,
	       sv.id, sv.status, sv.product_id, sv.template_id, ip.address
	FROM servers s
	JOIN services sv ON sv.server_id = s.id
	LEFT JOIN ip_addresses ip ON ip.server_id = s.id
`

// GetServerForUser fetches one server joined to its service and
// reserved IP, scoped to the owning user (spec §4.4 ownership check).
// Returns ErrNotFound if the server doesn't exist or belongs to
// another tenant — the core never distinguishes the two.
func GetServerForUser(ctx context.Context, db DBTX, userID, serverID string) (types.ServerView, error) {
	row := db.QueryRow(ctx, serverViewSelect+` WHERE sv.user_id = $1 AND s.id = $2`, userID, serverID)
	return scanServerView(row)
}

// ListServersForUser fetches every server a user owns.
func ListServersForUser(ctx context.Context, db DBTX, userID string) ([]types.ServerView, error) {
	rows, err := db.Query(ctx, serverViewSelect+` WHERE sv.user_id = $1 ORDER BY s.created_at`, userID)
	if err != nil {
		return nil, apperr.WrapPersistence(err)
	}
	defer rows.Close()

	var out []types.ServerView
	for rows.Next() {
		view, err := scanServerView(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, view)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.WrapPersistence(err)
	}
	return out, nil
}

// GetServerStatusForUser reads a server's current status, ownership
// checked, for use by the transient-status guard (spec §4.5 step 2).
func GetServerStatusForUser(ctx context.Context, db DBTX, userID, serverID string) (types.ServerStatus, error) {
	var status types.ServerStatus
	err := db.QueryRow(ctx, `
		SELECT s.status
		FROM servers s
		JOIN services sv ON sv.server_id = s.id
		WHERE sv.user_id = $1 AND s.id = $2
	`, userID, serverID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperr.WrapPersistence(err)
	}
	return status, nil
}

// GetVMRefForServer resolves (node, vm_id) for a server, ownership
// checked, for use by the action and deletion orchestrators (spec
// §4.7.2 step 4, §4.7.3 step 3).
func GetVMRefForServer(ctx context.Context, db DBTX, userID, serverID string) (hypervisor.VM, error) {
	var node string
	var vmID int64
	err := db.QueryRow(ctx, `
		SELECT s.node_name, s.vm_id
		FROM servers s
		JOIN services sv ON sv.server_id = s.id
		WHERE sv.user_id = $1 AND s.id = $2
	`, userID, serverID).Scan(&node, &vmID)
	if errors.Is(err, pgx.ErrNoRows) {
		return hypervisor.VM{}, ErrNotFound
	}
	if err != nil {
		return hypervisor.VM{}, apperr.WrapPersistence(err)
	}
	return hypervisor.VM{Node: node, ID: vmID}, nil
}

// DeleteServer frees the server's bound IP (if any) and removes the
// server row, in that order, within the caller's transaction (spec §3
// invariant 4, §4.7.3 step 5).
func DeleteServer(ctx context.Context, db DBTX, serverID string) error {
	if _, err := db.Exec(ctx, `UPDATE ip_addresses SET server_id = NULL WHERE server_id = $1`, serverID); err != nil {
		return apperr.WrapPersistence(err)
	}
	tag, err := db.Exec(ctx, `DELETE FROM servers WHERE id = $1`, serverID)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanServer(row pgx.Row) (types.Server, error) {
	var s types.Server
	err := row.Scan(&s.ID, &s.VMID, &s.NodeName, &s.HostName, &s.Status, &s.WHMCSID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Server{}, ErrNotFound
	}
	if err != nil {
		return types.Server{}, apperr.WrapPersistence(err)
	}
	return s, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanServerView(row rowScanner) (types.ServerView, error) {
	var v types.ServerView
	err := row.Scan(
		&v.ID, &v.VMID, &v.NodeName, &v.HostName, &v.Status, &v.WHMCSID, &v.CreatedAt, &v.UpdatedAt,
		&v.ServiceID, &v.ServiceStatus, &v.ProductID, &v.TemplateID, &v.IPAddress,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ServerView{}, ErrNotFound
	}
	if err != nil {
		return types.ServerView{}, apperr.WrapPersistence(err)
	}
	return v, nil
}
