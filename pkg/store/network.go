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

// ReserveIP picks a free IP address row scoped to datacenterName and
// binds it to serverID, in one transaction (spec §4.4, §5: "skip-locked
// ensures no two transactions lock the same free row; a transaction
// that finds no row fails with not found"). Callers MUST pass a
// transaction handle — the SELECT…FOR UPDATE SKIP LOCKED guarantee only
// holds across the select+update pair inside one transaction.
func ReserveIP(ctx context.Context, tx pgx.Tx, datacenterName, serverID string) (types.IPAddress, error) {
	var ip types.IPAddress
	err := tx.QueryRow(ctx, `
		SELECT ip.id, ip.network_id, ip.address, ip.server_id
		FROM ip_addresses ip
		JOIN networks n ON n.id = ip.network_id
		WHERE ip.server_id IS NULL AND n.datacenter_name = $1
		LIMIT 1
		FOR UPDATE SKIP LOCKED
	`, datacenterName).Scan(&ip.ID, &ip.NetworkID, &ip.Address, &ip.ServerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.IPAddress{}, ErrNotFound
	}
	if err != nil {
		return types.IPAddress{}, apperr.WrapPersistence(err)
	}

	if _, err := tx.Exec(ctx, `UPDATE ip_addresses SET server_id = $1 WHERE id = $2`, serverID, ip.ID); err != nil {
		return types.IPAddress{}, apperr.WrapPersistence(err)
	}
	ip.ServerID = &serverID
	return ip, nil
}

// GetNetworkForIP fetches the network (gateway, subnet mask) owning a
// reserved IP, used to build the cluster's ipconfig string (spec
// §4.7.1 step 10).
func GetNetworkForIP(ctx context.Context, db DBTX, ipID string) (types.Network, error) {
	var n types.Network
	err := db.QueryRow(ctx, `
		SELECT n.id, n.datacenter_name, n.gateway, n.subnet_mask
		FROM networks n
		JOIN ip_addresses ip ON ip.network_id = n.id
		WHERE ip.id = $1
	`, ipID).Scan(&n.ID, &n.DatacenterName, &n.Gateway, &n.SubnetMask)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Network{}, ErrNotFound
	}
	if err != nil {
		return types.Network{}, apperr.WrapPersistence(err)
	}
	return n, nil
}

// InsertConfigValue persists one numeric per-service option value (e.g.
// cpu_cores, ram_gb) referencing the option by name (spec §4.4, §4.7.1
// step 5).
func InsertConfigValue(ctx context.Context, db DBTX, serviceID, optionName string, value int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO config_values (id, service_id, option_id, value)
		SELECT $1, $2, o.id, $3 FROM configurable_options o WHERE o.name = $4
	`, uuid.NewString(), serviceID, value, optionName)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	return nil
}

// InsertCustomValue persists one string per-service field value (e.g.
// os, datacenter) referencing the field by name.
func InsertCustomValue(ctx context.Context, db DBTX, serviceID, fieldName, value string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO custom_values (id, service_id, field_id, value)
		SELECT $1, $2, f.id, $3 FROM custom_fields f WHERE f.name = $4
	`, uuid.NewString(), serviceID, value, fieldName)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	return nil
}

// GetTemplateIDByOSName resolves a template id from an OS name (spec
// §4.7.1 step 3).
func GetTemplateIDByOSName(ctx context.Context, db DBTX, osName string) (string, error) {
	var id string
	err := db.QueryRow(ctx, `SELECT id FROM templates WHERE os_name = $1`, osName).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", apperr.WrapPersistence(err)
	}
	return id, nil
}

// GetVMRefForService resolves the template's clone source (node,
// template vm id) by service id (spec §4.7.1 step 7).
func GetVMRefForService(ctx context.Context, db DBTX, serviceID string) (hypervisor.Template, error) {
	var t hypervisor.Template
	err := db.QueryRow(ctx, `
		SELECT tpl.template_node, tpl.template_vmid
		FROM services sv
		JOIN templates tpl ON tpl.id = sv.template_id
		WHERE sv.id = $1
	`, serviceID).Scan(&t.Node, &t.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return hypervisor.Template{}, ErrNotFound
	}
	if err != nil {
		return hypervisor.Template{}, apperr.WrapPersistence(err)
	}
	return t, nil
}
