package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cuemby/vmctrl/pkg/apperr"
	"github.com/cuemby/vmctrl/pkg/types"
)

// InsertService binds a user, server, product and template, starting
// in ServiceStatusPending (spec §4.7.1 step 4).
func InsertService(ctx context.Context, db DBTX, userID, serverID, productID, templateID string) (types.Service, error) {
	id := uuid.NewString()
	row := db.QueryRow(ctx, `
		INSERT INTO services (id, user_id, server_id, product_id, template_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, server_id, product_id, template_id, status, whmcs_id, created_at, updated_at
	`, id, userID, serverID, productID, templateID, types.ServiceStatusPending)
	return scanService(row)
}

// UpdateServiceStatus writes a new status onto a service row.
func UpdateServiceStatus(ctx context.Context, db DBTX, serviceID string, status types.ServiceStatus) error {
	tag, err := db.Exec(ctx, `UPDATE services SET status = $1, updated_at = now() WHERE id = $2`, status, serviceID)
	if err != nil {
		return apperr.WrapPersistence(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanService(row pgx.Row) (types.Service, error) {
	var s types.Service
	err := row.Scan(&s.ID, &s.UserID, &s.ServerID, &s.ProductID, &s.TemplateID, &s.Status, &s.WHMCSID, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return types.Service{}, ErrNotFound
	}
	if err != nil {
		return types.Service{}, apperr.WrapPersistence(err)
	}
	return s, nil
}
