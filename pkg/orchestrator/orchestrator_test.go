package orchestrator

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/vmctrl/pkg/app"
	"github.com/cuemby/vmctrl/pkg/hypervisor"
	"github.com/cuemby/vmctrl/pkg/store"
	"github.com/cuemby/vmctrl/pkg/types"
)

// These exercise the orchestrators end to end against a real Postgres
// instance (the SELECT … FOR UPDATE SKIP LOCKED path in ReserveIP can't
// be faked behind an interface). Point VMCTRL_TEST_DATABASE_URL at a
// disposable database with the schema migrated; otherwise they skip,
// matching the teacher's own test/integration skip pattern.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping orchestrator integration test in -short mode")
	}
	dsn := os.Getenv("VMCTRL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("VMCTRL_TEST_DATABASE_URL not set")
	}
	if err := store.Migrate(dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	st, err := store.Open(context.Background(), store.Config{DSN: dsn, MaxConns: 4, MinConns: 1})
	require.NoError(t, err)
	t.Cleanup(st.Close)
	return st
}

type fixture struct {
	userID     string
	productID  string
	templateID string
	datacenter string
	os         string
}

func seedFixture(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		userID:     uuid.NewString(),
		productID:  uuid.NewString(),
		templateID: uuid.NewString(),
		datacenter: "test-dc-" + uuid.NewString(),
		os:         "test-os-" + uuid.NewString(),
	}
	groupID := uuid.NewString()
	networkID := uuid.NewString()

	_, err := pool.Exec(ctx, `INSERT INTO users (id, email, password_hash) VALUES ($1, $2, 'x')`,
		f.userID, f.userID+"@example.com")
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO product_groups (id, name) VALUES ($1, 'test group')`, groupID)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO products (id, product_group_id, name) VALUES ($1, $2, 'test product')`,
		f.productID, groupID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO templates (id, os_name, template_vmid, template_node) VALUES ($1, $2, 9000, 'pve1')
	`, f.templateID, f.os)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO networks (id, datacenter_name, gateway, subnet_mask) VALUES ($1, $2, '10.0.0.1', '255.255.255.0')
	`, networkID, f.datacenter)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO ip_addresses (id, network_id, address) VALUES ($1, $2, '10.0.0.50')`,
		uuid.NewString(), networkID)
	require.NoError(t, err)

	return f
}

func TestSetupProvisionsServerEndToEnd(t *testing.T) {
	st := newTestStore(t)
	f := seedFixture(t, st.Pool)
	cluster := &hypervisor.Mock{}
	a := app.App{Store: st, Cluster: cluster}

	err := setup(context.Background(), a, f.userID, SetupParams{
		HostName:  "test-host",
		ProductID: f.productID,
		Config: types.NewServerConfig{
			CPUCores:   2,
			RAMGB:      4,
			OS:         f.os,
			Datacenter: f.datacenter,
		},
	})
	require.NoError(t, err)

	view, err := store.GetServerForUser(context.Background(), st.Pool, f.userID, serverIDFor(t, st.Pool, f.userID))
	require.NoError(t, err)
	require.Equal(t, types.ServerStatusStopped, view.Status)
	require.Equal(t, types.ServiceStatusActive, view.ServiceStatus)
	require.NotNil(t, view.VMID)
}

func TestActionTransitionsServerStatus(t *testing.T) {
	st := newTestStore(t)
	f := seedFixture(t, st.Pool)
	cluster := &hypervisor.Mock{}
	a := app.App{Store: st, Cluster: cluster}

	require.NoError(t, setup(context.Background(), a, f.userID, SetupParams{
		HostName:  "test-host",
		ProductID: f.productID,
		Config:    types.NewServerConfig{CPUCores: 1, RAMGB: 1, OS: f.os, Datacenter: f.datacenter},
	}))

	serverID := serverIDFor(t, st.Pool, f.userID)
	require.NoError(t, runAction(context.Background(), a, f.userID, serverID, types.ActionStart))

	status, err := store.GetServerStatusForUser(context.Background(), st.Pool, f.userID, serverID)
	require.NoError(t, err)
	require.Equal(t, types.ServerStatusRunning, status)
}

func TestDeleteRemovesServerAndFreesIP(t *testing.T) {
	st := newTestStore(t)
	f := seedFixture(t, st.Pool)
	cluster := &hypervisor.Mock{}
	a := app.App{Store: st, Cluster: cluster}

	require.NoError(t, setup(context.Background(), a, f.userID, SetupParams{
		HostName:  "test-host",
		ProductID: f.productID,
		Config:    types.NewServerConfig{CPUCores: 1, RAMGB: 1, OS: f.os, Datacenter: f.datacenter},
	}))

	serverID := serverIDFor(t, st.Pool, f.userID)
	require.NoError(t, runDelete(context.Background(), a, f.userID, serverID))

	_, err := store.GetServerStatusForUser(context.Background(), st.Pool, f.userID, serverID)
	require.ErrorIs(t, err, store.ErrNotFound)

	var bound int
	err = st.Pool.QueryRow(context.Background(), `SELECT count(*) FROM ip_addresses WHERE server_id = $1`, serverID).Scan(&bound)
	require.NoError(t, err)
	require.Equal(t, 0, bound, "no IP row may stay bound to the deleted server")
}

func serverIDFor(t *testing.T, pool *pgxpool.Pool, userID string) string {
	t.Helper()
	var id string
	err := pool.QueryRow(context.Background(), `SELECT server_id FROM services WHERE user_id = $1`, userID).Scan(&id)
	require.NoError(t, err)
	return id
}
