package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportLegacyServerIsIdempotent(t *testing.T) {
	st := requireLiveDB(t)
	ctx := context.Background()
	row := LegacyServer{WHMCSServiceID: 424242, HostName: "legacy-host", Status: "running"}

	inserted, err := ImportLegacyServer(ctx, st.Pool, row)
	require.NoError(t, err)
	require.True(t, inserted)

	insertedAgain, err := ImportLegacyServer(ctx, st.Pool, row)
	require.NoError(t, err)
	require.False(t, insertedAgain, "re-importing the same whmcs_id must insert zero rows")
}
