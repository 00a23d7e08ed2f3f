package client

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/bastion/pkg/api"
	"github.com/cuemby/bastion/pkg/enforcer"
	"github.com/cuemby/bastion/pkg/lineage"
	"github.com/cuemby/bastion/pkg/state"
)

// startDaemonSocket brings up a real control server on a unix socket.
func startDaemonSocket(t *testing.T) (string, *state.State) {
	t.Helper()
	st := state.NewWithCaps(state.Caps{Containers: 16, Processes: 16, Runtimes: 4, Paths: 8})
	srv := api.NewServer(st, nil, enforcer.New(st, lineage.NewTracker(st), nil))

	socketPath := filepath.Join(t.TempDir(), "bastion.sock")
	require.NoError(t, srv.Start(socketPath))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Stop(ctx)
	})
	return socketPath, st
}

func TestClientRoundTrip(t *testing.T) {
	socketPath, st := startDaemonSocket(t)
	cli := NewClient(socketPath)
	ctx := context.Background()

	resp, err := cli.RegisterContainer(ctx, &api.RegisterContainerRequest{
		ID:      api.DeriveContainerID("b7a1c0ffee"),
		Name:    "b7a1c0ffee",
		Policy:  "restricted",
		InitPID: 4242,
	})
	require.NoError(t, err)
	assert.Equal(t, "restricted", resp.Policy)

	pol, err := cli.ResolvePolicy(ctx, 4242)
	require.NoError(t, err)
	assert.Equal(t, "restricted", pol.Resolution)

	health, err := cli.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, health.Containers)
	assert.Equal(t, 1, health.Processes)

	// Dry-run a decision over the socket.
	check, err := cli.Check(ctx, &api.CheckRequest{Hook: "syslog", PID: 4242})
	require.NoError(t, err)
	assert.Equal(t, "deny", check.Result)

	require.NoError(t, cli.UnbindProcess(ctx, 4242))
	require.NoError(t, cli.UnregisterContainer(ctx, api.DeriveContainerID("b7a1c0ffee")))
	assert.Equal(t, 0, st.Containers.Len())
	assert.Equal(t, 0, st.Processes.Len())
}

func TestClientSurfacesServerErrors(t *testing.T) {
	socketPath, _ := startDaemonSocket(t)
	cli := NewClient(socketPath)

	_, err := cli.RegisterContainer(context.Background(), &api.RegisterContainerRequest{
		ID:     1,
		Policy: "ultra",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown policy level")
}

func TestClientUnreachableDaemon(t *testing.T) {
	cli := NewClient(filepath.Join(t.TempDir(), "absent.sock"))
	_, err := cli.Health(context.Background())
	assert.Error(t, err)
}
