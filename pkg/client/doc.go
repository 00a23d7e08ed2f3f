/*
Package client provides the typed client for Bastion's control socket.

The OCI hook and the CLI subcommands speak to the daemon through this
client rather than hand-rolling HTTP requests. It
dials the unix socket directly (the URL host is a placeholder), so
reachability is exactly file-permission reachability.

# Usage Example

	cli := client.NewClient("") // default socket path

	_, err := cli.RegisterContainer(ctx, &api.RegisterContainerRequest{
		ID:      id,
		Name:    ociState.ID,
		Policy:  "baseline",
		InitPID: int32(ociState.Pid),
	})

Every method returns the server's JSON error message when the daemon
rejects a request, so hook scripts surface something actionable instead
of a bare status code.
*/
package client
