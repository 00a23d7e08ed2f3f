package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	specs "github.com/opencontainers/runtime-spec/specs-go"
	"github.com/spf13/cobra"

	"github.com/cuemby/bastion/pkg/api"
)

// policyAnnotation selects the tier for a container. Set it on the OCI
// config (docker run --annotation, or the runtime's equivalent); absent
// means baseline.
const policyAnnotation = "bastion.policy"

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "OCI createRuntime hook: register the new container",
	Long: `Register a freshly created container with the running daemon.

Wire this binary into the runtime's createRuntime hooks; it reads the
OCI state document from stdin, derives the container id, and registers
the container and its init process before the entrypoint runs. That
ordering is what closes the lineage race window.`,
	RunE: runHook,
}

func init() {
	hookCmd.Flags().Duration("timeout", 5*time.Second, "Registration timeout")
	hookCmd.Flags().String("default-policy", "baseline", "Tier used when the container carries no policy annotation")
}

func runHook(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	defaultPolicy, _ := cmd.Flags().GetString("default-policy")

	var ociState specs.State
	if err := json.NewDecoder(os.Stdin).Decode(&ociState); err != nil {
		return fmt.Errorf("decode OCI state: %w", err)
	}
	if ociState.ID == "" {
		return fmt.Errorf("OCI state carries no container id")
	}
	if ociState.Pid <= 0 {
		return fmt.Errorf("OCI state carries no init pid (hook must run at createRuntime)")
	}

	policyName := defaultPolicy
	if v, ok := ociState.Annotations[policyAnnotation]; ok && v != "" {
		policyName = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := controlClient().RegisterContainer(ctx, &api.RegisterContainerRequest{
		ID:      api.DeriveContainerID(ociState.ID),
		Name:    ociState.ID,
		Policy:  policyName,
		InitPID: int32(ociState.Pid),
	})
	if err != nil {
		return fmt.Errorf("register container %s: %w", ociState.ID, err)
	}
	return nil
}
