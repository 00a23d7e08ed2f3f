package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cuemby/bastion/pkg/client"
	"github.com/cuemby/bastion/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bastion",
	Short: "Bastion - Per-container policy enforcement engine",
	Long: `Bastion enforces per-container security policy on a host: kernel log
access, bind mounts, privilege transitions, and file opens are allowed
or denied by the policy tier a container was registered under.

The daemon tracks process lineage so every descendant of a container's
init inherits its tier; host processes are never touched.`,
	Version: Version,
}

func init() {
	// Set version template
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Bastion version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("socket", "", "Control socket path (default /run/bastion/bastion.sock)")

	// Initialize logging before command execution
	cobra.OnInitialize(initLogging)

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(statusCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func controlClient() *client.Client {
	socketPath, _ := rootCmd.PersistentFlags().GetString("socket")
	return client.NewClient(socketPath)
}

var policyCmd = &cobra.Command{
	Use:   "policy <pid>",
	Short: "Resolve the policy tier governing a pid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := parsePIDArg(args[0])
		if err != nil {
			return err
		}
		resp, err := controlClient().ResolvePolicy(context.Background(), pid)
		if err != nil {
			return err
		}
		fmt.Printf("pid %d: %s\n", resp.PID, resp.Resolution)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon health and registered containers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cli := controlClient()

		health, err := cli.Health(ctx)
		if err != nil {
			return fmt.Errorf("daemon unreachable: %w", err)
		}
		fmt.Printf("Status:     %s\n", health.Status)
		fmt.Printf("Containers: %d\n", health.Containers)
		fmt.Printf("Processes:  %d\n\n", health.Processes)

		containers, err := cli.ListContainers(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPOLICY\tINIT PID")
		for _, c := range containers {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", c.ID, c.Name, c.Policy, c.InitPID)
		}
		return w.Flush()
	},
}

func parsePIDArg(raw string) (int32, error) {
	var pid int32
	if _, err := fmt.Sscanf(raw, "%d", &pid); err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid %q", raw)
	}
	return pid, nil
}
