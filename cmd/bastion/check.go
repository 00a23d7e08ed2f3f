package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cuemby/bastion/pkg/api"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Dry-run a hook decision against the daemon's live state",
}

func init() {
	checkMountCmd.Flags().Int32("pid", 0, "Acting pid")
	checkMountCmd.Flags().String("source", "", "Mount source path (dev_name)")
	checkMountCmd.Flags().String("target", "/mnt", "Mount target path")
	checkMountCmd.Flags().String("fstype", "bind", "Filesystem type")

	checkOpenCmd.Flags().Int32("pid", 0, "Acting pid")
	checkOpenCmd.Flags().String("path", "", "Absolute file path")

	checkSetuidCmd.Flags().Int32("pid", 0, "Acting pid")
	checkSetuidCmd.Flags().Uint32("from", 1000, "Current uid")
	checkSetuidCmd.Flags().Uint32("to", 0, "Target uid")

	checkSyslogCmd.Flags().Int32("pid", 0, "Acting pid")

	checkCmd.AddCommand(checkMountCmd)
	checkCmd.AddCommand(checkOpenCmd)
	checkCmd.AddCommand(checkSetuidCmd)
	checkCmd.AddCommand(checkSyslogCmd)
}

func runCheck(req *api.CheckRequest) error {
	resp, err := controlClient().Check(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Printf("%s (verdict %d)\n", resp.Result, resp.Verdict)
	return nil
}

var checkMountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Dry-run the mount hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _ := cmd.Flags().GetInt32("pid")
		source, _ := cmd.Flags().GetString("source")
		target, _ := cmd.Flags().GetString("target")
		fstype, _ := cmd.Flags().GetString("fstype")

		return runCheck(&api.CheckRequest{
			Hook: "mount",
			PID:  pid,
			Mount: &api.MountCheck{
				Source: &source,
				Target: target,
				FSType: &fstype,
			},
		})
	},
}

var checkOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Dry-run the file-open hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _ := cmd.Flags().GetInt32("pid")
		path, _ := cmd.Flags().GetString("path")

		return runCheck(&api.CheckRequest{
			Hook: "open",
			PID:  pid,
			Open: &api.OpenCheck{Path: &path},
		})
	},
}

var checkSetuidCmd = &cobra.Command{
	Use:   "setuid",
	Short: "Dry-run the setuid hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _ := cmd.Flags().GetInt32("pid")
		from, _ := cmd.Flags().GetUint32("from")
		to, _ := cmd.Flags().GetUint32("to")

		return runCheck(&api.CheckRequest{
			Hook: "setuid",
			PID:  pid,
			Setuid: &api.SetuidCheck{
				NewUID: to,
				OldUID: from,
			},
		})
	},
}

var checkSyslogCmd = &cobra.Command{
	Use:   "syslog",
	Short: "Dry-run the syslog hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, _ := cmd.Flags().GetInt32("pid")
		return runCheck(&api.CheckRequest{
			Hook:   "syslog",
			PID:    pid,
			Syslog: &api.SyslogCheck{},
		})
	},
}
