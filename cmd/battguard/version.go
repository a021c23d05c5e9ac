package main

import (
	"github.com/spf13/cobra"

	"github.com/battguard/battguard/pkg/client"
	"github.com/battguard/battguard/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print battguard version",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s (%s)\n", version.Version, version.GitCommit)

			// Also report the daemon's version when one is reachable; a
			// mismatch means the binary was upgraded under a running daemon.
			daemonVersion, err := client.NewClient(socketPath).GetVersion()
			if err != nil {
				return
			}
			cmd.Printf("daemon: %s", daemonVersion)
			if daemonVersion != version.Version {
				cmd.Printf(" (restart the daemon to match)")
			}
			cmd.Println()
		},
	}
}
