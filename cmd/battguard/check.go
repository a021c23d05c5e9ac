package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/battguard/battguard/pkg/client"
)

func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run an immediate poll cycle through the running daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := client.NewClient(socketPath).Check()
			if err != nil {
				return fmt.Errorf("failed to trigger a check: %w", err)
			}

			cmd.Printf("Notify state: %s\n", stateText(st))
			return nil
		},
	}
}
