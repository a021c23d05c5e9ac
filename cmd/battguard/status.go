package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/battguard/battguard/pkg/client"
	"github.com/battguard/battguard/pkg/monitor"
)

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}

func stateText(st monitor.State) string {
	switch st {
	case monitor.StateNotifiedHigh:
		return color.YellowString("notified high")
	case monitor.StateNotifiedLow:
		return color.RedString("notified low")
	default:
		return color.GreenString("neutral")
	}
}

func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get the current status of the battguard daemon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			apiClient := client.NewClient(socketPath)

			st, err := apiClient.GetStatus()
			if err != nil {
				return fmt.Errorf("failed to get status: %w", err)
			}
			conf, err := apiClient.GetConfig()
			if err != nil {
				return fmt.Errorf("failed to get config: %w", err)
			}

			cmd.Println(bold("Battery:"))
			if st.Reading != nil {
				cmd.Printf("  Charge: %s\n", bold("%d%%", st.Reading.Percent))
				cmd.Printf("  Status: %s\n", st.Reading.Status)
			} else {
				cmd.Println("  No reading yet (daemon just started or sensor unavailable).")
			}

			cmd.Println(bold("Alerts:"))
			cmd.Printf("  Notify state: %s\n", stateText(st.NotifyState))
			cmd.Printf("  Thresholds: high %d%%, low %d%% (re-arm margin %d%%)\n", conf.High, conf.Low, conf.Margin)
			cmd.Printf("  Channels: %v\n", st.Channels)
			if len(st.LastReport) > 0 {
				cmd.Println("  Last cascade:")
				for _, d := range st.LastReport {
					if d.Error != "" {
						cmd.Printf("    %s: %s (%s)\n", d.Channel, color.RedString("failed"), d.Error)
					} else {
						cmd.Printf("    %s: %s\n", d.Channel, color.GreenString("delivered"))
					}
				}
			}

			cmd.Println(bold("Daemon:"))
			cmd.Printf("  Poll interval: %s\n", conf.PollInterval)
			cmd.Printf("  State dir: %s\n", conf.StateDir)
			cmd.Printf("  Log file: %s\n", conf.LogFile)

			return nil
		},
	}
}
