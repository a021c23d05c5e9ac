package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/battguard/battguard/pkg/client"
	"github.com/battguard/battguard/pkg/config"
	"github.com/battguard/battguard/pkg/daemon"
)

var (
	logLevel   = "info"
	configPath = config.DefaultEnvPath()
	socketPath = daemon.DefaultSocketPath()
)

var (
	once     = false
	testHigh = false
	testLow  = false
	pollSecs = 0
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: battguard daemon is not running")
		fmt.Fprintln(os.Stderr, "Start it with 'battguard' or through your service supervisor.")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: permission denied talking to the daemon socket")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "battguard",
		Short: "battguard watches the battery and alerts on threshold crossings",
		Long: `battguard polls the host battery and pushes an alert through a cascade of
channels (desktop popup, sound, Telegram) when the charge crosses the
configured high or low threshold. Alerts are suppressed until the charge
returns to the neutral band, so a battery sitting at a threshold pings once.

Without flags it runs the polling loop until terminated.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogger()
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if testHigh && testLow {
				return fmt.Errorf("--test-high and --test-low are mutually exclusive")
			}
			return daemon.Run(daemon.Options{
				ConfigPath:   configPath,
				SocketPath:   socketPath,
				Once:         once,
				ForceHigh:    testHigh,
				ForceLow:     testLow,
				PollOverride: pollSecs,
			})
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&socketPath, "daemon-socket", socketPath, "daemon control socket path")

	flags := cmd.Flags()
	flags.BoolVar(&once, "once", false, "run a single poll-evaluate-notify cycle and exit")
	flags.BoolVar(&testHigh, "test-high", false, "force a high alert through the cascade and exit")
	flags.BoolVar(&testLow, "test-low", false, "force a low alert through the cascade and exit")
	flags.IntVar(&pollSecs, "poll", 0, "override poll interval in seconds")

	cmd.AddCommand(
		NewStatusCommand(),
		NewCheckCommand(),
		NewVersionCommand(),
	)

	return cmd
}
