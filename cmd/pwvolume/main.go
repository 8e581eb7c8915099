package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	// global flags
	argConfigPath string
	argLogLevel   string
	argRemote     string
	argTimeoutMS  int

	rootCmd = &cobra.Command{
		Use:           "pwvolume",
		Short:         "Basic interface to PipeWire volume controls",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	changeCmd = &cobra.Command{
		Use:   "change <delta>%",
		Short: "adjust volume by a signed decimal percentage, e.g. '+1%', '-0.5%'",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := parseDelta(args[0])
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), changeOp{Delta: delta})
			return err
		},
	}

	muteCmd = &cobra.Command{
		Use:       "mute {on|off|toggle}",
		Short:     "mute, unmute or toggle the default output",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off", "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			transition, err := parseMuteTransition(args[0])
			if err != nil {
				return err
			}
			_, err = execute(cmd.Context(), muteOp{Transition: transition})
			return err
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "print current volume and mute state as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := execute(cmd.Context(), queryOp{})
			if err != nil {
				return err
			}
			line, err := st.render()
			if err != nil {
				return err
			}
			fmt.Println(line)
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&argConfigPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/pwvolume/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&argLogLevel, "log-level", "", "log level: error, warn, info, debug")
	rootCmd.PersistentFlags().StringVar(&argRemote, "remote", "", "name of a non-default PipeWire instance to target")
	rootCmd.PersistentFlags().IntVar(&argTimeoutMS, "timeout", 0, "per-stage timeout in milliseconds")

	rootCmd.AddCommand(changeCmd, muteCmd, statusCmd)
}

// execute loads configuration, applies flag overrides and runs the
// operation with a fresh server session.
func execute(ctx context.Context, op operation) (*Status, error) {
	cfg, err := LoadConfig(argConfigPath)
	if err != nil {
		return nil, err
	}
	if argLogLevel != "" {
		cfg.Logging.Level = argLogLevel
	}
	if argRemote != "" {
		cfg.Tools.Remote = argRemote
	}
	if argTimeoutMS > 0 {
		cfg.Timeouts.StageMS = argTimeoutMS
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	return runOperation(ctx, cfg, op, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errTimeout) {
			fmt.Fprintln(os.Stderr, "note: the server did not confirm in time; re-run 'pwvolume status' to inspect the actual state")
		}
		os.Exit(1)
	}
}
