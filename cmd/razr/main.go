package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	generate "github.com/walteh/go-razr/cmd/razr/generate"
	get_diagnostics "github.com/walteh/go-razr/cmd/razr/get-diagnostics"
	"github.com/walteh/go-razr/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run() error {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "razr",
		Short: "A compiler for razr templates",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger, err := logging.NewConsoleLogger(os.Stderr, logLevel, isatty.IsTerminal(os.Stderr.Fd()))
		if err != nil {
			return err
		}
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	}

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			cmdz.Println(rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)
	rootCmd.AddCommand(generate.NewGenerateCommand())
	rootCmd.AddCommand(get_diagnostics.NewGetDiagnosticsCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}
