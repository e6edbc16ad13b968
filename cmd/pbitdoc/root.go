package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvillar/pbitdoc/internal/config"
)

var (
	version = "dev"
	commit  = "none"
)

// app carries the state shared by the subcommands once the root command has
// loaded the configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	envFile string
	stderr  io.Writer
}

func execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:           "pbitdoc",
		Short:         "Power BI template documentation generator",
		Long:          "Renders the data model of a Power BI template (.pbit) into a PDF with an index, table details, an ERD diagram and a relationship summary.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.envFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			a.cfg = cfg
			a.stderr = cmd.ErrOrStderr()
			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "optional .env file to load before reading the environment")

	rootCmd.AddCommand(
		newRenderCmd(a),
		newInspectCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

// jsonLogger replaces the CLI text logger for long-running commands.
func (a *app) jsonLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{Level: a.cfg.SlogLevel()}))
}
