// Package main is the entry point for the trade journal daemon and CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"trade-journal/internal/app"
	"trade-journal/internal/config"
	"trade-journal/internal/engine"
	"trade-journal/internal/instrument"
	"trade-journal/internal/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "journald",
		Short: "Trade journal evaluation engine",
		Long: `journald scores logged trades against risk-discipline rules and
aggregates them into session verdicts. Run "journald serve" for the HTTP API
or evaluate JSON files directly from the command line.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to configuration file (defaults to $"+config.EnvConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override app.logLevel")

	rootCmd.AddCommand(serveCmd(opts))
	rootCmd.AddCommand(evaluateCmd(opts))
	rootCmd.AddCommand(sessionCmd(opts))
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func (o *rootOptions) load() (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	return cfg, nil
}

// cliEngine builds an engine that logs to stderr only.
func (o *rootOptions) cliEngine(cmd *cobra.Command) (*engine.Engine, *zap.Logger, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.Build(logging.Options{Level: cfg.App.LogLevel, Console: cmd.ErrOrStderr()})
	if err != nil {
		return nil, nil, err
	}
	registry := instrument.NewRegistry(cfg.Instruments...)
	eng := engine.New(cfg.EvaluationConfig(), instrument.NewCalculator(registry), nil)
	eng.SetLogger(log)
	return eng, log, nil
}

func serveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and WebSocket feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return app.New(cfg).Run()
		},
	}
}

func evaluateCmd(opts *rootOptions) *cobra.Command {
	var enrich bool
	cmd := &cobra.Command{
		Use:   "evaluate [file]",
		Short: "Evaluate a single trade read from a JSON file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			eng, log, err := opts.cliEngine(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			if enrich {
				entry, err := eng.LogTradeJSON("cli", data)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), entry)
			}
			ev, err := eng.EvaluateTradeJSON(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), ev)
		},
	}
	cmd.Flags().BoolVar(&enrich, "enrich", false, "derive missing pnl, rrRatio and riskPercent from instrument data first")
	return cmd
}

func sessionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session [file]",
		Short: "Evaluate a JSON array of trades read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			eng, log, err := opts.cliEngine(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			s, err := eng.EvaluateSessionJSON(data)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "journald v%s\n", app.Version)
		},
	}
}

func readInput(cmd *cobra.Command, args []string) (json.RawMessage, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
