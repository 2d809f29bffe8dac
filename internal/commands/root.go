// Package commands implements the bcra CLI command tree.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bcra-go/bcra/internal/config"
	"github.com/bcra-go/bcra/pkg/bcra"
)

// options carries the persistent flags shared by every subcommand.
type options struct {
	configPath string
	verbose    bool
	jsonOut    bool
}

// NewRootCommand creates the root cobra command for the bcra CLI.
func NewRootCommand(version string) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "bcra",
		Short: "bcra - client for the BCRA statistics API",
		Long: `bcra is a command-line client for the statistics API published by the
BCRA (Banco Central de la República Argentina): monetary series,
reported checks, and exchange rates.

Requests are paced by a client-side rate limiter and transient failures
are retried automatically with exponential backoff.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config file (YAML)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")

	cmd.AddCommand(
		newVariablesCommand(opts),
		newSeriesCommand(opts),
		newChecksCommand(opts),
		newRatesCommand(opts),
		newCurrenciesCommand(opts),
		newVersionCommand(version),
	)

	return cmd
}

// client builds a configured API client for one command invocation.
func (o *options) client() (*bcra.Client, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel()
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}
	clientCfg.Logger = logger

	return bcra.New(clientCfg)
}

// print writes v as JSON when --json is set, otherwise renders the
// tab-separated table produced by render.
func (o *options) print(w io.Writer, v any, render func(tw *tabwriter.Writer)) error {
	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	render(tw)
	return tw.Flush()
}

func fmtValue(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
