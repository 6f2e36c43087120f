// Package cli implements the wastectl commands: offline chip queries and
// dataset inspection against the same source the web service reads.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"wastelookup/internal/collection"
	"wastelookup/internal/config"
	"wastelookup/internal/files"
	"wastelookup/internal/infrastructure"
	"wastelookup/internal/services"
)

// options are the persistent flags shared by every command.
type options struct {
	configFile string
	source     string
	sheet      string
	logLevel   string
	format     string
}

// NewRootCmd builds the command tree. Each call returns an independent
// tree, so tests can run commands side by side.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "wastectl",
		Short:         "Look up waste pickups by chip",
		Long:          "Query collected waste mass per chip from the pickup spreadsheet, without running the web service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       infrastructure.Version,
	}
	// Every run gets a trace ID so its log lines can be grouped.
	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(infrastructure.EnsureTraceID(ctx))
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default: $WASTE_CONFIG_FILE or config.yaml)")
	flags.StringVarP(&opts.source, "source", "s", "", "Data file, .xlsx or .csv (overrides config)")
	flags.StringVar(&opts.sheet, "sheet", "", "Workbook sheet (default: first sheet with data)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "Log level written to stderr")
	flags.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json or csv")

	root.AddCommand(newQueryCmd(opts), newInspectCmd(opts))
	return root
}

// loadConfig resolves configuration and applies flag overrides.
func (o *options) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFrom(o.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.source != "" {
		cfg.Data.Source = o.source
	}
	if o.sheet != "" {
		cfg.Data.Sheet = o.sheet
	}
	return cfg, nil
}

// openService builds a collection service for one command run.
func (o *options) openService(cmd *cobra.Command) (*services.CollectionService, *config.Config, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := infrastructure.NewLogger(cmd.ErrOrStderr(), o.logLevel).
		With(slog.String("command", cmd.Name()))
	path, err := files.NewDiscovery(logger).Resolve(cfg.Data.Source)
	if err != nil {
		return nil, nil, err
	}
	src, err := collection.OpenSource(path, cfg.Data.Sheet)
	if err != nil {
		return nil, nil, err
	}
	if err := files.ValidateFile(path); err != nil {
		return nil, nil, err
	}
	cfg.Data.Source = path

	svc := services.NewCollectionService(services.CollectionServiceConfig{
		Source:     src,
		Columns:    cfg.Data.Columns(),
		PricePerKg: cfg.Data.PricePerKg,
	}, logger)
	return svc, cfg, nil
}

func (o *options) validateFormat(allowed ...string) error {
	for _, f := range allowed {
		if o.format == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported format %q", o.format)
}
