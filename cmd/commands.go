package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/behavmetrix/internal/adapters/repository"
	service "github.com/okian/behavmetrix/internal/app"
	"github.com/okian/behavmetrix/internal/config"
	"github.com/okian/behavmetrix/internal/domain/analysis"
	"github.com/okian/behavmetrix/pkg/logger"
	"github.com/okian/behavmetrix/pkg/metrics"
)

// Set at build time with -ldflags "-X main.version=...".
var version = "dev"

const metricsJob = "behavmetrix"

// options are the command-line overrides shared by every subcommand.
type options struct {
	configFile string
	source     string
	path       string
	logLevel   string
	windowDays int
	workers    int

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "behavmetrix",
		Short: "Dominance ranking and behavioral analytics for observed colonies",
		Long: `behavmetrix reads a colony's behavior log, stress and enrichment samples
from a SQLite database or a JSON snapshot document, ranks individuals by Elo
rating and David's Score, and reports colony statistics and welfare alerts
as JSON on stdout. Logs go to stderr.

Configuration is layered: defaults, then the YAML file named by --config or
BEHAVMETRIX_CONFIG, then BEHAVMETRIX_* environment variables, then flags.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: o.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configFile, "config", "c", "", "YAML config file")
	pf.StringVar(&o.source, "source", "", "snapshot source: sqlite or json")
	pf.StringVar(&o.path, "path", "", "SQLite database or JSON document path")
	pf.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	pf.IntVar(&o.windowDays, "window-days", 0, "only read the last N days of observations")

	root.AddCommand(
		newAnalyzeCmd(o),
		newBatchCmd(o),
		newColoniesCmd(o),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration, applies flag overrides and initializes logging.
func (o *options) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	if o.configFile != "" {
		if err := os.Setenv(config.EnvFile, o.configFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Source = o.source
	}
	if flags.Changed("path") {
		cfg.SourcePath = o.path
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("window-days") {
		cfg.WindowDays = o.windowDays
	}
	if flags.Changed("workers") {
		cfg.WorkerCount = o.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	metrics.Configure(cfg.MetricsOptions()...)

	if err := logger.Init(
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithLevel(cfg.LogLevel),
		logger.WithJSON(cfg.LogFormat == "json"),
	); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	o.cfg = cfg
	return nil
}

func (o *options) openSource(ctx context.Context) (repository.Source, error) {
	switch strings.ToLower(o.cfg.Source) {
	case config.SourceJSON:
		return repository.OpenJSON(ctx, o.cfg.SourcePath)
	default:
		return repository.OpenSQLite(ctx, o.cfg.SourcePath)
	}
}

func (o *options) window() repository.Window {
	return repository.Last(time.Now(), o.cfg.Window())
}

func (o *options) analyzer() (*service.Analyzer, error) {
	opts, err := service.ConfigOptions(o.cfg)
	if err != nil {
		return nil, err
	}
	return service.NewAnalyzer(opts...)
}

// exportMetrics hands the run's metrics to the configured sinks.
func (o *options) exportMetrics(ctx context.Context) {
	log := logger.Get()
	if path := o.cfg.MetricsTextfile; path != "" {
		if err := metrics.WriteTextfile(path, nil); err != nil {
			log.Warn(ctx, "metrics textfile not written", logger.String("path", path), logger.Error(err))
		}
	}
	if url := o.cfg.PushgatewayURL; url != "" {
		if err := metrics.Push(ctx, url, metricsJob, nil); err != nil {
			log.Warn(ctx, "metrics push failed", logger.String("url", url), logger.Error(err))
		}
	}
}

func newAnalyzeCmd(o *options) *cobra.Command {
	var colony string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one colony and print its report",
		Example: `  behavmetrix analyze --colony cage-7
  behavmetrix analyze --source json --path colonies.json --colony colony-01`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			src, err := o.openSource(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			if colony == "" {
				names, err := src.Colonies(ctx)
				if err != nil {
					return err
				}
				if len(names) != 1 {
					return fmt.Errorf("source holds %d colonies; pick one with --colony", len(names))
				}
				colony = names[0]
			}

			a, err := o.analyzer()
			if err != nil {
				return err
			}
			snap, err := service.LoadSnapshot(ctx, src, colony, o.window())
			if err != nil {
				return err
			}

			runCtx, cancel := withTimeout(ctx, o.cfg.AnalysisTimeout())
			defer cancel()
			rep, err := a.Analyze(runCtx, snap)
			o.exportMetrics(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&colony, "colony", "", "colony to analyze (optional when the source holds one)")
	return cmd
}

// batchResult is one line of batch output.
type batchResult struct {
	Colony string           `json:"colony"`
	JobID  string           `json:"job_id,omitempty"`
	Report *analysis.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func newBatchCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [colony...]",
		Short: "Analyze many colonies on the worker pool",
		Long: `Analyzes the named colonies, or every colony in the source when none are
named, one job per colony on a pool of workers. Reports are printed as a
JSON array ordered by colony; failed colonies carry an error instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := o.openSource(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			a, err := o.analyzer()
			if err != nil {
				return err
			}
			svc := service.New(a,
				service.WithWorkerCount(o.cfg.WorkerCount),
				service.WithQueueSize(o.cfg.QueueSize),
				service.WithJobTimeout(o.cfg.AnalysisTimeout()),
				service.WithLogger(logger.Named("service")),
			)
			if err := svc.Start(ctx); err != nil {
				return err
			}

			outcomes, runErr := svc.RunBatch(ctx, src, args, o.window())
			o.exportMetrics(ctx)

			results := make([]batchResult, 0, len(outcomes))
			failed := 0
			for _, oc := range outcomes {
				r := batchResult{Colony: oc.Job.Colony, JobID: oc.Job.ID, Report: oc.Report}
				if oc.Err != nil {
					r.Error = oc.Err.Error()
					failed++
				}
				results = append(results, r)
			}
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d colonies failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&o.workers, "workers", 0, "number of analysis workers")
	return cmd
}

func newColoniesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "colonies",
		Short: "List the colonies in the source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			src, err := o.openSource(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = src.Close() }()

			names, err := src.Colonies(ctx)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
