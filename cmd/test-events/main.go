package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/behavmetrix/internal/testevents"
)

const defaultRunTimeout = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := testevents.DefaultConfig()
	var (
		end     string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "test-events",
		Short: "Generate synthetic colonies with a known dominance order",
		Long: `Generates colony snapshots whose dominance interactions are drawn from a
latent linear hierarchy, writes them as a JSON snapshot document readable by
"behavmetrix --source json", and optionally analyzes them to check that the
computed hierarchy recovers the latent order.`,
		Example: `  test-events --colonies 4 --individuals 20 --noise 0.15 --output colonies.json
  test-events --seed 7 --end 2026-05-01T00:00:00Z --verify`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if end != "" {
				t, err := time.Parse(time.RFC3339, end)
				if err != nil {
					return err
				}
				cfg.End = t
			}

			closer, err := testevents.SetupLogging(cfg.LogFile, cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			_, err = testevents.Run(ctx, cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Colonies, "colonies", cfg.Colonies, "number of colonies")
	f.IntVar(&cfg.Individuals, "individuals", cfg.Individuals, "roster size per colony")
	f.IntVar(&cfg.Interactions, "interactions", cfg.Interactions, "behavior records per colony")
	f.IntVar(&cfg.Days, "days", cfg.Days, "observation span in days")
	f.StringVar(&end, "end", "", "end of the observation span, RFC3339 (default now)")
	f.Float64Var(&cfg.Noise, "noise", cfg.Noise, "probability that an interaction contradicts the latent order")
	f.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	f.Float64Var(&cfg.NonDyadicShare, "non-dyadic", cfg.NonDyadicShare, "share of non-dominance records")
	f.Float64Var(&cfg.DuplicateRate, "duplicates", cfg.DuplicateRate, "probability of repeating a record row")
	f.IntVar(&cfg.EnrichmentEvery, "enrichment-every", cfg.EnrichmentEvery, "days between scheduled enrichment sessions")
	f.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent colony generators")
	f.StringVarP(&cfg.OutputFile, "output", "o", "", "output file (default generated_colonies_TIMESTAMP.json)")
	f.StringVar(&cfg.LogFile, "log", "", "log file (default generate_log_TIMESTAMP.log)")
	f.BoolVar(&cfg.Verify, "verify", false, "analyze the output and compare with the latent order")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable verbose logging")
	f.DurationVar(&timeout, "timeout", defaultRunTimeout, "overall run timeout")

	return cmd
}
