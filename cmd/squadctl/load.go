package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/squad/internal/adapters/repository"
	"github.com/okian/squad/internal/rostergen"
)

type loadOptions struct {
	url     string
	count   int
	seed    uint64
	workers int
	timeout time.Duration
	clear   bool
}

func newLoadCmd(root *rootOptions) *cobra.Command {
	opts := &loadOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Submit a generated roster to a running service and verify the allocation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := root.loadConfig(ctx)
			if err != nil {
				return err
			}
			g, err := rostergen.New(
				rostergen.WithSeed(opts.seed),
				rostergen.WithThresholds(cfg.AllocationPolicy().Thresholds),
			)
			if err != nil {
				return err
			}

			rep, err := rostergen.Run(ctx, rostergen.Config{
				BaseURL:    opts.url,
				Workers:    opts.workers,
				Timeout:    opts.timeout,
				ClearFirst: opts.clear,
				Policy:     cfg.AllocationPolicy(),
			}, g.Generate(opts.count))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "submitted %d signups (%d rejected) in %s\n", rep.Submitted, rep.Failed, rep.Duration.Round(time.Millisecond))
			if rep.Status == repository.StatusFailed {
				fmt.Fprintf(out, "%s job %s: %s\n", color.YellowString("infeasible"), rep.JobID, rep.Failure.Message)
				return nil
			}
			fmt.Fprintf(out, "%s job %s: %d teams, %d repair moves, %d degraded records\n",
				color.GreenString("verified"), rep.JobID, rep.Teams, rep.RepairMoves, rep.Degraded)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.url, "url", "http://localhost:9080", "service base URL")
	f.IntVarP(&opts.count, "count", "n", 40, "number of signups")
	f.Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "random seed")
	f.IntVar(&opts.workers, "workers", 8, "concurrent submissions")
	f.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	f.BoolVar(&opts.clear, "clear", true, "clear the service roster first")
	return cmd
}
