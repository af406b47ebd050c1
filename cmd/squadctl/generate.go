package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/internal/rostergen"
)

type generateOptions struct {
	count     int
	seed      uint64
	format    string
	out       string
	mix       rostergen.Mix
	gear      float64
	rare      float64
	malformed float64
}

func newGenerateCmd() *cobra.Command {
	opts := &generateOptions{mix: rostergen.DefaultMix()}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Emit a synthetic roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.count < 0 {
				return fmt.Errorf("-n must not be negative")
			}
			g, err := rostergen.New(
				rostergen.WithSeed(opts.seed),
				rostergen.WithMix(opts.mix),
				rostergen.WithGearRate(opts.gear),
				rostergen.WithRareTrainingRate(opts.rare),
				rostergen.WithMalformedRate(opts.malformed),
			)
			if err != nil {
				return err
			}
			roster := g.Generate(opts.count)

			w := cmd.OutOrStdout()
			if opts.out != "" {
				f, err := os.Create(opts.out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			return writeRoster(w, roster, opts.format)
		},
	}
	f := cmd.Flags()
	f.IntVarP(&opts.count, "count", "n", 20, "number of signups")
	f.Uint64Var(&opts.seed, "seed", 1, "random seed; the same seed yields the same roster")
	f.StringVar(&opts.format, "format", "yaml", "yaml or json")
	f.StringVarP(&opts.out, "out", "o", "", "write to a file instead of stdout")
	f.Float64Var(&opts.mix.Supervisor, "supervisors", opts.mix.Supervisor, "weight of supervisors")
	f.Float64Var(&opts.mix.Expert, "experts", opts.mix.Expert, "weight of experts")
	f.Float64Var(&opts.mix.Competent, "competent", opts.mix.Competent, "weight of competent members")
	f.Float64Var(&opts.mix.Assisted, "assisted", opts.mix.Assisted, "weight of novice-assisted members")
	f.Float64Var(&opts.mix.Novice, "novices", opts.mix.Novice, "weight of novices")
	f.Float64Var(&opts.gear, "gear-rate", 0.5, "share owning specialist gear")
	f.Float64Var(&opts.rare, "rare-rate", 0.1, "share asking for rare-item training")
	f.Float64Var(&opts.malformed, "malformed-rate", 0, "share with an unreadable kill count")
	return cmd
}

func writeRoster(w io.Writer, roster []model.Signup, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string][]model.Signup{"signups": roster}); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(roster)
	}
	return fmt.Errorf("unknown roster format %q", format)
}
