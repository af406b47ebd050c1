package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/squad/internal/adapters/export"
	"github.com/okian/squad/internal/domain/allocation"
	"github.com/okian/squad/internal/domain/model"
	"github.com/okian/squad/pkg/logger"
)

type allocateOptions struct {
	file        string
	format      string
	out         string
	consolidate bool
}

func newAllocateCmd(root *rootOptions) *cobra.Command {
	opts := &allocateOptions{}
	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate a roster file into teams",
		Long: `Reads a YAML or JSON roster (a list of signups, or a document with a
"signups" list), runs the allocation engine locally and prints the teams.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := root.loadConfig(ctx)
			if err != nil {
				return err
			}
			format, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			roster, err := readRoster(opts.file, cmd.InOrStdin())
			if err != nil {
				return err
			}

			pol := cfg.AllocationPolicy()
			if cmd.Flags().Changed("consolidate") {
				pol.ConsolidateUnderSupervised = opts.consolidate
			}
			engine, err := allocation.New(
				allocation.WithPolicy(pol),
				allocation.WithLogger(logger.Get().Named("allocation")),
			)
			if err != nil {
				return err
			}

			res, err := engine.Allocate(ctx, roster)
			if err != nil {
				printInfeasible(cmd.ErrOrStderr(), err)
				return err
			}

			w := cmd.OutOrStdout()
			if opts.out != "" {
				name := opts.out
				if name == "-" {
					name = export.FileName(time.Now(), format)
				}
				f, err := os.Create(name)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer func() { _ = f.Close() }()
				w = f
				fmt.Fprintln(cmd.ErrOrStderr(), color.GreenString("wrote"), name)
				return export.Render(w, res, format)
			}

			if err := export.Render(w, res, format, export.WithDecorator(tierColour)); err != nil {
				return err
			}
			if len(res.Degraded) > 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), color.YellowString("unreadable records classified as novice:"), res.Degraded)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "-", "roster file, - for stdin")
	cmd.Flags().StringVar(&opts.format, "format", "text", "text, json or yaml")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "write to a file instead of stdout, - for a timestamped name")
	cmd.Flags().BoolVar(&opts.consolidate, "consolidate", false, "shrink the team count to the number of supervisors")
	return cmd
}

// readRoster decodes a list of signups or a {signups: [...]} document.
// JSON input is read by the YAML decoder.
func readRoster(path string, stdin io.Reader) ([]model.Signup, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var list []model.Signup
	if err := yaml.Unmarshal(data, &list); err == nil {
		return list, nil
	}
	var doc struct {
		Signups []model.Signup `yaml:"signups"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	return doc.Signups, nil
}

var tierColours = map[model.Tier]*color.Color{
	model.Supervisor:     color.New(color.FgMagenta, color.Bold),
	model.Expert:         color.New(color.FgBlue),
	model.Competent:      color.New(color.FgCyan),
	model.NoviceAssisted: color.New(color.FgYellow),
	model.Novice:         color.New(color.FgGreen),
}

func tierColour(p model.Participant, line string) string {
	c, ok := tierColours[p.Tier]
	if !ok {
		return line
	}
	return line + " " + c.Sprint("["+p.Tier.String()+"]")
}

func printInfeasible(w io.Writer, err error) {
	var inf *allocation.InfeasibleError
	if !errors.As(err, &inf) {
		return
	}
	fmt.Fprintln(w, color.RedString("no valid allocation:"), inf.Invariant)
	for _, v := range inf.Violations {
		fmt.Fprintln(w, "  -", v.Error())
	}
}
