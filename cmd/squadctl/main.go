// Command squadctl allocates rosters locally and exercises a running squad
// service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/okian/squad/internal/config"
	"github.com/okian/squad/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel   string
	configPath string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "squadctl",
		Short:         "Allocate event rosters into teams",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if opts.noColor {
				color.NoColor = true
			}
			if err := logger.InitWithOptions(logger.Options{Writer: cmd.ErrOrStderr()}); err != nil {
				return err
			}
			return logger.SetLevelString(opts.logLevel)
		},
	}
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "YAML config file (default $"+config.EnvConfigFile+")")
	cmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable coloured output")

	cmd.AddCommand(
		newAllocateCmd(opts),
		newGenerateCmd(),
		newLoadCmd(opts),
	)
	return cmd
}

// loadConfig layers the --config file over the usual config sources.
func (o *rootOptions) loadConfig(ctx context.Context) (*config.Config, error) {
	if o.configPath != "" {
		if err := os.Setenv(config.EnvConfigFile, o.configPath); err != nil {
			return nil, err
		}
	}
	return config.Load(ctx)
}
