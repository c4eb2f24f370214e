// skirmish resolves duels between player characters and enemies.
//
// Usage:
//
//	skirmish list                                   - List characters, enemies and scripts
//	skirmish simulate --character aria --enemy goblin
//	                                                - Fight one encounter and print its report
//	skirmish bench --character aria --enemy goblin --runs 500
//	                                                - Simulate many duels without rewards
//	skirmish reset --character aria                 - Drop persisted progression
//
// Global flags:
//
//	--config <path>  - YAML configuration file (default: defaults and SKIRMISH_ env)
//	--seed <value>   - RNG seed for reproducible duels (0 = crypto/rand)
//	--report-mode    - paginate or truncate
//	--log-level      - debug, info, warn or error
//
// SIGINT or SIGTERM cancels a running bench between duels.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cory-johannsen/skirmish/internal/config"
	"github.com/cory-johannsen/skirmish/internal/observability"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type appKey struct{}

// newRootCmd builds the command tree. Each subcommand receives a fully wired
// app through its context.
func newRootCmd() *cobra.Command {
	var configPath string
	v := config.New()

	root := &cobra.Command{
		Use:           "skirmish",
		Short:         "Skirmish - resolve duels between characters and enemies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), v, configPath)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
				_ = a.logger.Sync()
				a.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to configuration file")
	flags.Uint64("seed", 0, "RNG seed (0 = crypto/rand)")
	flags.String("report-mode", "paginate", "Report mode when a report exceeds report.max_size: paginate or truncate")
	flags.String("log-level", "info", "Minimum log level: debug, info, warn, error")
	_ = v.BindPFlag("combat.seed", flags.Lookup("seed"))
	_ = v.BindPFlag("report.mode", flags.Lookup("report-mode"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))

	root.AddCommand(newListCmd(), newSimulateCmd(), newBenchCmd(), newResetCmd())
	return root
}

func bootstrap(ctx context.Context, v *viper.Viper, configPath string) (*app, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}
