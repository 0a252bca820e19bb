// Package cmd implements the mediaharvest command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/logging"
	"github.com/mediaharvest/mediaharvest/internal/metrics"
)

type ctxKey int

const appKey ctxKey = iota

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "mediaharvest",
		Short: "Scrape media release sites into per-site databases",
		Long: `mediaharvest walks listing pages of configured sites, extracts release
metadata into a per-site SQLite database, and serves the collected
records over HTTP. Sites are described by YAML files in the config
directory; process settings come from MEDIAHARVEST_* environment
variables or flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("data-dir", "", "directory holding the per-site databases")
	root.PersistentFlags().String("config-dir", "", "directory holding the per-site YAML configs")
	root.PersistentFlags().String("logs-dir", "", "directory for per-run log files")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("data_dir", root.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("config_dir", root.PersistentFlags().Lookup("config-dir"))
	_ = viper.BindPFlag("logs_dir", root.PersistentFlags().Lookup("logs-dir"))
	_ = viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		app, err := config.LoadApp(viper.GetViper())
		if err != nil {
			return err
		}
		logging.InitLogger(app.LogLevel, app.Development)
		metrics.Init()
		cmd.SetContext(context.WithValue(cmd.Context(), appKey, app))
		return nil
	}

	root.AddCommand(
		newCrawlCmd(),
		newProcessCmd(),
		newScrapeCmd(),
		newRetagCmd(),
		newServeCmd(),
	)
	return root
}

// resolveApp retrieves the process config injected by PersistentPreRunE.
func resolveApp(cmd *cobra.Command) (config.App, error) {
	app, ok := cmd.Context().Value(appKey).(config.App)
	if !ok {
		return config.App{}, fmt.Errorf("app config missing from command context")
	}
	return app, nil
}

// Execute runs the root command. Interrupt and SIGTERM cancel the command
// context so in-flight runs stop at the next page boundary.
func Execute() {
	config.InitApp(viper.GetViper())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logging.L.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
