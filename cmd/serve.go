package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mediaharvest/mediaharvest/internal/api"
	"github.com/mediaharvest/mediaharvest/internal/clock/system"
	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/logging"
	"github.com/mediaharvest/mediaharvest/internal/pipeline"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the records API and Prometheus metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd)
			if err != nil {
				return err
			}
			log := logging.L

			opener := func(name string) (*store.Store, error) {
				site, err := config.LoadSite(app.ConfigDir, name)
				if err != nil {
					return nil, err
				}
				return store.Open(site.DatabasePath(app.DataDir), system.New(), log.With(zap.String("site", name)))
			}
			runs := api.NewRunManager(func(ctx context.Context, siteName string, mode pipeline.Mode, params pipeline.Params) (pipeline.Summary, error) {
				return runSite(ctx, app, siteName, mode, params)
			}, log)

			srv := api.NewServer(opener, runs, log)
			defer srv.Close()

			httpSrv := &http.Server{
				Addr:              app.Listen,
				Handler:           srv.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				errCh <- httpSrv.ListenAndServe()
			}()
			log.Info("api server listening", zap.String("addr", app.Listen))

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		},
	}
	return cmd
}
