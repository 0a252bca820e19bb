package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mediaharvest/mediaharvest/internal/pipeline"
)

func newProcessCmd() *cobra.Command {
	var (
		siteName    string
		retryFailed bool
	)

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process queued thread URLs without a listing pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd)
			if err != nil {
				return err
			}

			prefix := "process"
			if retryFailed {
				prefix = string(pipeline.ModeRetryFailed)
			}
			_, err = withRunner(app, siteName, prefix, func(r *pipeline.Runner) (pipeline.Summary, error) {
				return r.ProcessPending(cmd.Context(), retryFailed)
			})
			return err
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site config name under the config dir")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "re-process records that failed before instead of new ones")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}
