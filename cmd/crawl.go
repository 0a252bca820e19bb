package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mediaharvest/mediaharvest/internal/pipeline"
)

func newCrawlCmd() *cobra.Command {
	var (
		siteName    string
		pages       string
		incremental bool
	)

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Walk forum listing pages and process new threads",
		Long: `crawl enumerates the listing pages of a forum site, queues every thread
URL it has not seen, then visits each queued thread to extract the
release details. Without --page it probes the last listing page and
walks everything newest-first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd)
			if err != nil {
				return err
			}

			mode := pipeline.ModeEnumeratePages
			if incremental {
				mode = pipeline.ModeIncremental
			}
			_, err = runSite(cmd.Context(), app, siteName, mode, pipeline.Params{Pages: pages})
			return err
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site config name under the config dir")
	cmd.Flags().StringVar(&pages, "page", "", `listing pages to walk, e.g. "3" or "1-5,8"`)
	cmd.Flags().BoolVar(&incremental, "incremental", false, "walk only the first listing page")
	_ = cmd.MarkFlagRequired("site")
	cmd.MarkFlagsMutuallyExclusive("page", "incremental")
	return cmd
}
