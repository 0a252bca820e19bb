package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mediaharvest/mediaharvest/internal/pipeline"
)

func newScrapeCmd() *cobra.Command {
	var (
		siteName  string
		date      string
		tag       string
		search    string
		startPage int
		endPage   string
	)

	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape a single-pass listing site by date, tag, or search",
		Long: `scrape walks the listing pages of a single-pass site in one go. Card
sites take --date (a day or a whole month, default yesterday) or --tag;
row sites take --search and walk the index until the results dry up or
turn into known records.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd)
			if err != nil {
				return err
			}

			mode := pipeline.ModeDate
			switch {
			case tag != "":
				mode = pipeline.ModeTag
			case cmd.Flags().Changed("search"):
				mode = pipeline.ModeSearch
			}
			params := pipeline.Params{
				Date:      date,
				Tag:       tag,
				Search:    search,
				StartPage: startPage,
				EndPage:   endPage,
			}
			_, err = runSite(cmd.Context(), app, siteName, mode, params)
			return err
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site config name under the config dir")
	cmd.Flags().StringVar(&date, "date", "", "day (2025-09-08) or month (2025-09) to scrape, default yesterday")
	cmd.Flags().StringVar(&tag, "tag", "", "tag path to scrape instead of a date")
	cmd.Flags().StringVar(&search, "search", "", "search query for row sites, empty walks the whole index")
	cmd.Flags().IntVar(&startPage, "start-page", 0, "first listing page, default 1")
	cmd.Flags().StringVar(&endPage, "end-page", "", `last listing page, or "auto" for unbounded`)
	_ = cmd.MarkFlagRequired("site")
	cmd.MarkFlagsMutuallyExclusive("date", "tag", "search")
	return cmd
}
