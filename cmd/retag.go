package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mediaharvest/mediaharvest/internal/pipeline"
)

func newRetagCmd() *cobra.Command {
	var siteName string

	cmd := &cobra.Command{
		Use:   "retag",
		Short: "Re-classify tags for every stored record",
		Long: `retag replaces the tag set of every record in the site database using
the tag_rules from the site config. Run it after changing the rules; it
touches no other fields.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := resolveApp(cmd)
			if err != nil {
				return err
			}
			_, err = runSite(cmd.Context(), app, siteName, pipeline.ModeRetag, pipeline.Params{})
			return err
		},
	}

	cmd.Flags().StringVar(&siteName, "site", "", "site config name under the config dir")
	_ = cmd.MarkFlagRequired("site")
	return cmd
}
