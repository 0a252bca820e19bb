package cmd

import (
	"context"

	"github.com/mediaharvest/mediaharvest/internal/clock/system"
	"github.com/mediaharvest/mediaharvest/internal/config"
	"github.com/mediaharvest/mediaharvest/internal/fetch"
	"github.com/mediaharvest/mediaharvest/internal/logging"
	"github.com/mediaharvest/mediaharvest/internal/pipeline"
	"github.com/mediaharvest/mediaharvest/internal/store"
)

// withRunner loads one site, opens its store and fetchers, and hands the
// assembled runner to fn. Everything is torn down before it returns, so a
// run leaves no browser or database handle behind.
func withRunner(app config.App, siteName, logPrefix string, fn func(*pipeline.Runner) (pipeline.Summary, error)) (pipeline.Summary, error) {
	site, err := config.LoadSite(app.ConfigDir, siteName)
	if err != nil {
		return pipeline.Summary{}, err
	}

	log, closeLog, err := logging.NewRunLogger(site.LogLevel, app.LogsDir, logPrefix, site.Name)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer closeLog()

	st, err := store.Open(site.DatabasePath(app.DataDir), system.New(), log)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer st.Close()

	browser, err := fetch.NewBrowser(fetch.BrowserConfig{
		UserAgent:    site.UserAgent,
		Referer:      site.BaseURL,
		RestartEvery: site.BrowserRestartEvery,
		EnterButton:  enterButton(site),
	}, log)
	if err != nil {
		return pipeline.Summary{}, err
	}
	defer browser.Close()

	httpFetcher := fetch.NewHTTP(fetch.HTTPConfig{
		UserAgent: site.UserAgent,
		Referer:   site.BaseURL,
	})

	runner := &pipeline.Runner{
		Site:       site,
		Store:      st,
		Browser:    browser,
		HTTP:       httpFetcher,
		Downloader: httpFetcher,
		Clock:      system.New(),
		Log:        log,
	}
	return fn(runner)
}

// runSite executes one run in the given mode. It backs both the CLI
// commands and the API run trigger.
func runSite(ctx context.Context, app config.App, siteName string, mode pipeline.Mode, params pipeline.Params) (pipeline.Summary, error) {
	return withRunner(app, siteName, string(mode), func(r *pipeline.Runner) (pipeline.Summary, error) {
		return r.RunOnce(ctx, mode, params)
	})
}

func enterButton(site config.Site) string {
	if sel := site.Selectors.ThreadDetail.EnterButton; sel != "" {
		return sel
	}
	return site.Selectors.ThreadList.EnterButton
}
