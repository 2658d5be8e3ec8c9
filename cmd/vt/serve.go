package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/voltable/pkg/export"
	"github.com/vanderheijden86/voltable/pkg/loader"
	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/watcher"
)

var (
	flagAddr       string
	flagServeWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the table as a web page",
	Long: `Serve the opportunities table over HTTP. Sorting, filters and search
live in the page's query string, so every view has its own URL.

With --watch, saving the CSV reloads open pages.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	serveCmd.Flags().BoolVar(&flagServeWatch, "watch", false, "reload open pages when the CSV file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source, ds, loadErr := loadDataset(ctx)

	srv := export.NewServer(ds, export.ServerOptions{
		Source:      source,
		Title:       cfg.Title,
		Description: cfg.Description,
		LoadErr:     loadErr,
		LiveReload:  flagServeWatch,
		Logger:      logger,
	})

	var w *watcher.Watcher
	if flagServeWatch && source != "" && !loader.IsURL(source) {
		var err error
		w, err = watcher.NewWatcher(source, watcher.WithLogger(logger))
		if err != nil {
			return sysErr(fmt.Errorf("watch %s: %w", source, err))
		}
	}

	// Recipe and flags pick the view the printed link opens on.
	url := "http://" + cfg.Addr + "/"
	recipes, err := loadRecipes()
	if err != nil {
		return err
	}
	state, err := buildState(model.VolunteerColumns().Resolve(ds.Columns()), recipes, currentStateFlags())
	if err != nil {
		return err
	}
	if q := export.EncodeQuery(state).Encode(); q != "" {
		url += "?" + q
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d opportunities at %s\n", ds.Len(), url)

	if err := srv.Serve(ctx, cfg.Addr, w); err != nil {
		return sysErr(err)
	}
	return nil
}
