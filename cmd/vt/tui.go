package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/voltable/pkg/model"
	"github.com/vanderheijden86/voltable/pkg/ui"
)

var flagWatch bool

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse opportunities in an interactive table (default)",
	Long: `Open the interactive table. Press ? for keys.

When stdout is not a terminal the table is printed as with "vt list".`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().BoolVar(&flagWatch, "watch", false, "reload when the CSV file changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		logger.Debug("stdout is not a terminal, printing the table")
		return runList(cmd, args)
	}
	// The alt screen owns the terminal; logs go to --log-file or nowhere.
	if flagLogFile == "" {
		setLogger(slog.New(slog.DiscardHandler))
	}

	source, ds, loadErr := loadDataset(cmd.Context())
	recipes, err := loadRecipes()
	if err != nil {
		return err
	}
	cols := model.VolunteerColumns().Resolve(ds.Columns())
	flags := currentStateFlags()
	state, err := buildState(cols, recipes, flags)
	if err != nil {
		return err
	}

	m := ui.NewModel(ds, ui.Options{
		Title:      cfg.Title,
		Source:     source,
		State:      state,
		Recipes:    recipes.List(),
		RecipeName: flags.recipe,
		LoadErr:    loadErr,
		Logger:     logger,
	})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(cmd.Context()),
	)

	if flagWatch && source != "" {
		w, err := ui.NewBackgroundWorker(ui.WorkerConfig{Source: source, Logger: logger})
		if err != nil {
			return sysErr(fmt.Errorf("watch %s: %w", source, err))
		}
		w.SetProgram(p)
		if err := w.Start(); err != nil {
			return sysErr(fmt.Errorf("watch %s: %w", source, err))
		}
		defer w.Stop()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && cmd.Context().Err() != nil {
			return nil
		}
		return sysErr(fmt.Errorf("run table: %w", err))
	}
	return nil
}
