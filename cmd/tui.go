package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/portage/internal/shared"
	"github.com/desertthunder/portage/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for running transfers.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/portage-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	store, err := r.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	model := ui.NewModel(ctx, store.jobs, store.engine, r.config)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
