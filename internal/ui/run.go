package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"manimark/internal/model"
	"manimark/internal/pipeline"
)

// Run shows the TUI while the pipeline built from svcOpts runs, and returns
// the pipeline's result. Quitting early cancels the run.
func Run(ctx context.Context, opts model.Options, svcOpts ...pipeline.Option) (pipeline.Result, error) {
	m := NewModel(ctx, opts, svcOpts...)
	defer m.cancel()

	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil {
		return pipeline.Result{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return pipeline.Result{}, nil
	}
	return fm.result, fm.err
}
