package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"formulate/cmd/formulate/editor"
	"formulate/cmd/formulate/ui"
	"formulate/internal/logging"
	"formulate/internal/resolver"

	tea "github.com/charmbracelet/bubbletea"
)

// runEditor starts the interactive editor.
func runEditor(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader, cleanup, err := buildLoader(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	model := editor.New(editor.Options{
		Context:        ctx,
		Loader:         loader,
		Resolver:       resolver.New(resolver.WithLogger(logging.For(logger, logging.CategoryResolver))),
		Styles:         ui.NewStyles(ui.DetectTheme(cfg.UI.DarkMode)),
		MaxSuggestions: cfg.UI.MaxSuggestions,
		Width:          cfg.UI.Width,
		Logger:         logger,
	})

	opts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}
	if cfg.UI.Mouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	_, err = tea.NewProgram(model, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
