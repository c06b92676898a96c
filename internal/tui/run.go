package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat UI and blocks until the user quits.
func Run(ctx context.Context, asker Asker, opts ...Option) error {
	p := tea.NewProgram(
		New(ctx, asker, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
