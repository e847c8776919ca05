// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/polychat/internal/config"
)

// RunOptions configures Run.
type RunOptions struct {
	Options

	// WatchPath is a config file to reload on change; empty disables it
	WatchPath string

	// Debounce is the reload debounce window (default: 250ms)
	Debounce time.Duration
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Context == nil {
		opts.Context = ctx
	}
	m := New(opts.Options)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.WatchPath != "" {
		w, err := config.NewWatcher(opts.WatchPath, opts.Debounce, func(cfg *config.Config, err error) {
			if err != nil {
				p.Send(SettingsReloadedMsg{Err: err})
				return
			}
			p.Send(SettingsReloadedMsg{Settings: cfg.Settings()})
		})
		if err != nil {
			m.log.Warn().Err(err).Str("path", opts.WatchPath).Msg("config watcher not started")
		} else {
			defer w.Close()
		}
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
