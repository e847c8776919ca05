// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// isTerminal reports whether v is an *os.File attached to a terminal.
// Commands receive their streams from cobra, so tests can pass buffers.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// =============================================================================
// TERMINAL WIDTH DETECTION
// =============================================================================

const (
	// DefaultTerminalWidth is the fallback width when detection fails
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width we'll use for wrapping
	MinTerminalWidth = 40
)

// terminalWidth returns the width of v when it is a terminal, otherwise
// DefaultTerminalWidth.
func terminalWidth(v any) int {
	f, ok := v.(*os.File)
	if !ok {
		return DefaultTerminalWidth
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// =============================================================================
// COLOR OUTPUT CONTROL
// =============================================================================

// colorsEnabled reports whether styled output should be written to v.
// NO_COLOR disables colors and FORCE_COLOR enables them regardless of TTY.
// See https://no-color.org/.
func colorsEnabled(v any) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	return isTerminal(v)
}

// colorProfile returns the termenv profile to render with for v.
func colorProfile(v any) termenv.Profile {
	if !colorsEnabled(v) {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
