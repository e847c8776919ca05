// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the polychat TUI.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - assistant messages and selections
  - Cyan - brand color, user highlights
  - Emerald - success states, local backend
  - Amber - warnings, cloud backend
  - Sky - generative backend
  - Rose - errors

ProviderColor maps a backend to its accent so the header, the status bar
and message labels agree.

# Theme (theme.go)

Theme bundles the lipgloss styles used by the chat view. NewTheme detects
the terminal color profile with termenv; NewThemeWithProfile pins one,
which tests use to get stable output.
*/
package styles
