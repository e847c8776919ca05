// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/polychat/internal/model"
)

// Theme holds the styled components of the chat view.
type Theme struct {
	ColorProfile termenv.Profile

	Width  int
	Height int

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderMeta  lipgloss.Style

	UserLabel      lipgloss.Style
	UserText       lipgloss.Style
	AssistantLabel lipgloss.Style
	AssistantText  lipgloss.Style
	Timestamp      lipgloss.Style

	Notice lipgloss.Style
	Error  lipgloss.Style

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	StatusBar    lipgloss.Style
	ShortcutKey  lipgloss.Style
	ShortcutDesc lipgloss.Style

	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style

	TableHeader lipgloss.Style
	TableCell   lipgloss.Style
}

// NewTheme creates a theme for the detected terminal color profile.
func NewTheme() *Theme {
	return NewThemeWithProfile(termenv.ColorProfile())
}

// NewThemeWithProfile creates a theme for a fixed color profile.
func NewThemeWithProfile(profile termenv.Profile) *Theme {
	t := &Theme{ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		Background(SurfaceDim).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Purple)

	t.HeaderMeta = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(UserBubbleBorder)

	t.UserText = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		PaddingLeft(2)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(AssistantBubbleBorder)

	t.AssistantText = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg).
		PaddingLeft(2)

	t.Timestamp = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Notice = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.Error = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Background(SurfaceDim).
		Padding(0, 1)

	t.ShortcutKey = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)

	t.ShortcutDesc = lipgloss.NewStyle().
		Foreground(TextMuted)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Purple)

	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)

	t.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(TextPrimary).
		PaddingRight(2)

	t.TableCell = lipgloss.NewStyle().
		Foreground(TextSecondary).
		PaddingRight(2)
}

// ProviderBadge renders a backend name in its accent color.
func (t *Theme) ProviderBadge(id model.ProviderID) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(ProviderColor(id)).
		Render(id.DisplayName())
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
