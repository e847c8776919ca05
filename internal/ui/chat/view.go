// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/ui/styles"
	"github.com/jeranaias/polychat/internal/util"
)

func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderNotice(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// HEADER AND STATUS BAR
// =============================================================================

func (m Model) renderHeader() string {
	s := m.mgr.Settings()
	sep := m.theme.HeaderMeta.Render(" | ")

	parts := []string{
		m.theme.HeaderTitle.Render("polychat"),
		m.theme.ProviderBadge(s.Provider),
	}
	if s.Provider == model.ProviderCloud {
		info := s.CloudModelInfo()
		parts = append(parts, m.theme.HeaderMeta.Render(info.Name+" ("+info.ContextString()+")"))
	}
	parts = append(parts, m.theme.HeaderMeta.Render(m.mgr.ConversationID()))

	line := strings.Join(parts, sep)
	return m.theme.Header.Width(m.width).MaxHeight(1).Render(line)
}

// statusText is the plain status line before styling.
func (m Model) statusText() string {
	s := m.mgr.Settings()
	fields := []string{
		fmt.Sprintf("temp %.2f", s.Temperature),
		fmt.Sprintf("max %d", s.MaxTokens),
		fmt.Sprintf("top-p %.2f", s.TopP),
		fmt.Sprintf("freq %.1f", s.FrequencyPenalty),
		fmt.Sprintf("pres %.1f", s.PresencePenalty),
		fmt.Sprintf("%d msgs", m.mgr.Len()),
	}
	if m.lastLatency > 0 {
		fields = append(fields, "last "+m.lastLatency.Round(10*time.Millisecond).String())
	}

	var keys []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		keys = append(keys, h.Key+" "+h.Desc)
	}
	return strings.Join(fields, " · ") + "   " + strings.Join(keys, " · ")
}

func (m Model) renderStatusBar() string {
	// Padding(0, 1) takes two columns.
	text := util.TruncateWidth(m.statusText(), max(m.width-2, 10))
	return m.theme.StatusBar.Width(m.width).Render(text)
}

func (m Model) renderNotice() string {
	if m.notice == "" {
		return ""
	}
	text := util.TruncateWidth(m.notice, max(m.width-2, 10))
	if m.noticeIsErr {
		return " " + m.theme.Error.Render(text)
	}
	return " " + m.theme.Notice.Render(text)
}

func (m Model) renderInput() string {
	return m.theme.InputContainer.Width(max(m.width-2, 10)).Render(m.input.View())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// renderTranscript renders every message, the loading line and the
// command panel.
func (m *Model) renderTranscript() string {
	msgs := m.mgr.Snapshot()

	var sb strings.Builder
	if len(msgs) == 0 && m.panel == "" && !m.mgr.Loading() {
		sb.WriteString(m.renderWelcome())
	}

	for i, msg := range msgs {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(m.renderMessage(msg))
		sb.WriteString("\n")
	}

	if m.mgr.Loading() {
		sb.WriteString("\n")
		sb.WriteString(m.spinner.View())
		sb.WriteString(" ")
		sb.WriteString(m.theme.ThinkingText.Render("Waiting for " + m.waitingFor.DisplayName() + "..."))
		sb.WriteString("\n")
	}

	if m.panel != "" {
		sb.WriteString("\n")
		sb.WriteString(m.theme.Notice.Render(m.panel))
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderWelcome() string {
	return m.theme.Notice.Render(
		"Ask anything. The reply comes from the backend shown in the header.\n" +
			"Type /provider to switch backends, /help for all commands.\n")
}

func (m *Model) renderMessage(msg model.Message) string {
	var label string
	if msg.IsUser() {
		label = m.theme.UserLabel.Render("You")
	} else {
		label = m.theme.AssistantLabel.Foreground(styles.ProviderColor(msg.Provider)).
			Render(msg.Provider.DisplayName())
	}
	if m.showTimestamps {
		label += " " + m.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	}

	return label + "\n" + m.renderBody(msg)
}

// renderBody renders message content, caching markdown output per message.
func (m *Model) renderBody(msg model.Message) string {
	if msg.IsUser() || m.renderer == nil {
		width := max(m.width-4, 20)
		style := m.theme.AssistantText
		if msg.IsUser() {
			style = m.theme.UserText
		}
		return style.Width(width).Render(msg.Content)
	}

	if body, ok := m.rendered[msg.ID]; ok {
		return body
	}
	body, err := m.renderer.Render(msg.Content)
	if err != nil {
		body = m.theme.AssistantText.Render(msg.Content)
	}
	body = strings.TrimRight(body, "\n")
	m.rendered[msg.ID] = body
	return body
}
