// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/settings"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. args is the text after the
// command name, trimmed.
type CommandHandler func(m *Model, args string) tea.Cmd

type command struct {
	usage   string
	help    string
	handler CommandHandler
}

var commands map[string]command

// aliases map short names onto commands.
var aliases = map[string]string{
	"p":    "provider",
	"m":    "model",
	"t":    "temp",
	"h":    "help",
	"?":    "help",
	"q":    "quit",
	"exit": "quit",
}

func init() {
	commands = map[string]command{
		"provider":  {"/provider <cloud|local|generative>", "switch backend", handleProviderCommand},
		"model":     {"/model <id>", "select the cloud model", handleModelCommand},
		"models":    {"/models", "list cloud models", handleModelsCommand},
		"temp":      {"/temp <0-2>", "set temperature", floatSetter("temperature", func(s *settings.Settings, v float64) { s.Temperature = v })},
		"maxtokens": {"/maxtokens <256-4096>", "set max tokens", handleMaxTokensCommand},
		"topp":      {"/topp <0-1>", "set top-p", floatSetter("top_p", func(s *settings.Settings, v float64) { s.TopP = v })},
		"freq":      {"/freq <-2-2>", "set frequency penalty", floatSetter("frequency_penalty", func(s *settings.Settings, v float64) { s.FrequencyPenalty = v })},
		"presence":  {"/presence <-2-2>", "set presence penalty", floatSetter("presence_penalty", func(s *settings.Settings, v float64) { s.PresencePenalty = v })},
		"system":    {"/system <text|reset>", "show or set the system prompt", handleSystemCommand},
		"settings":  {"/settings", "show current settings", handleSettingsCommand},
		"new":       {"/new <message>", "start a new thread from message", handleNewCommand},
		"clear":     {"/clear", "discard the conversation", handleClearCommand},
		"help":      {"/help", "list commands", handleHelpCommand},
		"quit":      {"/quit", "exit", handleQuitCommand},
	}
}

// lookupCommand resolves a command name or alias.
func lookupCommand(name string) (command, bool) {
	name = strings.ToLower(name)
	if target, ok := aliases[name]; ok {
		name = target
	}
	c, ok := commands[name]
	return c, ok
}

// runCommand executes a command line without its leading slash.
func (m Model) runCommand(line string) (tea.Model, tea.Cmd) {
	name, args, _ := strings.Cut(strings.TrimSpace(line), " ")
	args = strings.TrimSpace(args)

	m.panel = ""
	m.setNotice("", false)

	c, ok := lookupCommand(name)
	if !ok {
		m.setNotice(fmt.Sprintf("Unknown command /%s. Type /help for a list.", name), true)
		m.refresh()
		return m, nil
	}

	cmd := c.handler(&m, args)
	m.refresh()
	return m, cmd
}

// =============================================================================
// SETTINGS COMMANDS
// =============================================================================

func (m *Model) applySettings(label string, fn func(*settings.Settings)) {
	if err := m.mgr.UpdateSettings(fn); err != nil {
		m.setNotice("Rejected: "+err.Error(), true)
		return
	}
	m.setNotice(label, false)
}

func handleProviderCommand(m *Model, args string) tea.Cmd {
	if args == "" {
		current := m.mgr.Settings().Provider
		var sb strings.Builder
		for _, id := range model.AllProviders {
			marker := "  "
			if id == current {
				marker = "* "
			}
			fmt.Fprintf(&sb, "%s%-11s %s\n", marker, id, id.DisplayName())
		}
		m.panel = strings.TrimRight(sb.String(), "\n")
		return nil
	}

	id, err := model.ParseProvider(args)
	if err != nil {
		m.setNotice(err.Error(), true)
		return nil
	}
	m.applySettings("Provider set to "+id.DisplayName()+".", func(s *settings.Settings) {
		s.Provider = id
	})
	return nil
}

func handleModelCommand(m *Model, args string) tea.Cmd {
	if args == "" {
		info := m.mgr.Settings().CloudModelInfo()
		m.setNotice(fmt.Sprintf("Cloud model: %s (%s). Use /models to list.", info.Name, info.ID), false)
		return nil
	}
	cm, ok := settings.LookupCloudModel(args)
	if !ok {
		m.setNotice(fmt.Sprintf("Unknown cloud model %q. Use /models to list.", args), true)
		return nil
	}
	m.applySettings("Cloud model set to "+cm.Name+".", func(s *settings.Settings) {
		s.CloudModel = cm.ID
	})
	return nil
}

func handleModelsCommand(m *Model, _ string) tea.Cmd {
	current := m.mgr.Settings().CloudModel
	var sb strings.Builder
	for _, cm := range settings.CloudModels {
		marker := "  "
		if cm.ID == current {
			marker = "* "
		}
		fmt.Fprintf(&sb, "%s%-40s %-9s %s\n", marker, cm.ID, cm.ContextString(), cm.Description)
	}
	m.panel = strings.TrimRight(sb.String(), "\n")
	return nil
}

// floatSetter builds a handler for a float-valued setting.
func floatSetter(field string, set func(*settings.Settings, float64)) CommandHandler {
	return func(m *Model, args string) tea.Cmd {
		v, err := strconv.ParseFloat(args, 64)
		if err != nil {
			m.setNotice(fmt.Sprintf("%s needs a number, got %q", field, args), true)
			return nil
		}
		m.applySettings(fmt.Sprintf("%s set to %g.", field, v), func(s *settings.Settings) {
			set(s, v)
		})
		return nil
	}
}

func handleMaxTokensCommand(m *Model, args string) tea.Cmd {
	n, err := strconv.Atoi(args)
	if err != nil {
		m.setNotice(fmt.Sprintf("max_tokens needs an integer, got %q", args), true)
		return nil
	}
	m.applySettings(fmt.Sprintf("max_tokens set to %d.", n), func(s *settings.Settings) {
		s.MaxTokens = n
	})
	return nil
}

func handleSystemCommand(m *Model, args string) tea.Cmd {
	switch {
	case args == "":
		prompt := m.mgr.Settings().SystemPrompt
		if prompt == "" {
			prompt = "(none)"
		}
		m.panel = "System prompt:\n" + prompt
	case strings.EqualFold(args, "reset"):
		m.applySettings("System prompt restored.", func(s *settings.Settings) {
			s.SystemPrompt = settings.DefaultSystemPrompt
		})
	default:
		m.applySettings("System prompt updated.", func(s *settings.Settings) {
			s.SystemPrompt = args
		})
	}
	return nil
}

func handleSettingsCommand(m *Model, _ string) tea.Cmd {
	m.panel = m.mgr.Settings().Summary()
	return nil
}

// =============================================================================
// CONVERSATION COMMANDS
// =============================================================================

func handleNewCommand(m *Model, args string) tea.Cmd {
	if args == "" {
		m.mgr.Clear()
		m.setNotice("Started a new conversation.", false)
		return nil
	}

	p, err := m.mgr.BeginNewThread(args)
	if err != nil {
		m.reportBeginError(err)
		return nil
	}
	m.setNotice("Started a new conversation.", false)
	m.waitingFor = p.Provider()
	return tea.Batch(m.dispatch(p), m.spinner.Tick)
}

func handleClearCommand(m *Model, _ string) tea.Cmd {
	m.mgr.Clear()
	m.setNotice("Conversation cleared.", false)
	return nil
}

// =============================================================================
// META COMMANDS
// =============================================================================

func handleHelpCommand(m *Model, _ string) tea.Cmd {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Commands:\n")
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(&sb, "  %-36s %s\n", c.usage, c.help)
	}
	sb.WriteString("\nKeys: enter send, PgUp/PgDn scroll, C-l clear, C-c quit")
	m.panel = sb.String()
	return nil
}

func handleQuitCommand(m *Model, _ string) tea.Cmd {
	m.quitting = true
	return tea.Quit
}
