// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/session"
	"github.com/jeranaias/polychat/internal/ui/styles"
)

// Options configures a chat Model.
type Options struct {
	// Manager owns the conversation (required)
	Manager *session.Manager

	// Theme supplies the styles (default: styles.NewTheme())
	Theme *styles.Theme

	// Markdown renders assistant replies with glamour
	Markdown bool

	// GlamourStyle pins a glamour standard style ("dark", "light", "notty").
	// Empty detects the terminal background.
	GlamourStyle string

	// ShowTimestamps prefixes each message with its time
	ShowTimestamps bool

	// Context is the parent of every adapter call (default: Background)
	Context context.Context

	// Logger receives UI diagnostics (default: disabled)
	Logger *zerolog.Logger
}

// Model is the Bubble Tea model of the chat view.
type Model struct {
	mgr   *session.Manager
	theme *styles.Theme
	ctx   context.Context
	log   zerolog.Logger
	keys  KeyMap

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	markdown       bool
	glamourStyle   string
	renderer       *glamour.TermRenderer
	rendered       map[string]string // message ID -> rendered body
	showTimestamps bool

	width  int
	height int

	// notice is the one-line feedback under the transcript
	notice      string
	noticeIsErr bool

	// panel is command output shown below the transcript until the next
	// command or message
	panel string

	waitingFor  model.ProviderID
	lastLatency time.Duration
	quitting    bool
}

// New creates a chat model. It panics if opts.Manager is nil.
func New(opts Options) Model {
	if opts.Manager == nil {
		panic("chat: nil session manager")
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "tui").Logger()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message or /help..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.KeyMap = viewport.KeyMap{}

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	return Model{
		mgr:            opts.Manager,
		theme:          theme,
		ctx:            ctx,
		log:            log,
		keys:           DefaultKeyMap(),
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		markdown:       opts.Markdown,
		glamourStyle:   opts.GlamourStyle,
		rendered:       make(map[string]string),
		showTimestamps: opts.ShowTimestamps,
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case replyMsg:
		return m.handleReply(msg)

	case SettingsReloadedMsg:
		return m.handleSettingsReloaded(msg)

	case spinner.TickMsg:
		if !m.mgr.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.renderChat()
}

// =============================================================================
// EVENT HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	widthChanged := msg.Width != m.width
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)

	// header + notice + input box (3) + status bar
	const reserved = 1 + 1 + 3 + 1
	m.viewport.Width = max(m.width, 1)
	m.viewport.Height = max(m.height-reserved, 1)

	const promptLen = 2
	m.input.Width = max(m.width-4-promptLen, 10)

	if widthChanged {
		m.rendered = make(map[string]string)
		m.renderer = m.newRenderer()
	}
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Submit):
		return m.handleEnter()

	case key.Matches(msg, m.keys.Clear):
		return m.runCommand("clear")

	case key.Matches(msg, m.keys.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		line := strings.TrimPrefix(strings.TrimSpace(text), "/")
		m.input.SetValue("")
		return m.runCommand(line)
	}

	p, err := m.mgr.Begin(text)
	if err != nil {
		m.reportBeginError(err)
		return m, nil
	}
	m.input.SetValue("")
	m.panel = ""
	m.setNotice("", false)
	m.waitingFor = p.Provider()
	m.refresh()
	return m, tea.Batch(m.dispatch(p), m.spinner.Tick)
}

// reportBeginError shows why Begin refused. Blank input is ignored silently.
func (m *Model) reportBeginError(err error) {
	switch {
	case errors.Is(err, session.ErrBlank):
	case errors.Is(err, session.ErrBusy):
		m.setNotice("Still waiting for the previous reply.", true)
	default:
		m.setNotice(err.Error(), true)
	}
}

// dispatch runs the adapter call off the UI goroutine.
func (m Model) dispatch(p *session.Pending) tea.Cmd {
	mgr, ctx := m.mgr, m.ctx
	return func() tea.Msg {
		return replyMsg{outcome: mgr.Dispatch(ctx, p)}
	}
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	o := msg.outcome
	if reply, ok := m.mgr.Complete(o); !ok {
		m.log.Debug().Msg("reply dropped, conversation was reset")
		m.setNotice(fmt.Sprintf("Discarded late reply from %s: %q",
			reply.Provider.DisplayName(), reply.Preview(48)), false)
	}
	m.lastLatency = o.Latency
	m.refresh()
	return m, nil
}

func (m Model) handleSettingsReloaded(msg SettingsReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setNotice("Config reload failed: "+msg.Err.Error(), true)
		return m, nil
	}
	if err := m.mgr.SetSettings(msg.Settings); err != nil {
		m.setNotice("Config reload rejected: "+err.Error(), true)
		return m, nil
	}
	m.setNotice("Config reloaded.", false)
	m.refresh()
	return m, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeIsErr = isErr
}

func (m *Model) newRenderer() *glamour.TermRenderer {
	if !m.markdown {
		return nil
	}
	wrap := max(m.width-4, 20)
	style := glamour.WithAutoStyle()
	if m.glamourStyle != "" {
		style = glamour.WithStandardStyle(m.glamourStyle)
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		m.log.Warn().Err(err).Msg("markdown renderer unavailable")
		return nil
	}
	return r
}

// refresh re-renders the transcript into the viewport and follows the
// bottom.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// Manager returns the session manager the view renders.
func (m Model) Manager() *session.Manager {
	return m.mgr
}
