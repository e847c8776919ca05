// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/settings"
)

// Manager-level errors. Adapter failures never surface here; they become
// assistant messages.
var (
	ErrBlank           = errors.New("message is blank")
	ErrBusy            = errors.New("a request is already in flight")
	ErrUnknownProvider = provider.ErrUnknownProvider
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns the conversation, the current settings and the loading flag.
// All methods are safe for concurrent use.
type Manager struct {
	mu sync.Mutex

	conv     *model.Conversation
	settings settings.Settings
	loading  bool

	// epoch increments whenever the conversation is discarded, so replies
	// to requests begun before the discard can be recognized and dropped.
	epoch uint64

	registry provider.Registry
	log      zerolog.Logger
}

// Config holds configuration for the session manager.
type Config struct {
	// Registry supplies one adapter per provider
	Registry provider.Registry

	// Settings are the initial settings (default: settings.Default())
	Settings *settings.Settings

	// Logger receives failure diagnostics (default: disabled)
	Logger *zerolog.Logger
}

// NewManager creates a session manager with an empty conversation.
func NewManager(cfg Config) (*Manager, error) {
	s := settings.Default()
	if cfg.Settings != nil {
		s = *cfg.Settings
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("component", "session").Logger()
	}

	return &Manager{
		conv:     model.NewConversation(),
		settings: s,
		registry: cfg.Registry,
		log:      log,
	}, nil
}

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// Snapshot returns a copy of the conversation in chat order.
func (m *Manager) Snapshot() []model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Snapshot()
}

// Len returns the number of messages in the conversation.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.Len()
}

// ConversationID returns the identity of the current thread.
func (m *Manager) ConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conv.ID
}

// Loading reports whether a request is in flight.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Clear discards the conversation without starting a new thread.
// An in-flight reply will be dropped when it completes.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardLocked()
	m.log.Debug().Msg("conversation cleared")
}

func (m *Manager) discardLocked() {
	m.conv.Reset()
	m.epoch++
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns a copy of the current settings.
func (m *Manager) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// SetSettings replaces the settings after validating them.
// Requests already in flight keep the settings they started with.
func (m *Manager) SetSettings(s settings.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
	return nil
}

// UpdateSettings applies fn to a copy of the current settings and stores
// the result if it validates. On error the settings are unchanged.
func (m *Manager) UpdateSettings(fn func(*settings.Settings)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.settings
	fn(&next)
	if err := next.Validate(); err != nil {
		return err
	}
	m.settings = next
	return nil
}
