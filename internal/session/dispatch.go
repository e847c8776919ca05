// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"strings"
	"time"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/settings"
)

// Fixed reply texts.
const (
	// EmptyReplyText replaces a successful but empty reply.
	EmptyReplyText = "Sorry, I couldn't process that request."

	// UnknownErrorText is used when a failure has no message.
	UnknownErrorText = "Unknown error occurred"

	// NewThreadErrorText is shown when the first turn of a new thread fails.
	// The failure detail is logged but not shown.
	NewThreadErrorText = "Sorry, there was an error processing your message. Please try again."
)

type mode int

const (
	modeSubmit mode = iota
	modeNewThread
)

// =============================================================================
// PENDING REQUEST
// =============================================================================

// Pending is a request that has been begun but not completed.
// It carries everything Dispatch needs, so Dispatch never touches the
// manager's state.
type Pending struct {
	// Message is the user turn that was appended by Begin
	Message model.Message

	// History is the conversation as it stood before Message was appended
	History []model.Message

	// Settings is the snapshot taken by Begin
	Settings settings.Settings

	adapter provider.Adapter
	epoch   uint64
	mode    mode
}

// Provider returns the backend the request was dispatched to.
func (p *Pending) Provider() model.ProviderID {
	return p.adapter.ID()
}

// Outcome is the result of Dispatch.
type Outcome struct {
	Pending *Pending
	Content string
	Err     error
	Latency time.Duration
}

// =============================================================================
// SUBMIT LIFE-CYCLE
// =============================================================================

// Begin validates text, appends it as a user turn and sets the loading flag.
// Nothing changes when an error is returned.
func (m *Manager) Begin(text string) (*Pending, error) {
	return m.begin(text, modeSubmit)
}

// BeginNewThread discards the conversation and appends seed as the first
// turn of a new thread. The returned request has an empty history.
func (m *Manager) BeginNewThread(seed string) (*Pending, error) {
	return m.begin(seed, modeNewThread)
}

func (m *Manager) begin(text string, md mode) (*Pending, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrBlank
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loading {
		return nil, ErrBusy
	}
	adapter, err := m.registry.For(m.settings.Provider)
	if err != nil {
		return nil, err
	}

	if md == modeNewThread {
		m.discardLocked()
	}

	msg := model.NewUserMessage(text)
	p := &Pending{
		Message:  msg,
		History:  m.conv.Snapshot(),
		Settings: m.settings,
		adapter:  adapter,
		epoch:    m.epoch,
		mode:     md,
	}
	m.conv.Append(msg)
	m.loading = true
	return p, nil
}

// Dispatch sends the pending request to its adapter and waits for the reply.
// It does not read or modify the manager's state.
func (m *Manager) Dispatch(ctx context.Context, p *Pending) Outcome {
	start := time.Now()
	content, err := p.adapter.Send(ctx, p.History, p.Message, p.Settings)
	return Outcome{
		Pending: p,
		Content: content,
		Err:     err,
		Latency: time.Since(start),
	}
}

// Complete appends the assistant turn for o and clears the loading flag.
// It returns the assistant message and whether it was appended; a reply to
// a discarded thread is returned but not appended.
func (m *Manager) Complete(o Outcome) (model.Message, bool) {
	reply := m.render(o)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.loading = false
	if o.Pending.epoch != m.epoch {
		m.log.Debug().
			Str("provider", reply.Provider.String()).
			Str("preview", reply.Preview(60)).
			Msg("dropping reply for discarded conversation")
		return reply, false
	}
	m.conv.Append(reply)
	return reply, true
}

// render turns an outcome into the assistant message that represents it.
func (m *Manager) render(o Outcome) model.Message {
	id := o.Pending.Provider()

	if o.Err != nil {
		m.log.Warn().
			Err(o.Err).
			Str("provider", id.String()).
			Str("kind", provider.KindOf(o.Err).String()).
			Dur("latency", o.Latency).
			Msg("provider request failed")

		if o.Pending.mode == modeNewThread {
			return model.NewAssistantMessage(id, NewThreadErrorText)
		}
		text := o.Err.Error()
		if text == "" {
			text = UnknownErrorText
		}
		return model.NewAssistantMessage(id, "Error: "+text)
	}

	m.log.Debug().Str("provider", id.String()).Dur("latency", o.Latency).Msg("provider replied")
	if o.Content == "" {
		return model.NewAssistantMessage(id, EmptyReplyText)
	}
	return model.NewAssistantMessage(id, o.Content)
}

// Submit runs Begin, Dispatch and Complete in sequence.
// Only Manager-level errors are returned; adapter failures are part of the
// returned message.
func (m *Manager) Submit(ctx context.Context, text string) (model.Message, error) {
	p, err := m.Begin(text)
	if err != nil {
		return model.Message{}, err
	}
	reply, _ := m.Complete(m.Dispatch(ctx, p))
	return reply, nil
}

// NewThread resets the conversation and submits seed as its first turn.
func (m *Manager) NewThread(ctx context.Context, seed string) (model.Message, error) {
	p, err := m.BeginNewThread(seed)
	if err != nil {
		return model.Message{}, err
	}
	reply, _ := m.Complete(m.Dispatch(ctx, p))
	return reply, nil
}
