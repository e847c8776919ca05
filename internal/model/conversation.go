// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the ordered list of turns in the current thread.
// Insertion order is chat order and is replayed verbatim as history.
//
// A Conversation is not safe for concurrent use; session.Manager owns the
// only live instance and guards it with its own mutex.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        generateID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds messages to the end of the conversation.
func (c *Conversation) Append(msgs ...Message) {
	if len(msgs) == 0 {
		return
	}
	c.messages = append(c.messages, msgs...)
	c.UpdatedAt = time.Now()
}

// Snapshot returns a copy of the messages in order.
// The result never aliases the conversation's backing array.
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Reset discards every message and starts a new thread identity.
func (c *Conversation) Reset() {
	c.messages = nil
	c.ID = generateID()
	c.UpdatedAt = time.Now()
}

func generateID() string {
	return "conv_" + uuid.NewString()[:8]
}
