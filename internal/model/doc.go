// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the domain types shared by the provider adapters,
// the session manager and the terminal UI.
//
// # Key Types
//
//   - ProviderID: closed enumeration of the backends (cloud, local, generative)
//   - Message: single immutable turn with role, content and producing provider
//   - Conversation: append-only, ordered sequence of messages
//   - Role: message role enumeration (user, assistant)
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("Hello!"))
//	history := conv.Snapshot()
//
// Messages are values. Snapshot returns a copy, so callers can hand the
// history to an adapter without holding any lock.
package model
