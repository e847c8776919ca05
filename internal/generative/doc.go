// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generative provides the Gemini generateContent adapter.
//
// Gemini has no system role, so a non-empty system prompt is sent as a
// leading user turn. Assistant turns are sent with role "model". The API
// key travels as the "key" query parameter and is scrubbed from every
// error message and log line.
//
// The response is validated one level at a time (candidates, content,
// parts, text) and each missing level has its own error message.
package generative
