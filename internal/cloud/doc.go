// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the Groq adapter for cloud LLM inference.
//
// Groq exposes an OpenAI-compatible chat completions API, so the adapter
// is built on the go-openai client with the base URL pointed at Groq.
//
// # Key Types
//
//   - Client: provider.Adapter for the cloud backend
//   - Config: API key, base URL, timeout and logger
//
// # Usage
//
//	client := cloud.NewClient(&cloud.Config{APIKey: key})
//	reply, err := client.Send(ctx, history, msg, settings.Default())
//
// # Rate Limiting
//
// A rate-limited request is not reported as an error. Send returns
// RateLimitMessage as ordinary reply content instead, so the user is told
// to wait or switch models.
//
// API keys are never logged.
package cloud
