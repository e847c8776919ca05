// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the request body.
type Message struct {
	Role    string `json:"role"`    // "system", "user" or "assistant"
	Content string `json:"content"` // The message content
}

// ChatRequest is the request body for /v1/chat/completions.
// Sampling fields are always sent, zero included.
type ChatRequest struct {
	Model            string    `json:"model,omitempty"` // Empty lets LM Studio use the loaded model
	Messages         []Message `json:"messages"`
	Temperature      float64   `json:"temperature"`
	MaxTokens        int       `json:"max_tokens"`
	TopP             float64   `json:"top_p"`
	FrequencyPenalty float64   `json:"frequency_penalty"`
	PresencePenalty  float64   `json:"presence_penalty"`
	Stream           bool      `json:"stream"`
	Stop             []string  `json:"stop"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ChatResponse is the response body from /v1/chat/completions.
// Pointers distinguish a missing field from an empty one.
type ChatResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// content returns choices[0].message.content and whether it was present.
func (r *ChatResponse) content() (string, bool) {
	if len(r.Choices) == 0 || r.Choices[0].Message == nil || r.Choices[0].Message.Content == nil {
		return "", false
	}
	return *r.Choices[0].Message.Content, true
}

// ModelInfo describes a model known to the server.
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// ListModelsResponse is the response body from /v1/models.
type ListModelsResponse struct {
	Data []ModelInfo `json:"data"`
}
