// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import "fmt"

// =============================================================================
// CLOUD MODEL CATALOG
// =============================================================================

// CloudModel describes one sub-model offered by the cloud backend.
type CloudModel struct {
	// ID is the model identifier used in API calls
	ID string `json:"id"`

	// Name is the human-readable display name
	Name string `json:"name"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`

	// ContextWindow is the maximum context size in tokens
	ContextWindow int `json:"context_window"`
}

// DefaultCloudModel is selected when nothing else is configured.
const DefaultCloudModel = "llama-3.1-70b-versatile"

// CloudModels is the catalog of selectable cloud sub-models in display order.
var CloudModels = []CloudModel{
	{
		ID:            "llama-3.1-70b-versatile",
		Name:          "LLaMA 3.1 70B Versatile",
		Description:   "General purpose model with broad capabilities",
		ContextWindow: 4096,
	},
	{
		ID:            "llama3-groq-70b-8192-tool-use-preview",
		Name:          "LLaMA 3 70B Tool Use",
		Description:   "Optimized for tool use and function calling",
		ContextWindow: 8192,
	},
	{
		ID:            "gemma2-9b-it",
		Name:          "Gemma 2 9B",
		Description:   "Efficient and lightweight model",
		ContextWindow: 8192,
	},
	{
		ID:            "mixtral-8x7b-32768",
		Name:          "Mixtral 8x7B",
		Description:   "High performance with extended context window",
		ContextWindow: 32768,
	},
	{
		ID:            "llama3-70b-8192",
		Name:          "LLaMA 3 70B",
		Description:   "Latest LLaMA 3 with extended context",
		ContextWindow: 8192,
	},
}

// LookupCloudModel returns the catalog entry for id.
func LookupCloudModel(id string) (CloudModel, bool) {
	for _, m := range CloudModels {
		if m.ID == id {
			return m, true
		}
	}
	return CloudModel{}, false
}

// ContextString returns a short label like "32K ctx".
func (m CloudModel) ContextString() string {
	if m.ContextWindow >= 1024 {
		return fmt.Sprintf("%dK ctx", m.ContextWindow/1024)
	}
	return fmt.Sprintf("%d ctx", m.ContextWindow)
}
