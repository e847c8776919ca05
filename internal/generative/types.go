// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generative

// Part is one piece of a content turn. Only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversation turn in Gemini's format.
type Content struct {
	Role  string `json:"role"` // "user" or "model"
	Parts []Part `json:"parts"`
}

// GenerationConfig carries the sampling parameters.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature"`
	TopK             int     `json:"topK"`
	TopP             float64 `json:"topP"`
	MaxOutputTokens  int     `json:"maxOutputTokens"`
	ResponseMimeType string  `json:"responseMimeType"`
}

// GenerateRequest is the body of a generateContent call.
type GenerateRequest struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// GenerateResponse is the subset of the generateContent response we read.
// Every level is a pointer or slice so absence can be detected.
type GenerateResponse struct {
	Candidates []*struct {
		Content *struct {
			Parts []*struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}
