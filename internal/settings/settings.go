// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"fmt"
	"strings"

	"github.com/jeranaias/polychat/internal/model"
)

// Parameter ranges.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
	MinMaxTokens   = 256
	MaxMaxTokens   = 4096
	MinTopP        = 0.0
	MaxTopP        = 1.0
	MinPenalty     = -2.0
	MaxPenalty     = 2.0
)

// DefaultSystemPrompt is the persona used when none is configured.
const DefaultSystemPrompt = "You are a highly knowledgeable cybersecurity expert. " +
	"Provide accurate, up-to-date information about cybersecurity topics, best practices, " +
	"threat detection, and security measures. Focus on practical, actionable advice while " +
	"maintaining technical accuracy. If you're unsure about something, acknowledge it and " +
	"suggest reliable sources for further information."

// =============================================================================
// SETTINGS
// =============================================================================

// Settings is the snapshot of sampling parameters and backend selection
// applied to one request.
type Settings struct {
	Provider         model.ProviderID `toml:"provider" json:"provider" yaml:"provider"`
	CloudModel       string           `toml:"cloud_model" json:"cloud_model" yaml:"cloud_model"`
	Temperature      float64          `toml:"temperature" json:"temperature" yaml:"temperature"`
	MaxTokens        int              `toml:"max_tokens" json:"max_tokens" yaml:"max_tokens"`
	TopP             float64          `toml:"top_p" json:"top_p" yaml:"top_p"`
	FrequencyPenalty float64          `toml:"frequency_penalty" json:"frequency_penalty" yaml:"frequency_penalty"`
	PresencePenalty  float64          `toml:"presence_penalty" json:"presence_penalty" yaml:"presence_penalty"`
	SystemPrompt     string           `toml:"system_prompt" json:"system_prompt" yaml:"system_prompt"`
}

// Default returns the settings used on first start.
func Default() Settings {
	return Settings{
		Provider:         model.ProviderCloud,
		CloudModel:       DefaultCloudModel,
		Temperature:      1,
		MaxTokens:        1024,
		TopP:             1,
		FrequencyPenalty: 0,
		PresencePenalty:  0,
		SystemPrompt:     DefaultSystemPrompt,
	}
}

// Validate checks every field against its allowed range or enumeration.
// All violations are reported together.
func (s Settings) Validate() error {
	var errs FieldErrors

	if !s.Provider.Valid() {
		errs = append(errs, FieldError{Field: "provider", Message: "must be one of cloud, local, generative"})
	}
	if _, ok := LookupCloudModel(s.CloudModel); !ok {
		errs = append(errs, FieldError{Field: "cloud_model", Message: fmt.Sprintf("unknown cloud model %q", s.CloudModel)})
	}
	if !inRange(s.Temperature, MinTemperature, MaxTemperature) {
		errs = append(errs, rangeError("temperature", s.Temperature, MinTemperature, MaxTemperature))
	}
	if s.MaxTokens < MinMaxTokens || s.MaxTokens > MaxMaxTokens {
		errs = append(errs, FieldError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("%d is outside [%d, %d]", s.MaxTokens, MinMaxTokens, MaxMaxTokens),
		})
	}
	if !inRange(s.TopP, MinTopP, MaxTopP) {
		errs = append(errs, rangeError("top_p", s.TopP, MinTopP, MaxTopP))
	}
	if !inRange(s.FrequencyPenalty, MinPenalty, MaxPenalty) {
		errs = append(errs, rangeError("frequency_penalty", s.FrequencyPenalty, MinPenalty, MaxPenalty))
	}
	if !inRange(s.PresencePenalty, MinPenalty, MaxPenalty) {
		errs = append(errs, rangeError("presence_penalty", s.PresencePenalty, MinPenalty, MaxPenalty))
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// CloudModelInfo returns the catalog entry of the selected cloud model,
// falling back to the default entry.
func (s Settings) CloudModelInfo() CloudModel {
	if m, ok := LookupCloudModel(s.CloudModel); ok {
		return m
	}
	m, _ := LookupCloudModel(DefaultCloudModel)
	return m
}

// Summary renders the settings as aligned "key: value" lines.
func (s Settings) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "provider:          %s (%s)\n", s.Provider, s.Provider.DisplayName())
	fmt.Fprintf(&sb, "cloud_model:       %s\n", s.CloudModel)
	fmt.Fprintf(&sb, "temperature:       %.2f\n", s.Temperature)
	fmt.Fprintf(&sb, "max_tokens:        %d\n", s.MaxTokens)
	fmt.Fprintf(&sb, "top_p:             %.2f\n", s.TopP)
	fmt.Fprintf(&sb, "frequency_penalty: %.2f\n", s.FrequencyPenalty)
	fmt.Fprintf(&sb, "presence_penalty:  %.2f\n", s.PresencePenalty)
	fmt.Fprintf(&sb, "system_prompt:     %s", s.SystemPrompt)
	return sb.String()
}

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

// FieldError describes one invalid settings field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// FieldErrors collects every invalid field found by Validate.
type FieldErrors []FieldError

func (e FieldErrors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Error()
	}
	return strings.Join(msgs, "; ")
}

// inRange reports whether v lies in [lo, hi]. NaN is never in range.
func inRange(v, lo, hi float64) bool {
	return v >= lo && v <= hi
}

func rangeError(field string, v, lo, hi float64) FieldError {
	return FieldError{
		Field:   field,
		Message: fmt.Sprintf("%g is outside [%g, %g]", v, lo, hi),
	}
}
