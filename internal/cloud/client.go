// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/settings"
)

// Configuration constants for the Groq API.
const (
	// DefaultBaseURL is the OpenAI-compatible Groq endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// RateLimitMessage is returned as reply content when Groq throttles a request.
	RateLimitMessage = "⚠️ Rate limit exceeded for this model. Please try again in about an hour, or switch to a different model in the settings."
)

// ErrNotConfigured indicates the API key is not set.
var ErrNotConfigured = errors.New("Groq API key not configured")

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds configuration options for the cloud client.
type Config struct {
	// APIKey is the Groq API key sent as a bearer token
	APIKey string

	// BaseURL is the API base URL (default: DefaultBaseURL)
	BaseURL string

	// Timeout for a single completion request (default: 60s)
	Timeout time.Duration

	// Logger receives request diagnostics (default: disabled)
	Logger *zerolog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the provider.Adapter for the Groq cloud backend.
// It is safe for concurrent use.
type Client struct {
	api     *openai.Client
	apiKey  string
	baseURL string
	log     zerolog.Logger
}

var _ provider.Adapter = (*Client)(nil)

// NewClient creates a cloud client, filling zero config values with defaults.
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("provider", model.ProviderCloud.String()).Logger()
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	oc := openai.DefaultConfig(apiKey)
	oc.BaseURL = baseURL
	oc.HTTPClient = &http.Client{Timeout: timeout}

	return &Client{
		api:     openai.NewClientWithConfig(oc),
		apiKey:  apiKey,
		baseURL: baseURL,
		log:     log,
	}
}

// ID implements provider.Adapter.
func (c *Client) ID() model.ProviderID {
	return model.ProviderCloud
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Probe reports ErrNotConfigured when no API key is set.
// It does not contact the API.
func (c *Client) Probe(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

// Send implements provider.Adapter.
func (c *Client) Send(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error) {
	if !c.IsConfigured() {
		return "", provider.NewError(model.ProviderCloud, provider.KindGeneric, ErrNotConfigured.Error(), ErrNotConfigured)
	}

	req := buildRequest(history, msg, s)
	start := time.Now()
	c.log.Debug().
		Str("model", req.Model).
		Int("messages", len(req.Messages)).
		Msg("sending completion request")

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		if isRateLimited(err) {
			c.log.Warn().Str("model", req.Model).Dur("latency", time.Since(start)).Msg("rate limited")
			return RateLimitMessage, nil
		}
		c.log.Error().Err(err).Str("model", req.Model).Dur("latency", time.Since(start)).Msg("completion failed")
		return "", classify(err)
	}

	c.log.Debug().
		Str("model", req.Model).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("latency", time.Since(start)).
		Msg("completion received")

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// =============================================================================
// REQUEST BUILDING
// =============================================================================

// buildRequest frames the system prompt, the history and the new message.
// Only role and content are sent for each turn. An empty system prompt is
// left out because go-openai would serialize it without content.
func buildRequest(history []model.Message, msg model.Message, s settings.Settings) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if s.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: s.SystemPrompt,
		})
	}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(m.Role),
			Content: m.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: msg.Content,
	})

	return openai.ChatCompletionRequest{
		Model:            s.CloudModelInfo().ID,
		Messages:         messages,
		Temperature:      nonZero(s.Temperature),
		MaxTokens:        s.MaxTokens,
		TopP:             nonZero(s.TopP),
		FrequencyPenalty: float32(s.FrequencyPenalty),
		PresencePenalty:  float32(s.PresencePenalty),
	}
}

func chatRole(r model.Role) string {
	if r == model.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}

// nonZero keeps an explicit zero on the wire. go-openai drops zero-valued
// sampling fields via omitempty, which would make the server use its default.
func nonZero(v float64) float32 {
	if v == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(v)
}

// =============================================================================
// ERROR HANDLING
// =============================================================================

// isRateLimited reports whether err is HTTP 429 or mentions a rate limit.
func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// classify wraps err without changing its message.
func classify(err error) error {
	kind := provider.KindGeneric
	if provider.IsTransportFailure(err) {
		kind = provider.KindTransportUnavailable
	}
	return provider.NewError(model.ProviderCloud, kind, err.Error(), err)
}
