// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/settings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

const errPrefix = "Local LM Error: "

// Sentinel errors for easy checking.
var (
	ErrNotRunning      = errors.New("LM Studio is not running")
	ErrInvalidResponse = errors.New("Invalid response format from local LM")
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the local client.
type ClientConfig struct {
	// BaseURL is the LM Studio base URL (default: http://localhost:1234)
	BaseURL string

	// Timeout for a single request (default: 120s, local models can be slow)
	Timeout time.Duration

	// Model is sent as the request model; empty uses whatever is loaded
	Model string

	// Logger receives request diagnostics (default: disabled)
	Logger *zerolog.Logger
}

// DefaultBaseURL is the fixed loopback address LM Studio listens on.
const DefaultBaseURL = "http://localhost:1234"

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: 120 * time.Second,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the provider.Adapter for LM Studio.
// It is safe for concurrent use.
type Client struct {
	config *ClientConfig
	http   *resty.Client
	log    zerolog.Logger
}

var _ provider.Adapter = (*Client)(nil)

// NewClient creates a new local client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new local client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second
	}

	log := zerolog.Nop()
	if config.Logger != nil {
		log = config.Logger.With().Str("provider", model.ProviderLocal.String()).Logger()
	}

	httpClient := provider.NewHTTPClient("local", config.Timeout, log)
	httpClient.SetBaseURL(config.BaseURL)

	return &Client{
		config: config,
		http:   httpClient,
		log:    log,
	}
}

// ID implements provider.Adapter.
func (c *Client) ID() model.ProviderID {
	return model.ProviderLocal
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Probe verifies that LM Studio is reachable by listing its models.
func (c *Client) Probe(ctx context.Context) error {
	_, err := c.ListModels(ctx)
	return err
}

// ListModels retrieves the models LM Studio currently serves.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/v1/models")
	if err != nil {
		return nil, c.transportError(err)
	}
	if resp.IsError() {
		return nil, provider.NewError(model.ProviderLocal, provider.KindGeneric,
			fmt.Sprintf("%sHTTP error! status: %d. Response: %s", errPrefix, resp.StatusCode(), resp.String()), nil)
	}

	var result ListModelsResponse
	if err := json.Unmarshal(resp.Bytes(), &result); err != nil {
		return nil, provider.NewError(model.ProviderLocal, provider.KindResponseShapeInvalid,
			errPrefix+ErrInvalidResponse.Error(), err)
	}
	return result.Data, nil
}

// =============================================================================
// CHAT
// =============================================================================

// Send implements provider.Adapter.
func (c *Client) Send(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error) {
	req := c.buildRequest(history, msg, s)
	start := time.Now()
	c.log.Debug().Int("messages", len(req.Messages)).Msg("sending chat request")

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/v1/chat/completions")
	if err != nil {
		c.log.Error().Err(err).Dur("latency", time.Since(start)).Msg("chat request failed")
		return "", c.transportError(err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		c.log.Warn().Int("status", status).Dur("latency", time.Since(start)).Msg("chat request rejected")
		return "", provider.NewError(model.ProviderLocal, provider.KindGeneric,
			fmt.Sprintf("%sHTTP error! status: %d. Response: %s", errPrefix, status, resp.String()), nil)
	}

	var result ChatResponse
	if err := json.Unmarshal(resp.Bytes(), &result); err != nil {
		c.log.Warn().Err(err).Msg("chat response is not JSON")
		return "", provider.NewError(model.ProviderLocal, provider.KindResponseShapeInvalid,
			errPrefix+ErrInvalidResponse.Error(), err)
	}
	content, ok := result.content()
	if !ok {
		c.log.Warn().Msg("chat response missing choices[0].message.content")
		return "", provider.NewError(model.ProviderLocal, provider.KindResponseShapeInvalid,
			errPrefix+ErrInvalidResponse.Error(), ErrInvalidResponse)
	}

	c.log.Debug().Int("status", status).Dur("latency", time.Since(start)).Msg("chat response received")
	return content, nil
}

func (c *Client) buildRequest(history []model.Message, msg model.Message, s settings.Settings) ChatRequest {
	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: s.SystemPrompt})
	for _, m := range history {
		messages = append(messages, Message{Role: m.Role.String(), Content: m.Content})
	}
	messages = append(messages, Message{Role: model.RoleUser.String(), Content: msg.Content})

	return ChatRequest{
		Model:            c.config.Model,
		Messages:         messages,
		Temperature:      s.Temperature,
		MaxTokens:        s.MaxTokens,
		TopP:             s.TopP,
		FrequencyPenalty: s.FrequencyPenalty,
		PresencePenalty:  s.PresencePenalty,
		Stream:           false,
		Stop:             []string{"\n"},
	}
}

// transportError maps a failed round trip. Connection refused gets the
// start-the-server guidance; anything else keeps its cause text and is a
// transport failure only when the network layer produced it.
func (c *Client) transportError(err error) error {
	if provider.IsConnectionRefused(err) {
		return provider.NewError(model.ProviderLocal, provider.KindTransportUnavailable,
			fmt.Sprintf("Failed to connect to LM Studio. Make sure it is running on port %s and a model is loaded.", c.port()),
			errors.Join(ErrNotRunning, err))
	}
	kind := provider.KindGeneric
	if provider.IsTransportFailure(err) {
		kind = provider.KindTransportUnavailable
	}
	return provider.NewError(model.ProviderLocal, kind, errPrefix+err.Error(), err)
}

func (c *Client) port() string {
	u, err := url.Parse(c.config.BaseURL)
	if err != nil || u.Port() == "" {
		return "1234"
	}
	return u.Port()
}
