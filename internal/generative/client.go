// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package generative

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

// Configuration constants for the Gemini API.
const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.0-flash-exp"
	DefaultTimeout = 60 * time.Second

	// Gemini's own output ceiling; the shared max tokens setting is not used.
	maxOutputTokens = 8192
	topK            = 40

	errPrefix = "Gemini Error: "
)

// Response validation errors, one per nesting level.
var (
	ErrNoCandidates = errors.New("No response candidates from Gemini")
	ErrNoContent    = errors.New("No content in Gemini response")
	ErrNoParts      = errors.New("No parts in Gemini response content")
	ErrNoText       = errors.New("No text in Gemini response part")

	// ErrNotConfigured indicates the API key is not set.
	ErrNotConfigured = errors.New("API key not configured")
)

// Config holds configuration options for the generative client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zerolog.Logger
}

// Client is the provider.Adapter for Gemini.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	http     *resty.Client
	log      zerolog.Logger
}

var _ provider.Adapter = (*Client)(nil)

// NewClient creates a generative client, filling zero config values.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = cfg.Logger.With().Str("provider", model.ProviderGenerative.String()).Logger()
	}

	return &Client{
		apiKey:   strings.TrimSpace(cfg.APIKey),
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/models/" + cfg.Model + ":generateContent",
		model:    cfg.Model,
		http:     provider.NewHTTPClient("generative", cfg.Timeout, log),
		log:      log,
	}
}

// ID implements provider.Adapter.
func (c *Client) ID() model.ProviderID {
	return model.ProviderGenerative
}

// Model returns the Gemini model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// IsConfigured returns true if the client has an API key configured.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Probe reports ErrNotConfigured when no API key is set.
func (c *Client) Probe(ctx context.Context) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	return c.http.Close()
}

// Send implements provider.Adapter.
func (c *Client) Send(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error) {
	if !c.IsConfigured() {
		return "", fail(provider.KindGeneric, ErrNotConfigured)
	}

	req := buildRequest(history, msg, s)
	start := time.Now()
	c.log.Debug().Str("model", c.model).Int("contents", len(req.Contents)).Msg("sending generateContent request")

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(req).
		Post(c.endpoint)
	if err != nil {
		err = &redactedError{err: err, secret: c.apiKey}
		c.log.Error().Err(err).Dur("latency", time.Since(start)).Msg("generateContent failed")
		kind := provider.KindGeneric
		if provider.IsTransportFailure(err) {
			kind = provider.KindTransportUnavailable
		}
		return "", fail(kind, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		c.log.Warn().Int("status", status).Dur("latency", time.Since(start)).Msg("generateContent rejected")
		return "", provider.NewError(model.ProviderGenerative, provider.KindGeneric,
			fmt.Sprintf("%sHTTP error! status: %d. Response: %s", errPrefix, status, resp.String()), nil)
	}

	var result GenerateResponse
	if err := json.Unmarshal(resp.Bytes(), &result); err != nil {
		return "", provider.NewError(model.ProviderGenerative, provider.KindResponseShapeInvalid, errPrefix+err.Error(), err)
	}
	text, err := extractText(&result)
	if err != nil {
		c.log.Warn().Err(err).Msg("generateContent response incomplete")
		return "", fail(provider.KindResponseShapeInvalid, err)
	}

	c.log.Debug().Int("status", status).Dur("latency", time.Since(start)).Msg("generateContent received")
	return text, nil
}

// buildRequest remaps roles and injects the system prompt as a user turn.
func buildRequest(history []model.Message, msg model.Message, s settings.Settings) GenerateRequest {
	contents := make([]Content, 0, len(history)+2)
	if s.SystemPrompt != "" {
		contents = append(contents, textContent("user", s.SystemPrompt))
	}
	for _, m := range history {
		contents = append(contents, textContent(geminiRole(m.Role), m.Content))
	}
	contents = append(contents, textContent(geminiRole(msg.Role), msg.Content))

	return GenerateRequest{
		Contents: contents,
		GenerationConfig: GenerationConfig{
			Temperature:      s.Temperature,
			TopK:             topK,
			TopP:             s.TopP,
			MaxOutputTokens:  maxOutputTokens,
			ResponseMimeType: "text/plain",
		},
	}
}

func textContent(role, text string) Content {
	return Content{Role: role, Parts: []Part{{Text: text}}}
}

func geminiRole(r model.Role) string {
	if r == model.RoleAssistant {
		return "model"
	}
	return "user"
}

// extractText walks candidates[0].content.parts[0].text.
// An empty text counts as missing.
func extractText(r *GenerateResponse) (string, error) {
	if len(r.Candidates) == 0 || r.Candidates[0] == nil {
		return "", ErrNoCandidates
	}
	content := r.Candidates[0].Content
	if content == nil {
		return "", ErrNoContent
	}
	if len(content.Parts) == 0 || content.Parts[0] == nil {
		return "", ErrNoParts
	}
	text := content.Parts[0].Text
	if text == nil || *text == "" {
		return "", ErrNoText
	}
	return *text, nil
}

func fail(kind provider.Kind, err error) error {
	return provider.NewError(model.ProviderGenerative, kind, errPrefix+err.Error(), err)
}

// redactedError hides the API key that net/http includes in URL errors.
// The URL is printed query-escaped, so the escaped forms are replaced too.
type redactedError struct {
	err    error
	secret string
}

func (e *redactedError) Error() string {
	msg := e.err.Error()
	if e.secret == "" {
		return msg
	}
	for _, form := range []string{url.QueryEscape(e.secret), url.PathEscape(e.secret), e.secret} {
		msg = strings.ReplaceAll(msg, form, "REDACTED")
	}
	return msg
}

func (e *redactedError) Unwrap() error {
	return e.err
}
