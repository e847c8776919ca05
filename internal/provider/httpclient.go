// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"
)

type requestStartedAt struct{}

// NewHTTPClient returns a resty client with retries disabled and a
// middleware that logs method, path, status and latency at debug level.
// Query strings are never logged because one backend carries its API key
// there.
func NewHTTPClient(name string, timeout time.Duration, log zerolog.Logger) *resty.Client {
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetRetryCount(0)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")

	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), requestStartedAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		if r == nil || r.Request == nil || r.Request.RawRequest == nil {
			return nil
		}
		started, _ := r.Request.Context().Value(requestStartedAt{}).(time.Time)
		log.Debug().
			Str("client", name).
			Int("status", r.StatusCode()).
			Str("method", r.Request.RawRequest.Method).
			Str("path", r.Request.RawRequest.URL.Path).
			Dur("latency", time.Since(started)).
			Msg("HTTP client request")
		return nil
	})
	return client
}
