// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package local provides the HTTP client for an LM Studio server running on
// the loopback interface.
//
// LM Studio serves an OpenAI-shaped /v1/chat/completions endpoint without
// authentication. Unlike the cloud adapter, responses are validated
// strictly: a 2xx reply without choices[0].message.content is an error.
//
// # Usage
//
//	client := local.NewClient()
//	if err := client.Probe(ctx); err != nil {
//	    fmt.Println(err) // LM Studio not running
//	}
//	reply, err := client.Send(ctx, history, msg, s)
package local
