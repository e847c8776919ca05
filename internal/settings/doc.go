// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package settings holds the sampling and backend selection parameters
// applied to a single request, plus the catalog of cloud sub-models.
//
// Settings is a plain value. The session manager copies it into every
// pending request so a later change never affects a request in flight.
package settings
