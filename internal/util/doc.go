// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the CLI, config and UI
// packages.
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//   - TruncateRunes, TruncateWidth, StringWidth: display-safe string sizing
//     (go-runewidth)
//   - FirstLine: single-line rendering of multi-line messages
//   - MaskSecret: redacted rendering of API keys
package util
