// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the polychat command line.
//
// Commands are built with cobra. Running polychat with no arguments opens
// the chat TUI; the subcommands cover one-shot use and configuration.
//
//	polychat                      open the TUI
//	polychat ask "question"       send one turn and print the reply
//	echo "question" | polychat ask
//	polychat status               probe every backend
//	polychat config show|path|init
//	polychat version
//
// Global flags:
//
//	--config PATH      read configuration from PATH instead of ~/.polychat
//	--provider ID      override the backend (cloud, local, generative)
//	--log-level LEVEL  override log.level
package cli
