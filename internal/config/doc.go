// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for polychat.
//
// Supports TOML, JSON and YAML configuration formats, with defaults,
// environment variable overrides, and validation. Config holds only
// configuration; conversations are never written to disk.
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (POLYCHAT_*, GROQ_API_KEY, GEMINI_API_KEY)
//   - ~/.polychat/config.toml
//   - ~/.polychat/config.json
//   - ~/.polychat/config.yaml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mgr, err := session.NewManager(session.Config{Settings: ptr(cfg.Settings())})
//
// A Watcher reloads the file when it changes on disk:
//
//	w, err := config.NewWatcher(cfg.LoadedFrom, 250*time.Millisecond, func(c *config.Config, err error) { ... })
//	defer w.Close()
package config
