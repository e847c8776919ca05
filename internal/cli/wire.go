// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/rs/zerolog"

	"github.com/jeranaias/polychat/internal/cloud"
	"github.com/jeranaias/polychat/internal/config"
	"github.com/jeranaias/polychat/internal/generative"
	"github.com/jeranaias/polychat/internal/local"
	"github.com/jeranaias/polychat/internal/provider"
	"github.com/jeranaias/polychat/internal/session"
)

// buildRegistry creates one adapter per provider from cfg. The returned
// func releases their connections.
func buildRegistry(cfg *config.Config, log zerolog.Logger) (provider.Registry, func()) {
	cloudClient := cloud.NewClient(&cloud.Config{
		APIKey:  cfg.Cloud.APIKey,
		BaseURL: cfg.Cloud.BaseURL,
		Timeout: config.Timeout(cfg.Cloud.TimeoutSecs),
		Logger:  &log,
	})
	localClient := local.NewClientWithConfig(&local.ClientConfig{
		BaseURL: cfg.Local.URL,
		Model:   cfg.Local.Model,
		Timeout: config.Timeout(cfg.Local.TimeoutSecs),
		Logger:  &log,
	})
	genClient := generative.NewClient(generative.Config{
		APIKey:  cfg.Generative.APIKey,
		BaseURL: cfg.Generative.BaseURL,
		Model:   cfg.Generative.Model,
		Timeout: config.Timeout(cfg.Generative.TimeoutSecs),
		Logger:  &log,
	})

	reg := provider.Registry{
		Cloud:      cloudClient,
		Local:      localClient,
		Generative: genClient,
	}
	return reg, func() {
		localClient.Close()
		genClient.Close()
	}
}

func newManager(cfg *config.Config, reg provider.Registry, log zerolog.Logger) (*session.Manager, error) {
	s := cfg.Settings()
	return session.NewManager(session.Config{
		Registry: reg,
		Settings: &s,
		Logger:   &log,
	})
}
