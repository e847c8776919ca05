// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/settings"
)

// isolate points HOME at a temp dir and clears env overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	for _, key := range []string{
		"POLYCHAT_PROVIDER", "POLYCHAT_CLOUD_MODEL", "GROQ_API_KEY", "GEMINI_API_KEY",
		"POLYCHAT_LOCAL_URL", "POLYCHAT_LOG_LEVEL", "POLYCHAT_LOG_FILE",
	} {
		t.Setenv(key, "")
	}
	return home
}

func writeConfig(t *testing.T, home, name, body string) string {
	t.Helper()
	dir := filepath.Join(home, ".polychat")
	require.NoError(t, os.MkdirAll(dir, 0700))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, Version, cfg.Version)
	assert.Equal(t, settings.Default(), cfg.Chat)
	assert.Equal(t, "http://localhost:1234", cfg.Local.URL)
	assert.Equal(t, 60, cfg.Cloud.TimeoutSecs)
	assert.Equal(t, 120, cfg.Local.TimeoutSecs)
	assert.True(t, cfg.UI.Markdown)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.LoadedFrom)
	assert.Equal(t, model.ProviderCloud, cfg.Chat.Provider)
}

func TestLoad_TOML(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, home, "config.toml", `
[chat]
provider = "local"
temperature = 0.0
max_tokens = 512

[log]
level = "debug"
`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, path, cfg.LoadedFrom)
	assert.Equal(t, model.ProviderLocal, cfg.Chat.Provider)
	assert.Equal(t, 0.0, cfg.Chat.Temperature)
	assert.Equal(t, 512, cfg.Chat.MaxTokens)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 1.0, cfg.Chat.TopP)
	assert.Equal(t, settings.DefaultSystemPrompt, cfg.Chat.SystemPrompt)
}

func TestLoad_TOMLWinsOverJSON(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "config.json", `{"chat": {"provider": "generative"}}`)
	writeConfig(t, home, "config.toml", "[chat]\nprovider = \"local\"\n")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, model.ProviderLocal, cfg.Chat.Provider)
}

func TestLoad_JSONAndYAML(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		home := isolate(t)
		writeConfig(t, home, "config.json", `{"chat": {"provider": "gemini", "top_p": 0.5}}`)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, model.ProviderGenerative, cfg.Chat.Provider)
		assert.Equal(t, 0.5, cfg.Chat.TopP)
	})

	t.Run("yaml", func(t *testing.T) {
		home := isolate(t)
		writeConfig(t, home, "config.yaml", "chat:\n  provider: lmstudio\n  max_tokens: 2048\n")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, model.ProviderLocal, cfg.Chat.Provider)
		assert.Equal(t, 2048, cfg.Chat.MaxTokens)
	})
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "config.toml", "[chat]\ntemperature = 3.5\nmax_tokens = 10\n")

	_, err := Load()
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "chat.temperature")
	assert.Contains(t, fields, "chat.max_tokens")
}

func TestLoad_NaNRejected(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "config.toml", "[chat]\ntemperature = nan\ntop_p = nan\n")

	_, err := Load()
	require.Error(t, err)

	var verrs ValidateErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "chat.temperature")
	assert.Contains(t, fields, "chat.top_p")
}

func TestLoad_UnknownProviderInFile(t *testing.T) {
	home := isolate(t)
	writeConfig(t, home, "config.toml", "[chat]\nprovider = \"openai\"\n")

	_, err := Load()
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("POLYCHAT_PROVIDER", "generative")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("GEMINI_API_KEY", "AIza_test")
	t.Setenv("POLYCHAT_LOCAL_URL", "http://127.0.0.1:9999")
	t.Setenv("POLYCHAT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, model.ProviderGenerative, cfg.Chat.Provider)
	assert.Equal(t, "gsk_test", cfg.Cloud.APIKey)
	assert.Equal(t, "AIza_test", cfg.Generative.APIKey)
	assert.Equal(t, "http://127.0.0.1:9999", cfg.Local.URL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnvOverrides_BadProvider(t *testing.T) {
	isolate(t)
	t.Setenv("POLYCHAT_PROVIDER", "bogus")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "POLYCHAT_PROVIDER")
}

func TestValidate_URLsAndLogging(t *testing.T) {
	cfg := Default()
	cfg.Local.URL = "localhost:1234"
	cfg.Log.Format = "xml"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "local.url")
	assert.Contains(t, msg, "log.format")
	assert.Contains(t, msg, "log.level")
}

func TestSaveTOML_RoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Chat.Provider = model.ProviderGenerative
	cfg.Chat.Temperature = 0.25
	cfg.Generative.APIKey = "secret"
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if filepath.Separator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, model.ProviderGenerative, loaded.Chat.Provider)
	assert.Equal(t, 0.25, loaded.Chat.Temperature)
	assert.Equal(t, "secret", loaded.Generative.APIKey)
}

func TestString_RedactsKeys(t *testing.T) {
	cfg := Default()
	cfg.Cloud.APIKey = "gsk_live_key"
	cfg.Generative.APIKey = "AIza_live_key"

	out := cfg.String()
	assert.NotContains(t, out, "gsk_live_key")
	assert.NotContains(t, out, "AIza_live_key")
	assert.Contains(t, out, "[REDACTED]")
	assert.Equal(t, "gsk_live_key", cfg.Cloud.APIKey, "String must not mutate the receiver")
}

func TestTimeout(t *testing.T) {
	assert.Equal(t, 90*time.Second, Timeout(90))
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[chat]\nprovider = \"cloud\"\n"), 0600))

	changes := make(chan *Config, 4)
	w, err := NewWatcher(path, 50*time.Millisecond, func(c *Config, err error) {
		if err == nil {
			changes <- c
		}
	})
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(path, []byte("[chat]\nprovider = \"local\"\n"), 0600))

	select {
	case c := <-changes:
		assert.Equal(t, model.ProviderLocal, c.Chat.Provider)
		assert.True(t, strings.HasSuffix(c.LoadedFrom, "config.toml"))
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestNewWatcher_RequiresPath(t *testing.T) {
	_, err := NewWatcher("", 0, func(*Config, error) {})
	assert.Error(t, err)
}
