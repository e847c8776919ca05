// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polychat/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "info", Format: "json", Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Str("provider", "cloud").Msg("sent")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "sent", entry["message"])
	assert.Equal(t, "cloud", entry["provider"])
	assert.Equal(t, "polychat", entry["app"])
	assert.Contains(t, entry, "time")
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Format: "console", Output: &buf, NoColor: true})
	log.Warn().Msg("rate limited")

	assert.Contains(t, buf.String(), "WRN")
	assert.Contains(t, buf.String(), "rate limited")
}

func TestFromConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "polychat.log")

	log, closer, err := FromConfig(config.LogConfig{Level: "debug", Format: "json", File: path}, io.Discard)
	require.NoError(t, err)
	log.Debug().Msg("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestFromConfig_Fallback(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := FromConfig(config.LogConfig{Format: "json"}, &buf)
	require.NoError(t, err)
	defer closer.Close()

	log.Info().Msg("fallback")
	assert.Contains(t, buf.String(), "fallback")
}
