// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package settings

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polychat/internal/model"
)

func TestDefault_IsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, model.ProviderCloud, s.Provider)
	assert.Equal(t, DefaultCloudModel, s.CloudModel)
	assert.Equal(t, 1024, s.MaxTokens)
	assert.Equal(t, 1.0, s.Temperature)
	assert.Equal(t, 1.0, s.TopP)
}

func TestValidate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
		field  string
	}{
		{"temperature high", func(s *Settings) { s.Temperature = 2.1 }, "temperature"},
		{"temperature negative", func(s *Settings) { s.Temperature = -0.1 }, "temperature"},
		{"max tokens low", func(s *Settings) { s.MaxTokens = 255 }, "max_tokens"},
		{"max tokens high", func(s *Settings) { s.MaxTokens = 4097 }, "max_tokens"},
		{"top p high", func(s *Settings) { s.TopP = 1.5 }, "top_p"},
		{"frequency low", func(s *Settings) { s.FrequencyPenalty = -2.5 }, "frequency_penalty"},
		{"presence high", func(s *Settings) { s.PresencePenalty = 3 }, "presence_penalty"},
		{"temperature NaN", func(s *Settings) { s.Temperature = math.NaN() }, "temperature"},
		{"top p NaN", func(s *Settings) { s.TopP = math.NaN() }, "top_p"},
		{"frequency NaN", func(s *Settings) { s.FrequencyPenalty = math.NaN() }, "frequency_penalty"},
		{"presence NaN", func(s *Settings) { s.PresencePenalty = math.NaN() }, "presence_penalty"},
		{"temperature infinite", func(s *Settings) { s.Temperature = math.Inf(1) }, "temperature"},
		{"unknown provider", func(s *Settings) { s.Provider = model.ProviderUnknown }, "provider"},
		{"unknown cloud model", func(s *Settings) { s.CloudModel = "gpt-4o" }, "cloud_model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Default()
			tc.mutate(&s)

			err := s.Validate()
			require.Error(t, err)

			var fieldErrs FieldErrors
			require.True(t, errors.As(err, &fieldErrs))
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tc.field, fieldErrs[0].Field)
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	s := Default()
	s.Temperature = 0
	s.MaxTokens = 256
	s.TopP = 0
	s.FrequencyPenalty = -2
	s.PresencePenalty = 2
	assert.NoError(t, s.Validate())

	s.Temperature = 2
	s.MaxTokens = 4096
	s.TopP = 1
	assert.NoError(t, s.Validate())
}

func TestValidate_ReportsAllFields(t *testing.T) {
	s := Default()
	s.Temperature = 5
	s.TopP = -1

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
	assert.Contains(t, err.Error(), "top_p")
}

func TestCatalog(t *testing.T) {
	require.Len(t, CloudModels, 5)

	m, ok := LookupCloudModel("mixtral-8x7b-32768")
	require.True(t, ok)
	assert.Equal(t, "Mixtral 8x7B", m.Name)
	assert.Equal(t, "32K ctx", m.ContextString())

	_, ok = LookupCloudModel("nope")
	assert.False(t, ok)

	s := Default()
	s.CloudModel = "nope"
	assert.Equal(t, DefaultCloudModel, s.CloudModelInfo().ID)
}
