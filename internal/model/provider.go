// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"
)

// =============================================================================
// PROVIDER ID
// =============================================================================

// ProviderID identifies one of the supported backends.
// The zero value is ProviderUnknown and never selects an adapter.
type ProviderID uint8

const (
	ProviderUnknown ProviderID = iota
	ProviderCloud
	ProviderLocal
	ProviderGenerative
)

// AllProviders lists every selectable provider in display order.
var AllProviders = []ProviderID{ProviderCloud, ProviderLocal, ProviderGenerative}

// String returns the canonical identifier used in config files and commands.
func (p ProviderID) String() string {
	switch p {
	case ProviderCloud:
		return "cloud"
	case ProviderLocal:
		return "local"
	case ProviderGenerative:
		return "generative"
	default:
		return "unknown"
	}
}

// DisplayName returns the human-readable backend name.
func (p ProviderID) DisplayName() string {
	switch p {
	case ProviderCloud:
		return "Groq Cloud"
	case ProviderLocal:
		return "Local LM"
	case ProviderGenerative:
		return "Gemini 2.0 Flash"
	default:
		return "Unknown"
	}
}

// Valid reports whether p names a real provider.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderCloud, ProviderLocal, ProviderGenerative:
		return true
	default:
		return false
	}
}

// ParseProvider converts a user or config supplied name into a ProviderID.
// Besides the canonical names it accepts the backend product names
// (groq, lmstudio, gemini).
func ParseProvider(s string) (ProviderID, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cloud", "groq":
		return ProviderCloud, nil
	case "local", "lmstudio", "lm-studio":
		return ProviderLocal, nil
	case "generative", "gemini":
		return ProviderGenerative, nil
	default:
		return ProviderUnknown, fmt.Errorf("unknown provider %q (want cloud, local or generative)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ProviderID) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("cannot marshal provider %d", uint8(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ProviderID) UnmarshalText(text []byte) error {
	id, err := ParseProvider(string(text))
	if err != nil {
		return err
	}
	*p = id
	return nil
}
