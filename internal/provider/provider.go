// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/settings"
)

// ErrUnknownProvider is returned when no adapter exists for a ProviderID.
var ErrUnknownProvider = errors.New("unknown provider")

// ErrNotConfigured is returned when the registry slot for a provider is empty.
var ErrNotConfigured = errors.New("provider not configured")

// =============================================================================
// ADAPTER CONTRACT
// =============================================================================

// Adapter sends one user turn to a backend and returns the reply text.
//
// history is the conversation before msg, in chat order, and never contains
// msg itself. The settings value is the snapshot taken when the request
// began. Adapters must not retain history or read any other shared state.
type Adapter interface {
	ID() model.ProviderID
	Send(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error)
}

// Prober is implemented by adapters that can check backend reachability
// without sending a chat turn.
type Prober interface {
	Probe(ctx context.Context) error
}

// =============================================================================
// REGISTRY
// =============================================================================

// Registry holds exactly one adapter per provider.
type Registry struct {
	Cloud      Adapter
	Local      Adapter
	Generative Adapter
}

// For returns the adapter registered for id.
func (r Registry) For(id model.ProviderID) (Adapter, error) {
	var a Adapter
	switch id {
	case model.ProviderCloud:
		a = r.Cloud
	case model.ProviderLocal:
		a = r.Local
	case model.ProviderGenerative:
		a = r.Generative
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownProvider, uint8(id))
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotConfigured, id)
	}
	return a, nil
}

// All returns the registered adapters in display order, skipping empty slots.
func (r Registry) All() []Adapter {
	out := make([]Adapter, 0, len(model.AllProviders))
	for _, id := range model.AllProviders {
		if a, err := r.For(id); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// =============================================================================
// FUNC ADAPTER
// =============================================================================

// SendFunc has the signature of Adapter.Send.
type SendFunc func(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error)

// Func adapts a plain function to the Adapter interface.
// Tests use it to fake a backend.
type Func struct {
	Provider model.ProviderID
	Fn       SendFunc
}

// ID implements Adapter.
func (f Func) ID() model.ProviderID { return f.Provider }

// Send implements Adapter.
func (f Func) Send(ctx context.Context, history []model.Message, msg model.Message, s settings.Settings) (string, error) {
	return f.Fn(ctx, history, msg, s)
}
