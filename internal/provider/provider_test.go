// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/polychat/internal/model"
	"github.com/jeranaias/polychat/internal/settings"
)

func stub(id model.ProviderID) Func {
	return Func{Provider: id, Fn: func(context.Context, []model.Message, model.Message, settings.Settings) (string, error) {
		return id.String(), nil
	}}
}

func TestRegistry_For(t *testing.T) {
	reg := Registry{
		Cloud:      stub(model.ProviderCloud),
		Local:      stub(model.ProviderLocal),
		Generative: stub(model.ProviderGenerative),
	}

	for _, id := range model.AllProviders {
		t.Run(id.String(), func(t *testing.T) {
			a, err := reg.For(id)
			require.NoError(t, err)
			assert.Equal(t, id, a.ID())

			out, err := a.Send(context.Background(), nil, model.NewUserMessage("x"), settings.Default())
			require.NoError(t, err)
			assert.Equal(t, id.String(), out)
		})
	}

	_, err := reg.For(model.ProviderUnknown)
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = reg.For(model.ProviderID(42))
	assert.ErrorIs(t, err, ErrUnknownProvider)
}

func TestRegistry_EmptySlot(t *testing.T) {
	reg := Registry{Cloud: stub(model.ProviderCloud)}

	_, err := reg.For(model.ProviderLocal)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Len(t, reg.All(), 1)
}

func TestError_KindOf(t *testing.T) {
	cause := errors.New("boom")
	pe := NewError(model.ProviderLocal, KindResponseShapeInvalid, "Local LM Error: bad", cause)

	assert.Equal(t, "Local LM Error: bad", pe.Error())
	assert.ErrorIs(t, pe, cause)
	assert.Equal(t, KindResponseShapeInvalid, KindOf(pe))

	wrapped := fmt.Errorf("dispatch: %w", pe)
	assert.Equal(t, KindResponseShapeInvalid, KindOf(wrapped))

	var got *Error
	require.True(t, errors.As(wrapped, &got))
	assert.Equal(t, model.ProviderLocal, got.Provider)

	assert.Equal(t, KindGeneric, KindOf(errors.New("plain")))
	assert.Equal(t, "transport_unavailable", KindTransportUnavailable.String())
}

func TestIsConnectionRefused(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: &os.SyscallError{Syscall: "connect", Err: syscall.ECONNREFUSED}}

	assert.True(t, IsConnectionRefused(opErr))
	assert.True(t, IsConnectionRefused(fmt.Errorf("post: %w", opErr)))
	assert.True(t, IsConnectionRefused(errors.New("dial tcp 127.0.0.1:1234: connect: connection refused")))
	assert.False(t, IsConnectionRefused(errors.New("timeout")))
	assert.False(t, IsConnectionRefused(nil))

	assert.True(t, IsTransportFailure(opErr))
	assert.True(t, IsTransportFailure(&net.DNSError{Err: "no such host", Name: "x.invalid"}))
	assert.True(t, IsTransportFailure(fmt.Errorf("post: %w", context.DeadlineExceeded)))
	assert.False(t, IsTransportFailure(errors.New("status 500")))
	assert.False(t, IsTransportFailure(errors.New("json: unsupported value: NaN")))
}
