// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jeranaias/polychat/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Kind categorizes adapter failures for handling.
type Kind int

const (
	KindGeneric Kind = iota
	KindRateLimited
	KindTransportUnavailable
	KindResponseShapeInvalid
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransportUnavailable:
		return "transport_unavailable"
	case KindResponseShapeInvalid:
		return "response_shape_invalid"
	default:
		return "generic"
	}
}

// Error is the failure type returned by every adapter.
// Message is already provider-qualified and is what the user sees.
type Error struct {
	Provider model.ProviderID
	Kind     Kind
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates an adapter error.
func NewError(p model.ProviderID, kind Kind, message string, cause error) *Error {
	return &Error{Provider: p, Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the Kind of err, or KindGeneric when err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindGeneric
}

// =============================================================================
// TRANSPORT CLASSIFICATION
// =============================================================================

// IsConnectionRefused reports whether err means nothing is listening on
// the target port.
func IsConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// IsTransportFailure reports whether err came from the network layer
// (dial, DNS, reset, timeout) rather than from an HTTP response or from
// building the request.
func IsTransportFailure(err error) bool {
	if err == nil {
		return false
	}
	if IsConnectionRefused(err) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
