// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the contract shared by every backend adapter,
// the closed registry that maps a model.ProviderID to its adapter, and the
// error taxonomy adapters use to report failures.
//
// # Error Kinds
//
//   - KindRateLimited: the backend throttled the request (cloud only; the
//     adapter degrades it to normal content)
//   - KindTransportUnavailable: the service could not be reached
//   - KindResponseShapeInvalid: a required response field was missing
//   - KindGeneric: anything else, passed through provider-qualified
//
// Adapters return *Error for every failure. Callers switch on KindOf(err)
// or use errors.As to inspect the provider and cause.
package provider
