// Copyright (c) 2025 NexuBible
// SPDX-License-Identifier: AGPL-3.0-or-later

package gemini

import "fmt"

// =============================================================================
// FAILURE TAXONOMY
// =============================================================================

// Kind classifies a gateway failure. Callers branch on the kind; Message
// carries the user-facing Romanian text.
type Kind int

const (
	// KindConfiguration means no usable credential is configured; no
	// request was sent.
	KindConfiguration Kind = iota

	// KindNotEntitled means the caller's entitlement gate refused the
	// operation; no request was sent.
	KindNotEntitled

	// KindTimeout means the transport gave up waiting.
	KindTimeout

	// KindOffline means no connectivity to the endpoint.
	KindOffline

	// KindAuth means the credential was rejected (401/403).
	KindAuth

	// KindRateLimited means the endpoint returned 429.
	KindRateLimited

	// KindServerUnavailable means a 5xx status.
	KindServerUnavailable

	// KindUnexpectedStatus means any other non-200 status.
	KindUnexpectedStatus

	// KindUnexpectedFormat means the response envelope or payload could
	// not be decoded.
	KindUnexpectedFormat
)

// String returns the kind's identifier for logs.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindNotEntitled:
		return "not_entitled"
	case KindTimeout:
		return "timeout"
	case KindOffline:
		return "offline"
	case KindAuth:
		return "auth"
	case KindRateLimited:
		return "rate_limited"
	case KindServerUnavailable:
		return "server_unavailable"
	case KindUnexpectedStatus:
		return "unexpected_status"
	case KindUnexpectedFormat:
		return "unexpected_format"
	default:
		return "unknown"
	}
}

// Error is a classified gateway failure.
type Error struct {
	Kind    Kind
	Message string // User-facing, Romanian.
	Status  int    // HTTP status when one was received, else 0.

	// QuotaExhausted refines KindRateLimited: true when the body signals
	// exhausted quota rather than simple throttling.
	QuotaExhausted bool

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gemini: %s (HTTP %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini: %s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying transport or decode error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Retryable reports whether a later attempt could plausibly succeed.
// Auth, configuration and format failures never heal on retry.
func (e *Error) Retryable() bool {
	return e.Kind == KindTimeout || e.Kind == KindServerUnavailable
}
