// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

// Package upstream holds what the music and weather clients share: the
// failure taxonomy the poll engines act on, Retry-After parsing, and the
// circuit breaker wrapper.
package upstream

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an upstream failure by how a poller must react to it.
type Kind int

const (
	// KindTransient covers network errors, timeouts, 5xx and anything unknown.
	// The tick is skipped and polling continues.
	KindTransient Kind = iota
	// KindUnauthorized means the credential was rejected even after a refresh attempt.
	// Polling for the key stops until the subscriber resubscribes.
	KindUnauthorized
	// KindRateLimited means the upstream asked us to back off for RetryAfter.
	KindRateLimited
)

// String returns the label used in logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "transient"
	}
}

// DefaultRetryAfter is used when a 429 carries no usable Retry-After header.
const DefaultRetryAfter = 30 * time.Second

// ErrCredentialRefreshFailed marks a failed refresh-token exchange. Pollers treat it as unauthorized.
var ErrCredentialRefreshFailed = errors.New("credential refresh failed")

// Error is a classified upstream failure.
type Error struct {
	Kind       Kind
	RetryAfter time.Duration
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindRateLimited:
		return fmt.Sprintf("upstream rate limited (retry after %s): %v", e.RetryAfter, e.Err)
	default:
		return fmt.Sprintf("upstream %s: %v", e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Unauthorized wraps err as a permanent credential failure.
func Unauthorized(err error) *Error {
	return &Error{Kind: KindUnauthorized, Err: err}
}

// RateLimited wraps err as a rate-limit signal with the given cool-down.
// Non-positive durations fall back to DefaultRetryAfter.
func RateLimited(retryAfter time.Duration, err error) *Error {
	if retryAfter <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return &Error{Kind: KindRateLimited, RetryAfter: retryAfter, Err: err}
}

// Transient wraps err as a skippable failure.
func Transient(err error) *Error {
	return &Error{Kind: KindTransient, Err: err}
}

// Classify maps any error to an *Error. Refresh failures become unauthorized.
// Everything unclassified, including timeouts and an open circuit breaker, is transient.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}
	if errors.Is(err, ErrCredentialRefreshFailed) {
		return Unauthorized(err)
	}
	return Transient(err)
}

// IsKind reports whether err classifies as kind.
func IsKind(err error, kind Kind) bool {
	ue := Classify(err)
	return ue != nil && ue.Kind == kind
}
