// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package upstream

import (
	"errors"
	"io"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/hearth/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestBreakerOpensOnTransientFailures(t *testing.T) {
	b := NewBreaker("test-transient", testBreakerConfig())

	for i := 0; i < 2; i++ {
		_, err := Execute(b, func() (int, error) { return 0, Transient(errors.New("boom")) })
		if err == nil {
			t.Fatal("Expected error from failing call")
		}
	}

	if b.State() != "open" {
		t.Fatalf("Expected breaker to be open, got %s", b.State())
	}

	calls := 0
	_, err := Execute(b, func() (int, error) { calls++; return 1, nil })
	if calls != 0 {
		t.Error("Expected open breaker to reject without calling fn")
	}
	if !IsKind(err, KindTransient) {
		t.Errorf("Expected transient rejection, got %v", err)
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected rejection to wrap ErrOpenState, got %v", err)
	}
}

func TestBreakerIgnoresUnauthorizedAndRateLimited(t *testing.T) {
	b := NewBreaker("test-auth", testBreakerConfig())

	for i := 0; i < 5; i++ {
		_, err := Execute(b, func() (int, error) { return 0, Unauthorized(errors.New("401")) })
		if !IsKind(err, KindUnauthorized) {
			t.Fatalf("Expected unauthorized passthrough, got %v", err)
		}
		_, err = Execute(b, func() (int, error) { return 0, RateLimited(time.Second, nil) })
		if !IsKind(err, KindRateLimited) {
			t.Fatalf("Expected rate limited passthrough, got %v", err)
		}
	}

	if b.State() != "closed" {
		t.Errorf("Expected breaker to stay closed, got %s", b.State())
	}
}

func TestExecuteReturnsTypedResult(t *testing.T) {
	b := NewBreaker("test-typed", testBreakerConfig())

	got, err := Execute(b, func() (string, error) { return "ok", nil })
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "ok" {
		t.Errorf("Expected ok, got %q", got)
	}
}
