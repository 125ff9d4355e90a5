// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"unauthorized", Unauthorized(errors.New("401")), KindUnauthorized},
		{"wrapped unauthorized", fmt.Errorf("poll: %w", Unauthorized(errors.New("401"))), KindUnauthorized},
		{"rate limited", RateLimited(5*time.Second, nil), KindRateLimited},
		{"refresh failed", fmt.Errorf("refresh: %w", ErrCredentialRefreshFailed), KindUnauthorized},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"unknown", errors.New("connection reset"), KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Kind != tt.want {
				t.Errorf("Classify(%v).Kind = %s, want %s", tt.err, got.Kind, tt.want)
			}
		})
	}

	if Classify(nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestRateLimitedDefault(t *testing.T) {
	if got := RateLimited(0, nil).RetryAfter; got != DefaultRetryAfter {
		t.Errorf("Expected default retry after %s, got %s", DefaultRetryAfter, got)
	}
	if got := RateLimited(7*time.Second, nil).RetryAfter; got != 7*time.Second {
		t.Errorf("Expected 7s, got %s", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"missing", "", 0},
		{"seconds", "5", 5 * time.Second},
		{"negative", "-3", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			if got := ParseRetryAfter(h, now); got != tt.want {
				t.Errorf("ParseRetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
			}
		})
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusBadGateway, KindTransient},
		{http.StatusInternalServerError, KindTransient},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			resp := &http.Response{StatusCode: tt.status, Header: http.Header{}}
			resp.Header.Set("Retry-After", "12")
			got := FromStatus(resp, time.Now(), errors.New("status"))
			if got.Kind != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Kind)
			}
			if got.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, got.StatusCode)
			}
			if tt.want == KindRateLimited && got.RetryAfter != 12*time.Second {
				t.Errorf("Expected retry after 12s, got %s", got.RetryAfter)
			}
		})
	}
}
