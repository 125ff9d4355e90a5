// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package upstream

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseRetryAfter reads a Retry-After header (RFC 9110): either delay-seconds
// or an HTTP-date. Returns 0 when the header is missing or unparseable.
func ParseRetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// FromStatus classifies a non-2xx HTTP response. 401/403 are unauthorized,
// 429 is rate limited using Retry-After, everything else is transient.
func FromStatus(resp *http.Response, now time.Time, err error) *Error {
	var ue *Error
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		ue = Unauthorized(err)
	case http.StatusTooManyRequests:
		ue = RateLimited(ParseRetryAfter(resp.Header, now), err)
	default:
		ue = Transient(err)
	}
	ue.StatusCode = resp.StatusCode
	return ue
}
