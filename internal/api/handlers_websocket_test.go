// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckWebSocketOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"missing origin", []string{"*"}, "", false},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"listed origin", []string{"http://display.local"}, "http://display.local", true},
		{"unlisted origin", []string{"http://display.local"}, "http://evil.example", false},
		{"no origins configured", nil, "http://display.local", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(Deps{Origins: tt.allowed})
			r := httptest.NewRequest(http.MethodGet, "/api/v1/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := h.checkWebSocketOrigin(r); got != tt.want {
				t.Errorf("checkWebSocketOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWebSocketWithoutHub(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("pete")

	resp, body := env.do(http.MethodGet, "/api/v1/ws?token="+token, "", nil)
	if resp.StatusCode != http.StatusServiceUnavailable || body.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("status %d error %+v, want 503", resp.StatusCode, body.Error)
	}
}
