// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"testing"

	"github.com/tomtom215/hearth/internal/models"
)

func TestLocationKey(t *testing.T) {
	tests := []struct {
		name      string
		lat, lon  float64
		precision int
		want      string
	}{
		{"shortest form", 52.5, 13.4, 2, "52.5,13.4"},
		{"float noise folds together", 52.500000001, 13.399999999, 2, "52.5,13.4"},
		{"rounds to precision", 48.13743, 11.57549, 2, "48.14,11.58"},
		{"negative", -33.8688, 151.2093, 2, "-33.87,151.21"},
		{"negative zero", -0.001, 0.001, 2, "0,0"},
		{"higher precision", 48.13743, 11.57549, 4, "48.1374,11.5755"},
		{"no rounding", 1.23456, 2.5, -1, "1.23456,2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocationKey(tt.lat, tt.lon, tt.precision); got != tt.want {
				t.Errorf("LocationKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLocationKeyFor(t *testing.T) {
	if got := LocationKeyFor(nil, 2); got != "" {
		t.Errorf("nil location should have empty key, got %q", got)
	}
	if got := LocationKeyFor(&models.Location{Latitude: 52.5, Longitude: 13.4}, 2); got != "52.5,13.4" {
		t.Errorf("LocationKeyFor = %q", got)
	}
}

func TestParseLocationKey(t *testing.T) {
	lat, lon, err := ParseLocationKey("52.5,13.4")
	if err != nil {
		t.Fatalf("ParseLocationKey failed: %v", err)
	}
	if lat != 52.5 || lon != 13.4 {
		t.Errorf("Parsed (%v, %v)", lat, lon)
	}

	for _, bad := range []string{"", "52.5", "x,13.4", "52.5,y", "91,0", "0,181"} {
		if _, _, err := ParseLocationKey(bad); err == nil {
			t.Errorf("ParseLocationKey(%q) should fail", bad)
		}
	}
}
