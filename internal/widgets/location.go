// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tomtom215/hearth/internal/models"
)

// DefaultLocationPrecision rounds coordinates to two decimals (about 1.1 km).
const DefaultLocationPrecision = 2

// LocationKey returns the weather poll key for a coordinate pair. Coordinates
// are rounded to precision decimals and printed in their shortest form, so
// (52.5, 13.4) and (52.5001, 13.3999) both become "52.5,13.4".
func LocationKey(lat, lon float64, precision int) string {
	return formatCoord(roundTo(lat, precision)) + "," + formatCoord(roundTo(lon, precision))
}

// LocationKeyFor returns the key for a saved location, or "" for nil.
func LocationKeyFor(loc *models.Location, precision int) string {
	if loc == nil {
		return ""
	}
	return LocationKey(loc.Latitude, loc.Longitude, precision)
}

// ParseLocationKey reverses LocationKey.
func ParseLocationKey(key string) (lat, lon float64, err error) {
	latStr, lonStr, ok := strings.Cut(key, ",")
	if !ok {
		return 0, 0, fmt.Errorf("invalid location key %q", key)
	}
	if lat, err = strconv.ParseFloat(latStr, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid latitude in location key %q: %w", key, err)
	}
	if lon, err = strconv.ParseFloat(lonStr, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid longitude in location key %q: %w", key, err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("location key %q out of range", key)
	}
	return lat, lon, nil
}

func roundTo(v float64, precision int) float64 {
	if precision < 0 {
		return v
	}
	p := math.Pow10(precision)
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // fold -0
	}
	return r
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
