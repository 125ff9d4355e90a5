// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import "github.com/tomtom215/hearth/internal/models"

// MusicChanged reports a material playback change: a different item or a
// flipped playing flag. Progress alone never counts.
func MusicChanged(prev, next models.MusicSnapshot) bool {
	return prev.ItemID() != next.ItemID() || prev.Playing != next.Playing
}

// WeatherChanged treats every successful poll as material.
func WeatherChanged(_, _ models.WeatherSnapshot) bool {
	return true
}
