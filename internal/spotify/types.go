// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package spotify

import (
	"time"

	"github.com/tomtom215/hearth/internal/models"
)

type currentlyPlayingResponse struct {
	IsPlaying            bool       `json:"is_playing"`
	ProgressMs           int        `json:"progress_ms"`
	CurrentlyPlayingType string     `json:"currently_playing_type"`
	Item                 *trackItem `json:"item"`
	Device               *device    `json:"device"`
}

type trackItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	DurationMs int      `json:"duration_ms"`
	Artists    []artist `json:"artists"`
	Album      *album   `json:"album"`
	// Episodes carry a show instead of an album.
	Show *album `json:"show"`
}

type artist struct {
	Name string `json:"name"`
}

type album struct {
	Name   string  `json:"name"`
	Images []image `json:"images"`
}

type image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type device struct {
	Name string `json:"name"`
}

func (r currentlyPlayingResponse) toSnapshot(now time.Time) models.MusicSnapshot {
	snap := models.MusicSnapshot{
		Playing:    r.IsPlaying,
		ProgressMs: r.ProgressMs,
		FetchedAt:  now,
	}
	if r.Device != nil {
		snap.Device = r.Device.Name
	}
	if r.Item == nil || r.Item.ID == "" {
		return snap
	}

	track := &models.Track{
		ID:         r.Item.ID,
		Name:       r.Item.Name,
		DurationMs: r.Item.DurationMs,
	}
	for _, a := range r.Item.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	container := r.Item.Album
	if container == nil {
		container = r.Item.Show
	}
	if container != nil {
		track.Album = container.Name
		if len(container.Images) > 0 {
			track.ImageURL = container.Images[0].URL
		}
	}
	snap.Item = track
	return snap
}
