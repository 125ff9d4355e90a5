// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
)

func floatPtr(f float64) *float64 { return &f }

func TestGetMe(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.register("erin")

	resp, body := env.do(http.MethodGet, "/api/v1/users/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %+v", resp.StatusCode, body.Error)
	}
	var me models.UserView
	decodeData(t, body, &me)
	if me.ID != user.ID || me.Location != nil || me.SpotifyConnected {
		t.Errorf("me = %+v", me)
	}
	if body.Meta == nil || body.Meta.RequestID == "" {
		t.Errorf("meta = %+v, want a request id", body.Meta)
	}
}

func TestUpdateLocationPublishesProfileChange(t *testing.T) {
	env := newTestEnv(t)
	token, user := env.register("frank")
	updates := env.collect(events.KindUserProfileUpdated)

	resp, body := env.do(http.MethodPut, "/api/v1/users/me/location", token, LocationRequest{
		Latitude:  floatPtr(51.5074),
		Longitude: floatPtr(-0.1278),
		Name:      "London",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %+v", resp.StatusCode, body.Error)
	}
	var view models.UserView
	decodeData(t, body, &view)
	if view.Location == nil || view.Location.Name != "London" || view.Location.Latitude != 51.5074 {
		t.Errorf("location = %+v", view.Location)
	}

	ev, ok := expectEvent(t, updates).(events.UserProfileUpdated)
	if !ok {
		t.Fatal("expected UserProfileUpdated")
	}
	if ev.UserID != user.ID || ev.Previous.Location != nil || ev.Current.Location == nil {
		t.Errorf("event = %+v", ev)
	}

	// Stored: a fresh read returns the same location.
	_, body = env.do(http.MethodGet, "/api/v1/users/me", token, nil)
	var me models.UserView
	decodeData(t, body, &me)
	if me.Location == nil || *me.Location != *view.Location {
		t.Errorf("stored location = %+v, want %+v", me.Location, view.Location)
	}
}

func TestUpdateLocationValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("gina")

	tests := []struct {
		name string
		req  LocationRequest
	}{
		{"missing latitude", LocationRequest{Longitude: floatPtr(10)}},
		{"latitude out of range", LocationRequest{Latitude: floatPtr(91), Longitude: floatPtr(10)}},
		{"longitude out of range", LocationRequest{Latitude: floatPtr(10), Longitude: floatPtr(-181)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := env.do(http.MethodPut, "/api/v1/users/me/location", token, tt.req)
			if resp.StatusCode != http.StatusBadRequest || body.Error.Code != ErrCodeValidation {
				t.Errorf("status %d error %+v, want 400 VALIDATION_ERROR", resp.StatusCode, body.Error)
			}
		})
	}

	t.Run("zero coordinates are valid", func(t *testing.T) {
		resp, body := env.do(http.MethodPut, "/api/v1/users/me/location", token, LocationRequest{
			Latitude: floatPtr(0), Longitude: floatPtr(0),
		})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status %d error %+v", resp.StatusCode, body.Error)
		}
	})
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register("hank")
	updates := env.collect(events.KindUserProfileUpdated)

	want := models.Settings{Units: models.UnitsImperial, Clock24h: false, Theme: "light"}
	resp, body := env.do(http.MethodPut, "/api/v1/users/me/settings", token, SettingsRequest{
		Units: want.Units, Clock24h: want.Clock24h, Theme: want.Theme,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, error %+v", resp.StatusCode, body.Error)
	}
	var view models.UserView
	decodeData(t, body, &view)
	if view.Settings != want {
		t.Errorf("settings = %+v, want %+v", view.Settings, want)
	}

	ev := expectEvent(t, updates).(events.UserProfileUpdated)
	if ev.Previous.Settings != models.DefaultSettings() || ev.Current.Settings != want {
		t.Errorf("event settings %+v -> %+v", ev.Previous.Settings, ev.Current.Settings)
	}

	for _, bad := range []SettingsRequest{
		{Units: "kelvin", Theme: "dark"},
		{Units: "metric", Theme: "neon"},
		{Theme: "dark"},
	} {
		resp, body := env.do(http.MethodPut, "/api/v1/users/me/settings", token, bad)
		if resp.StatusCode != http.StatusBadRequest || body.Error.Code != ErrCodeValidation {
			t.Errorf("%+v: status %d error %+v", bad, resp.StatusCode, body.Error)
		}
	}
}

func TestProfileForDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	token, err := env.jwt.GenerateToken("ghost-id", "ghost", "user")
	if err != nil {
		t.Fatal(err)
	}
	resp, body := env.do(http.MethodGet, "/api/v1/users/me", token, nil)
	if resp.StatusCode != http.StatusNotFound || body.Error.Code != ErrCodeNotFound {
		t.Errorf("status %d error %+v, want 404", resp.StatusCode, body.Error)
	}
}
