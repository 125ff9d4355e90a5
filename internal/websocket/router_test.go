// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package websocket

import (
	"testing"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
)

type fakeConn struct {
	userID    string
	music     bool
	weather   bool
	user      models.UserView
	sent      []Message
	delivered map[events.Kind]string
}

func (f *fakeConn) UserID() string { return f.userID }

func (f *fakeConn) Wants(kind events.Kind) bool {
	switch kind {
	case events.KindMusicStateUpdated:
		return f.music
	case events.KindWeatherStateUpdated:
		return f.weather
	}
	return true
}

func (f *fakeConn) MarkDelivered(kind events.Kind, key string) bool {
	if f.delivered == nil {
		f.delivered = make(map[events.Kind]string)
	}
	seen := f.delivered[kind] == key
	f.delivered[kind] = key
	return seen
}

func (f *fakeConn) SetUser(v models.UserView) { f.user = v }

func (f *fakeConn) Send(m Message) bool {
	f.sent = append(f.sent, m)
	return true
}

func TestRouterMusic(t *testing.T) {
	snap := models.MusicSnapshot{Playing: true, Item: &models.Track{ID: "song-a"}}
	tests := []struct {
		name  string
		music bool
		ev    events.MusicStateUpdated
		want  int
	}{
		{"targeted", true, events.MusicStateUpdated{UserID: "u1", Subscribers: []string{"u1"}, Snapshot: snap}, 1},
		{"direct", true, events.MusicStateUpdated{UserID: "u1", Subscribers: []string{"u1"}, Snapshot: snap, Direct: true}, 1},
		{"other user", true, events.MusicStateUpdated{UserID: "u2", Subscribers: []string{"u2"}, Snapshot: snap}, 0},
		{"updates not requested", false, events.MusicStateUpdated{UserID: "u1", Subscribers: []string{"u1"}, Snapshot: snap}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := &fakeConn{userID: "u1", music: tt.music}
			NewRouter(conn).Route(tt.ev)
			if len(conn.sent) != tt.want {
				t.Fatalf("Expected %d messages, got %d", tt.want, len(conn.sent))
			}
			if tt.want == 1 && conn.sent[0].Type != MessageTypeMusicUpdate {
				t.Errorf("Type = %q", conn.sent[0].Type)
			}
		})
	}
}

func TestRouterWeatherUsesSubscriberList(t *testing.T) {
	ev := events.WeatherStateUpdated{LocationKey: "52.5,13.4", Subscribers: []string{"u1", "u2"}}

	for _, user := range []string{"u1", "u2"} {
		conn := &fakeConn{userID: user, weather: true}
		NewRouter(conn).Route(ev)
		if len(conn.sent) != 1 || conn.sent[0].Type != MessageTypeWeatherUpdate {
			t.Errorf("%s: expected one WEATHER_UPDATE, got %+v", user, conn.sent)
		}
	}

	outsider := &fakeConn{userID: "u3", weather: true}
	NewRouter(outsider).Route(ev)
	if len(outsider.sent) != 0 {
		t.Errorf("u3 is not a subscriber, got %+v", outsider.sent)
	}
}

func TestRouterDirectReplayOnlyForConnectionsWithoutSnapshot(t *testing.T) {
	snap := models.MusicSnapshot{Playing: true, Item: &models.Track{ID: "song-a"}}
	broadcast := events.MusicStateUpdated{UserID: "u1", Subscribers: []string{"u1"}, Snapshot: snap}
	replay := broadcast
	replay.Direct = true

	// The user's first connection already shows the song; a second one starts.
	first := &fakeConn{userID: "u1", music: true}
	firstRouter := NewRouter(first)
	firstRouter.Route(broadcast)

	second := &fakeConn{userID: "u1", music: true}
	NewRouter(second).Route(replay)
	firstRouter.Route(replay)

	if len(first.sent) != 1 {
		t.Errorf("Expected the replay to skip the connection that has the snapshot, got %d messages", len(first.sent))
	}
	if len(second.sent) != 1 || second.sent[0].Type != MessageTypeMusicUpdate {
		t.Errorf("Expected the starting connection to get the replay, got %+v", second.sent)
	}

	// Broadcasts always reach every connection.
	firstRouter.Route(broadcast)
	if len(first.sent) != 2 {
		t.Errorf("Expected broadcast forwarded, got %d messages", len(first.sent))
	}
}

func TestRouterDirectReplayForNewWeatherKey(t *testing.T) {
	conn := &fakeConn{userID: "u1", weather: true}
	r := NewRouter(conn)

	r.Route(events.WeatherStateUpdated{LocationKey: "52.5,13.4", Subscribers: []string{"u1"}})
	r.Route(events.WeatherStateUpdated{LocationKey: "52.5,13.4", Subscribers: []string{"u1"}, Direct: true})
	if len(conn.sent) != 1 {
		t.Fatalf("Expected replay of the same key dropped, got %d messages", len(conn.sent))
	}

	// A moved location replays the new key's cached conditions.
	r.Route(events.WeatherStateUpdated{LocationKey: "48.14,11.58", Subscribers: []string{"u1"}, Direct: true})
	if len(conn.sent) != 2 {
		t.Errorf("Expected replay for the new key forwarded, got %d messages", len(conn.sent))
	}
}

func TestRouterProfileUpdate(t *testing.T) {
	conn := &fakeConn{userID: "u1"}
	r := NewRouter(conn)

	r.Route(events.UserProfileUpdated{UserID: "u2", Current: models.UserView{ID: "u2"}})
	if len(conn.sent) != 0 || conn.user.ID != "" {
		t.Fatal("Another user's profile change must be ignored")
	}

	current := models.UserView{ID: "u1", Settings: models.Settings{Units: models.UnitsImperial}}
	r.Route(events.UserProfileUpdated{UserID: "u1", Current: current})
	if conn.user.Settings.Units != models.UnitsImperial {
		t.Error("Cached user view not refreshed")
	}
	if len(conn.sent) != 1 || conn.sent[0].Type != MessageTypeSettings {
		t.Errorf("Expected one SETTINGS message, got %+v", conn.sent)
	}
}
