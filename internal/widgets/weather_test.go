// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package widgets

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/tomtom215/hearth/internal/events"
	"github.com/tomtom215/hearth/internal/models"
	"github.com/tomtom215/hearth/internal/poll"
)

type fakeWeather struct {
	lat, lon float64
}

func (f *fakeWeather) GetCurrent(_ context.Context, lat, lon float64) (models.WeatherSnapshot, error) {
	f.lat, f.lon = lat, lon
	return models.WeatherSnapshot{Latitude: lat, Longitude: lon, Temperature: 7.5, Condition: "Clouds"}, nil
}

func TestWeatherSourceParsesKey(t *testing.T) {
	client := &fakeWeather{}
	src := NewWeatherSource(client)

	snap, err := src.Fetch(context.Background(), "52.5,13.4")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if client.lat != 52.5 || client.lon != 13.4 || snap.Condition != "Clouds" {
		t.Errorf("Unexpected call (%v,%v) -> %+v", client.lat, client.lon, snap)
	}

	if _, err := src.Fetch(context.Background(), "not-a-key"); !errors.Is(err, poll.ErrTargetGone) {
		t.Errorf("Malformed key should be a gone target, got %v", err)
	}
}

func TestWeatherEnginePublishesToBus(t *testing.T) {
	bus := events.NewBus(events.DefaultConfig(), nil)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, events.KindWeatherStateUpdated)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	engine := NewWeatherEngine(EngineConfig{Clock: clockwork.NewFakeClock()}, NewWeatherSource(&fakeWeather{}), bus)
	t.Cleanup(engine.Close)

	_ = engine.Subscribe("52.5,13.4", "u1")
	_ = engine.Subscribe("52.5,13.4", "u2")

	select {
	case ev := <-ch:
		w, ok := ev.(events.WeatherStateUpdated)
		if !ok {
			t.Fatalf("Unexpected event %T", ev)
		}
		if w.LocationKey != "52.5,13.4" || w.Snapshot.Temperature != 7.5 {
			t.Errorf("Unexpected event %+v", w)
		}
		if !w.Targets("u1") {
			t.Error("Event should target u1")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for weather event")
	}
}

func TestMusicEnginePublishesToBus(t *testing.T) {
	bus := events.NewBus(events.DefaultConfig(), nil)
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bus.Subscribe(ctx, events.KindMusicStateUpdated)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	src := poll.FetchFunc[models.MusicSnapshot](func(context.Context, string) (models.MusicSnapshot, error) {
		return playing("song-a", true, 0), nil
	})
	engine := NewMusicEngine(EngineConfig{Clock: clockwork.NewFakeClock()}, src, bus)
	t.Cleanup(engine.Close)

	_ = engine.Subscribe("u1", "u1")

	select {
	case ev := <-ch:
		m := ev.(events.MusicStateUpdated)
		if m.UserID != "u1" || m.Snapshot.ItemID() != "song-a" {
			t.Errorf("Unexpected event %+v", m)
		}
		if !reflect.DeepEqual(m.Subscribers, []string{"u1"}) {
			t.Errorf("Subscribers = %v", m.Subscribers)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for music event")
	}
}
