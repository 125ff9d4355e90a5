// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"
)

func TestWatermillAdapter(t *testing.T) {
	capture(t, "debug")
	var buf bytes.Buffer
	adapter := NewWatermillAdapterWithLogger(zerolog.New(&buf))

	adapter.Info("subscriber started", watermill.LogFields{"topic": "user.profile.updated"})
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("watermill info should be written at debug: %s", buf.String())
	}
	adapter.Error("publish failed", errors.New("closed"), watermill.LogFields{"topic": "music.state.updated"})

	output := buf.String()
	for _, want := range []string{
		`"message":"subscriber started"`,
		`"topic":"user.profile.updated"`,
		`"level":"error"`,
		`"error":"closed"`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestWatermillAdapterWith(t *testing.T) {
	capture(t, "debug")
	var buf bytes.Buffer
	base := NewWatermillAdapterWithLogger(zerolog.New(&buf))

	child := base.With(watermill.LogFields{"pubsub": "gochannel"})
	child.Info("ready", watermill.LogFields{"subscribers": 2})

	output := buf.String()
	if !strings.Contains(output, `"pubsub":"gochannel"`) || !strings.Contains(output, `"subscribers":2`) {
		t.Errorf("expected inherited and call fields, got: %s", output)
	}

	buf.Reset()
	base.Info("plain", nil)
	if strings.Contains(buf.String(), "pubsub") {
		t.Errorf("With should not modify the parent adapter: %s", buf.String())
	}
}

func TestWatermillAdapterLowLevels(t *testing.T) {
	capture(t, "trace")
	var buf bytes.Buffer
	adapter := NewWatermillAdapterWithLogger(zerolog.New(&buf))

	adapter.Trace("message published", watermill.LogFields{"uuid": "m-1"})
	if !strings.Contains(buf.String(), `"level":"trace"`) || !strings.Contains(buf.String(), `"uuid":"m-1"`) {
		t.Errorf("expected trace entry with fields, got: %s", buf.String())
	}

	buf.Reset()
	adapter.Debug("subscriber closed", nil)
	if !strings.Contains(buf.String(), `"level":"debug"`) {
		t.Errorf("expected debug entry, got: %s", buf.String())
	}
}

func TestWatermillAdapterImplementsInterface(t *testing.T) {
	var _ watermill.LoggerAdapter = NewWatermillAdapter()
}
