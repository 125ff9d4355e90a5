// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// capture routes the global logger into a buffer for the test.
func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(Config{Level: level, Format: "json", Output: &buf})
	t.Cleanup(func() { Init(DefaultConfig()) })
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Caller {
		t.Error("expected default caller to be false")
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestInit(t *testing.T) {
	buf := capture(t, "debug")

	Info().Str("widget", "music").Msg("test message")

	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected output to contain 'test message', got: %s", output)
	}
	if !strings.Contains(output, `"level":"info"`) {
		t.Errorf("expected output to contain level, got: %s", output)
	}
	if !strings.Contains(output, `"widget":"music"`) {
		t.Errorf("expected output to contain field, got: %s", output)
	}
}

func TestInitLevelFilters(t *testing.T) {
	buf := capture(t, "warn")

	Info().Msg("hidden")
	Warn().Msg("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info entry written at warn level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn entry missing: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"invalid", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestWithComponent(t *testing.T) {
	buf := capture(t, "info")

	logger := WithComponent("poll-engine")
	logger.Info().Msg("tick")

	if !strings.Contains(buf.String(), `"component":"poll-engine"`) {
		t.Errorf("expected component field, got: %s", buf.String())
	}
}

func TestCtxAddsContextFields(t *testing.T) {
	buf := capture(t, "info")

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithCorrelationID(ctx, "corr-1")
	ctx = ContextWithUserID(ctx, "user-1")
	Ctx(ctx).Info().Msg("handled")

	output := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"correlation_id":"corr-1"`, `"user_id":"user-1"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output: %s", want, output)
		}
	}
}

func TestCtxWithoutFields(t *testing.T) {
	buf := capture(t, "info")

	Ctx(context.Background()).Info().Msg("plain")

	if strings.Contains(buf.String(), "request_id") || strings.Contains(buf.String(), "user_id") {
		t.Errorf("unexpected context fields: %s", buf.String())
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" || UserIDFromContext(ctx) != "" {
		t.Error("empty context should carry no IDs")
	}

	ctx = ContextWithNewCorrelationID(ctx)
	first := CorrelationIDFromContext(ctx)
	if first == "" {
		t.Fatal("ContextWithNewCorrelationID() set no ID")
	}
	if second := CorrelationIDFromContext(ContextWithNewCorrelationID(ctx)); second == first {
		t.Error("correlation IDs should be unique")
	}

	if GenerateRequestID() == GenerateRequestID() {
		t.Error("request IDs should be unique")
	}
}

func TestSetLoggerAndErr(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))
	SetLevelString("error")

	Warn().Msg("dropped")
	Err(context.DeadlineExceeded).Msg("poll timed out")

	output := buf.String()
	if strings.Contains(output, "dropped") {
		t.Errorf("warn entry written at error level: %s", output)
	}
	if !strings.Contains(output, `"error":"context deadline exceeded"`) || !strings.Contains(output, `"time"`) {
		t.Errorf("expected error entry with timestamp, got: %s", output)
	}
}
