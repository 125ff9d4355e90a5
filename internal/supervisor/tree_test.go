// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tomtom215/hearth/internal/config"
	"github.com/tomtom215/hearth/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "error", Output: io.Discard})
}

// fakeService counts starts and fails its first failures runs.
type fakeService struct {
	name     string
	failures int32
	starts   atomic.Int32
	started  chan struct{}
}

func newFakeService(name string, failures int32) *fakeService {
	return &fakeService{name: name, failures: failures, started: make(chan struct{}, 16)}
}

func (s *fakeService) Serve(ctx context.Context) error {
	n := s.starts.Add(1)
	select {
	case s.started <- struct{}{}:
	default:
	}
	if n <= s.failures {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *fakeService) String() string { return s.name }

func (s *fakeService) waitStarts(t *testing.T, n int32) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for s.starts.Load() < n {
		select {
		case <-s.started:
		case <-deadline:
			t.Fatalf("%s started %d times, want %d", s.name, s.starts.Load(), n)
		}
	}
}

func testLogger() *slog.Logger {
	return logging.NewSlogLogger()
}

func TestNewSupervisorTreeDefaults(t *testing.T) {
	tree, err := NewSupervisorTree(testLogger(), TreeConfig{})
	if err != nil {
		t.Fatalf("NewSupervisorTree() error = %v", err)
	}
	if tree.Root() == nil {
		t.Fatal("Root() is nil")
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults %+v", tree.config, DefaultTreeConfig())
	}
}

func TestTreeConfigFrom(t *testing.T) {
	got := TreeConfigFrom(config.SupervisorConfig{
		FailureThreshold: 3,
		FailureDecay:     10,
		FailureBackoff:   time.Second,
		ShutdownTimeout:  2 * time.Second,
	})
	want := TreeConfig{FailureThreshold: 3, FailureDecay: 10, FailureBackoff: time.Second, ShutdownTimeout: 2 * time.Second}
	if got != want {
		t.Errorf("TreeConfigFrom() = %+v, want %+v", got, want)
	}
}

func TestSupervisorTreeRunsBothLayers(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{ShutdownTimeout: time.Second})
	msg := newFakeService("engine", 0)
	api := newFakeService("http", 0)
	tree.AddMessagingService(msg)
	tree.AddAPIService(api)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	msg.waitStarts(t, 1)
	api.waitStarts(t, 1)
	cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not shut down")
	}
}

func TestSupervisorTreeRestartsFailingService(t *testing.T) {
	tree, _ := NewSupervisorTree(testLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	failing := newFakeService("weather-engine", 2)
	stable := newFakeService("hub", 0)
	tree.AddMessagingService(failing)
	tree.AddAPIService(stable)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := tree.ServeBackground(ctx)

	failing.waitStarts(t, 3)
	stable.waitStarts(t, 1)
	if got := stable.starts.Load(); got != 1 {
		t.Errorf("stable service started %d times, want 1", got)
	}

	cancel()
	<-errCh
}
