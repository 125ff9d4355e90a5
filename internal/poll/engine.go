// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package poll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hearth/internal/logging"
	"github.com/tomtom215/hearth/internal/metrics"
	"github.com/tomtom215/hearth/internal/upstream"
)

var (
	// ErrTargetGone is returned by a Fetcher when the key no longer has anything
	// to poll, for example a user who disconnected the integration. The engine
	// drops the key and its subscribers.
	ErrTargetGone = errors.New("poll target gone")

	// ErrEngineClosed is returned by Subscribe after the engine has shut down.
	ErrEngineClosed = errors.New("poll engine closed")
)

// Fetcher performs one upstream call for a key.
type Fetcher[S any] interface {
	Fetch(ctx context.Context, key string) (S, error)
}

// FetchFunc adapts a function to the Fetcher interface.
type FetchFunc[S any] func(ctx context.Context, key string) (S, error)

// Fetch calls f(ctx, key).
func (f FetchFunc[S]) Fetch(ctx context.Context, key string) (S, error) {
	return f(ctx, key)
}

// ChangeDetector reports whether next differs materially from prev.
type ChangeDetector[S any] func(prev, next S) bool

// Update is one snapshot handed to the Publisher. Direct updates deliver the
// cached snapshot to a single new subscriber and are not a state change.
type Update[S any] struct {
	Key         string
	Subscribers []string
	Snapshot    S
	Direct      bool
}

// Publisher receives every update the engine emits. Publish is called with
// the key's publish lock held and must not call back into the engine.
type Publisher[S any] interface {
	Publish(ctx context.Context, u Update[S]) error
}

// PublishFunc adapts a function to the Publisher interface.
type PublishFunc[S any] func(ctx context.Context, u Update[S]) error

// Publish calls f(ctx, u).
func (f PublishFunc[S]) Publish(ctx context.Context, u Update[S]) error {
	return f(ctx, u)
}

// Config configures one engine.
type Config struct {
	// Name identifies the widget kind in logs and metrics ("music", "weather").
	Name string

	// Interval between recurring polls of one key.
	Interval time.Duration

	// PollTimeout bounds a single Fetch. A timeout is a transient failure.
	PollTimeout time.Duration

	// Clock drives every timer. Defaults to the real clock.
	Clock clockwork.Clock
}

type entry[S any] struct {
	key    string
	ctx    context.Context
	cancel context.CancelFunc

	// publishMu serializes cache-compare-publish for the key. Lock order:
	// publishMu before Engine.mu.
	publishMu sync.Mutex

	// Guarded by Engine.mu.
	state     State
	ticker    clockwork.Ticker
	resume    clockwork.Timer
	resumeAt  time.Time
	cached    S
	hasCached bool
	stats     keyStats
}

type keyStats struct {
	lastAttempt         time.Time
	lastSuccess         time.Time
	lastError           string
	consecutiveFailures int
}

// Engine polls one kind of upstream for every subscribed key.
type Engine[S any] struct {
	cfg       Config
	clock     clockwork.Clock
	fetcher   Fetcher[S]
	changed   ChangeDetector[S]
	publisher Publisher[S]
	log       zerolog.Logger

	mu       sync.Mutex
	registry *Registry
	entries  map[string]*entry[S]
	dormant  map[string]keyStats
	closed   bool
}

// NewEngine creates an engine. Nothing is polled until the first Subscribe.
func NewEngine[S any](cfg Config, fetcher Fetcher[S], changed ChangeDetector[S], publisher Publisher[S]) *Engine[S] {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 10 * time.Second
	}
	return &Engine[S]{
		cfg:       cfg,
		clock:     cfg.Clock,
		fetcher:   fetcher,
		changed:   changed,
		publisher: publisher,
		log:       logging.WithComponent(cfg.Name + "-poller"),
		registry:  NewRegistry(),
		entries:   make(map[string]*entry[S]),
		dormant:   make(map[string]keyStats),
	}
}

// Name returns the widget kind this engine polls.
func (e *Engine[S]) Name() string {
	return e.cfg.Name
}

// Subscribe registers subscriber under key. The first subscriber of a key (or
// the first after the key was stopped) starts its timer and triggers an
// immediate poll in the background. Later subscribers join the running timer
// and receive the cached snapshot, if any, as a direct update.
func (e *Engine[S]) Subscribe(key, subscriber string) error {
	if key == "" || subscriber == "" {
		return fmt.Errorf("subscribe %s: key and subscriber are required", e.cfg.Name)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	e.registry.Add(key, subscriber)
	ent, running := e.entries[key]
	if !running {
		e.startLocked(key)
	}
	e.updateGaugesLocked()
	e.mu.Unlock()

	if running {
		e.deliverCached(ent, subscriber)
	}
	return nil
}

// Unsubscribe drops one reference of subscriber under key. When the key has
// no subscribers left its timer is cancelled and its cache dropped before
// Unsubscribe returns.
func (e *Engine[S]) Unsubscribe(key, subscriber string) error {
	if key == "" || subscriber == "" {
		return fmt.Errorf("unsubscribe %s: key and subscriber are required", e.cfg.Name)
	}

	e.mu.Lock()
	if !e.registry.Remove(key, subscriber) || !e.registry.IsEmpty(key) {
		e.updateGaugesLocked()
		e.mu.Unlock()
		return nil
	}
	delete(e.dormant, key)
	ent := e.entries[key]
	if ent != nil {
		e.teardownLocked(ent)
	}
	e.updateGaugesLocked()
	e.mu.Unlock()

	if ent != nil {
		// Wait out a publish that passed its liveness check before teardown.
		ent.publishMu.Lock()
		//nolint:staticcheck // empty critical section is the point
		ent.publishMu.Unlock()
		e.log.Debug().Str("key", key).Msg("Last subscriber left, polling stopped")
	}
	return nil
}

// Move transfers every reference subscriber holds on from to to, as if each
// were unsubscribed from from and subscribed to to. It is a no-op when
// subscriber is not registered under from.
func (e *Engine[S]) Move(from, to, subscriber string) error {
	if from == "" || to == "" || subscriber == "" {
		return fmt.Errorf("move %s: keys and subscriber are required", e.cfg.Name)
	}
	if from == to {
		return nil
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	n := e.registry.Drop(from, subscriber)
	if n == 0 {
		e.mu.Unlock()
		return nil
	}
	var stopped *entry[S]
	if e.registry.IsEmpty(from) {
		delete(e.dormant, from)
		if ent := e.entries[from]; ent != nil {
			e.teardownLocked(ent)
			stopped = ent
		}
	}
	for i := 0; i < n; i++ {
		e.registry.Add(to, subscriber)
	}
	ent, running := e.entries[to]
	if !running {
		e.startLocked(to)
	}
	e.updateGaugesLocked()
	e.mu.Unlock()

	if stopped != nil {
		stopped.publishMu.Lock()
		//nolint:staticcheck // wait for an in-flight publish on the old key
		stopped.publishMu.Unlock()
	}
	if running {
		e.deliverCached(ent, subscriber)
	}
	e.log.Debug().Str("from", from).Str("to", to).Str("subscriber", subscriber).Int("refs", n).Msg("Subscription moved")
	return nil
}

// Serve blocks until ctx is done and then stops every key. It lets the
// supervisor tree own the engine's lifetime.
func (e *Engine[S]) Serve(ctx context.Context) error {
	<-ctx.Done()
	e.Close()
	return ctx.Err()
}

// String identifies the engine in supervisor logs.
func (e *Engine[S]) String() string {
	return e.cfg.Name + "-poll-engine"
}

// Close stops every timer. Subsequent Subscribe calls fail with ErrEngineClosed.
func (e *Engine[S]) Close() {
	e.mu.Lock()
	e.closed = true
	for _, ent := range e.entries {
		e.teardownLocked(ent)
	}
	e.updateGaugesLocked()
	e.mu.Unlock()
}

// startLocked creates the key's entry and ticker and launches its poll loop.
// The ticker exists before Subscribe returns so the schedule starts at
// subscribe time.
func (e *Engine[S]) startLocked(key string) {
	ctx, cancel := context.WithCancel(context.Background())
	ent := &entry[S]{
		key:    key,
		ctx:    ctx,
		cancel: cancel,
		state:  StateActive,
		ticker: e.clock.NewTicker(e.cfg.Interval),
	}
	if stats, ok := e.dormant[key]; ok {
		ent.stats = stats
		delete(e.dormant, key)
	}
	e.entries[key] = ent
	e.log.Debug().Str("key", key).Dur("interval", e.cfg.Interval).Msg("Polling started")
	go e.run(ent, ent.ticker)
}

// teardownLocked removes ent and releases its timers.
func (e *Engine[S]) teardownLocked(ent *entry[S]) {
	if e.entries[ent.key] == ent {
		delete(e.entries, ent.key)
	}
	ent.cancel()
	ent.ticker.Stop()
	if ent.resume != nil {
		ent.resume.Stop()
		ent.resume = nil
	}
}

func (e *Engine[S]) updateGaugesLocked() {
	metrics.PollActiveKeys.WithLabelValues(e.cfg.Name).Set(float64(len(e.entries)))
	metrics.PollSubscribers.WithLabelValues(e.cfg.Name).Set(float64(e.registry.Len()))
}

// run polls immediately and then on every tick until the entry is torn down
// or a poll outcome ends this schedule.
func (e *Engine[S]) run(ent *entry[S], ticker clockwork.Ticker) {
	defer ticker.Stop()

	if !e.poll(ent) {
		return
	}
	for {
		select {
		case <-ent.ctx.Done():
			return
		case <-ticker.Chan():
			if !e.poll(ent) {
				return
			}
		}
	}
}

// poll performs one tick. It returns false when the current schedule must end.
func (e *Engine[S]) poll(ent *entry[S]) bool {
	if ent.ctx.Err() != nil {
		return false
	}

	start := e.clock.Now()
	ctx, cancel := context.WithTimeout(ent.ctx, e.cfg.PollTimeout)
	snapshot, err := e.fetcher.Fetch(ctx, ent.key)
	cancel()

	if ent.ctx.Err() != nil {
		return false
	}
	if err != nil {
		return e.handleFailure(ent, start, err)
	}
	e.commit(ent, start, snapshot)
	return true
}

// commit runs change detection and publishes material changes.
func (e *Engine[S]) commit(ent *entry[S], start time.Time, snapshot S) {
	ent.publishMu.Lock()
	defer ent.publishMu.Unlock()

	e.mu.Lock()
	if e.entries[ent.key] != ent {
		e.mu.Unlock()
		return
	}
	ent.stats.lastAttempt = start
	ent.stats.lastSuccess = e.clock.Now()
	ent.stats.lastError = ""
	ent.stats.consecutiveFailures = 0

	if ent.hasCached && !e.changed(ent.cached, snapshot) {
		e.mu.Unlock()
		metrics.RecordPoll(e.cfg.Name, "unchanged", e.clock.Since(start))
		return
	}
	ent.cached = snapshot
	ent.hasCached = true
	subscribers := e.registry.Members(ent.key)
	e.mu.Unlock()

	metrics.RecordPoll(e.cfg.Name, "changed", e.clock.Since(start))
	e.publish(ent, Update[S]{Key: ent.key, Subscribers: subscribers, Snapshot: snapshot})
}

// deliverCached sends the cached snapshot to one subscriber joining a running key.
func (e *Engine[S]) deliverCached(ent *entry[S], subscriber string) {
	ent.publishMu.Lock()
	defer ent.publishMu.Unlock()

	e.mu.Lock()
	if e.entries[ent.key] != ent || !ent.hasCached || !e.registry.Contains(ent.key, subscriber) {
		e.mu.Unlock()
		return
	}
	cached := ent.cached
	e.mu.Unlock()

	e.publish(ent, Update[S]{Key: ent.key, Subscribers: []string{subscriber}, Snapshot: cached, Direct: true})
}

func (e *Engine[S]) publish(ent *entry[S], u Update[S]) {
	scope := "broadcast"
	if u.Direct {
		scope = "direct"
	}
	if err := e.publisher.Publish(ent.ctx, u); err != nil {
		e.log.Warn().Err(err).Str("key", u.Key).Str("scope", scope).Msg("Failed to publish snapshot")
		return
	}
	metrics.PollPublishes.WithLabelValues(e.cfg.Name, scope).Inc()
}

// handleFailure applies the failure policy. It returns false when the current
// schedule must end.
func (e *Engine[S]) handleFailure(ent *entry[S], start time.Time, err error) bool {
	if errors.Is(err, ErrTargetGone) {
		e.mu.Lock()
		var removed []string
		if e.entries[ent.key] == ent {
			removed = e.registry.RemoveAll(ent.key)
			e.teardownLocked(ent)
			e.updateGaugesLocked()
		}
		e.mu.Unlock()
		metrics.RecordPoll(e.cfg.Name, "gone", e.clock.Since(start))
		e.log.Info().Str("key", ent.key).Strs("subscribers", removed).Msg("Poll target gone, subscriptions dropped")
		return false
	}

	ue := upstream.Classify(err)
	metrics.RecordPoll(e.cfg.Name, ue.Kind.String(), e.clock.Since(start))

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.entries[ent.key] != ent {
		return false
	}
	ent.stats.lastAttempt = start
	ent.stats.lastError = err.Error()
	ent.stats.consecutiveFailures++

	switch ue.Kind {
	case upstream.KindUnauthorized:
		e.teardownLocked(ent)
		e.dormant[ent.key] = ent.stats
		e.updateGaugesLocked()
		e.log.Warn().Err(err).Str("key", ent.key).Msg("Credential rejected, polling stopped until resubscribe")
		return false

	case upstream.KindRateLimited:
		ent.ticker.Stop()
		ent.state = StatePaused
		ent.resumeAt = e.clock.Now().Add(ue.RetryAfter)
		ent.resume = e.clock.AfterFunc(ue.RetryAfter, func() { e.resumeAfterCooldown(ent) })
		e.log.Warn().Str("key", ent.key).Dur("retry_after", ue.RetryAfter).Msg("Rate limited, polling paused")
		return false

	default:
		e.log.Warn().Err(err).Str("key", ent.key).Int("consecutive_failures", ent.stats.consecutiveFailures).
			Msg("Poll failed, skipping tick")
		return true
	}
}

// resumeAfterCooldown restarts a paused key's recurring schedule with an
// immediate poll.
func (e *Engine[S]) resumeAfterCooldown(ent *entry[S]) {
	e.mu.Lock()
	if e.entries[ent.key] != ent || ent.state != StatePaused {
		e.mu.Unlock()
		return
	}
	ent.state = StateActive
	ent.resume = nil
	ent.resumeAt = time.Time{}
	ticker := e.clock.NewTicker(e.cfg.Interval)
	ent.ticker = ticker
	e.mu.Unlock()

	e.log.Info().Str("key", ent.key).Msg("Cool-down elapsed, polling resumed")
	e.run(ent, ticker)
}
