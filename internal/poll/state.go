// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package poll

import "time"

// State is the lifecycle state of one poll key.
type State string

const (
	// StateInactive: no subscribers, no timer.
	StateInactive State = "inactive"
	// StateActive: recurring timer running.
	StateActive State = "active"
	// StatePaused: rate limited, a one-shot resume is pending.
	StatePaused State = "paused"
	// StateStopped: credential rejected. Subscribers are kept but nothing is
	// polled until one of them subscribes again.
	StateStopped State = "stopped"
)

// KeyStatus describes one key for the admin status endpoint.
type KeyStatus struct {
	Key                 string    `json:"key"`
	State               State     `json:"state"`
	Subscribers         []string  `json:"subscribers"`
	HasSnapshot         bool      `json:"has_snapshot"`
	LastAttempt         time.Time `json:"last_attempt,omitempty"`
	LastSuccess         time.Time `json:"last_success,omitempty"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	ResumeAt            time.Time `json:"resume_at,omitempty"`
}

// State returns the current state of key.
func (e *Engine[S]) State(key string) State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked(key)
}

func (e *Engine[S]) stateLocked(key string) State {
	if ent, ok := e.entries[key]; ok {
		return ent.state
	}
	if !e.registry.IsEmpty(key) {
		return StateStopped
	}
	return StateInactive
}

// HasTimer reports whether key has a running or pending timer.
func (e *Engine[S]) HasTimer(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.entries[key]
	return ok
}

// ActiveKeys returns the number of keys with a running or pending timer.
func (e *Engine[S]) ActiveKeys() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// Subscribers returns the distinct subscribers of key.
func (e *Engine[S]) Subscribers(key string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Members(key)
}

// IsSubscribed reports whether subscriber is registered under key.
func (e *Engine[S]) IsSubscribed(key, subscriber string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.Contains(key, subscriber)
}

// KeysOf returns every key subscriber is registered under.
func (e *Engine[S]) KeysOf(subscriber string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.registry.KeysOf(subscriber)
}

// Cached returns the last published snapshot of key, if any.
func (e *Engine[S]) Cached(key string) (S, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ent, ok := e.entries[key]; ok && ent.hasCached {
		return ent.cached, true
	}
	var zero S
	return zero, false
}

// Status returns one entry per key that has subscribers, sorted by key.
func (e *Engine[S]) Status() []KeyStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	keys := e.registry.Keys()
	out := make([]KeyStatus, 0, len(keys))
	for _, key := range keys {
		st := KeyStatus{
			Key:         key,
			State:       e.stateLocked(key),
			Subscribers: e.registry.Members(key),
		}
		var stats keyStats
		if ent, ok := e.entries[key]; ok {
			stats = ent.stats
			st.HasSnapshot = ent.hasCached
			st.ResumeAt = ent.resumeAt
		} else {
			stats = e.dormant[key]
		}
		st.LastAttempt = stats.lastAttempt
		st.LastSuccess = stats.lastSuccess
		st.LastError = stats.lastError
		st.ConsecutiveFailures = stats.consecutiveFailures
		out = append(out, st)
	}
	return out
}
