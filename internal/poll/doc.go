// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

/*
Package poll implements the shared polling and fan-out engine behind the live
widgets.

One Engine exists per widget kind (music keyed by user ID, weather keyed by
a rounded location). For every key with at least one subscriber the engine
owns exactly one recurring timer, the last published snapshot, and the
failure state. Subscribers sharing a key share one upstream call per tick.

Per-key state machine:

	inactive --subscribe--> active --rate limited--> paused --retry-after--> active
	                          |  \--unauthorized--> stopped (subscribers kept, dormant)
	                          \--last unsubscribe / target gone--> inactive

Each key is polled by a single goroutine, so at most one poll per key is in
flight. Cache comparison and publishing are serialized per key, and
Unsubscribe does not return while a publish for that key is in progress:
once it returns nothing more is published for the key.

Upstream failures never reach callers of Subscribe or Unsubscribe. They are
classified with the upstream package and handled inside the tick:

  - unauthorized (or a failed credential refresh): the timer and cache are torn down and the key is stopped
  - rate limited: the timer is cancelled and a one-shot resume fires after the retry-after delay
  - anything else: logged, the tick is skipped
  - ErrTargetGone: the key is dropped together with its subscribers
*/
package poll
