// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package poll

import "sort"

// Registry is a reference-counted set of subscribers per poll key.
// A subscriber added twice must be removed twice before it leaves the set,
// so two connections of one user can share a subscription.
//
// Registry is not safe for concurrent use; Engine guards it with its own mutex.
type Registry struct {
	sets map[string]map[string]int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]map[string]int)}
}

// Add registers one reference of subscriber under key.
// It reports whether key had no subscribers before the call.
func (r *Registry) Add(key, subscriber string) bool {
	set, ok := r.sets[key]
	if !ok {
		set = make(map[string]int)
		r.sets[key] = set
	}
	first := len(set) == 0
	set[subscriber]++
	return first
}

// Remove drops one reference of subscriber under key.
// It reports whether subscriber was registered at all.
func (r *Registry) Remove(key, subscriber string) bool {
	set, ok := r.sets[key]
	if !ok {
		return false
	}
	n, ok := set[subscriber]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(set, subscriber)
	} else {
		set[subscriber] = n - 1
	}
	if len(set) == 0 {
		delete(r.sets, key)
	}
	return true
}

// Drop removes every reference subscriber holds on key and returns how many
// there were.
func (r *Registry) Drop(key, subscriber string) int {
	set, ok := r.sets[key]
	if !ok {
		return 0
	}
	n := set[subscriber]
	delete(set, subscriber)
	if len(set) == 0 {
		delete(r.sets, key)
	}
	return n
}

// Count returns how many references subscriber holds on key.
func (r *Registry) Count(key, subscriber string) int {
	return r.sets[key][subscriber]
}

// RemoveAll drops every subscriber of key and returns who they were.
func (r *Registry) RemoveAll(key string) []string {
	members := r.Members(key)
	delete(r.sets, key)
	return members
}

// IsEmpty reports whether key has no subscribers.
func (r *Registry) IsEmpty(key string) bool {
	return len(r.sets[key]) == 0
}

// Contains reports whether subscriber holds at least one reference on key.
func (r *Registry) Contains(key, subscriber string) bool {
	_, ok := r.sets[key][subscriber]
	return ok
}

// Members returns the distinct subscribers of key in sorted order.
func (r *Registry) Members(key string) []string {
	set := r.sets[key]
	if len(set) == 0 {
		return nil
	}
	members := make([]string, 0, len(set))
	for sub := range set {
		members = append(members, sub)
	}
	sort.Strings(members)
	return members
}

// Keys returns every key with at least one subscriber, sorted.
func (r *Registry) Keys() []string {
	keys := make([]string, 0, len(r.sets))
	for k := range r.sets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KeysOf returns every key subscriber is registered under, sorted.
func (r *Registry) KeysOf(subscriber string) []string {
	var keys []string
	for k, set := range r.sets {
		if _, ok := set[subscriber]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of distinct (key, subscriber) pairs.
func (r *Registry) Len() int {
	n := 0
	for _, set := range r.sets {
		n += len(set)
	}
	return n
}
