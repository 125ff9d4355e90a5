// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package poll

import (
	"reflect"
	"testing"
)

func TestRegistryAddRemove(t *testing.T) {
	r := NewRegistry()

	if !r.Add("52.5,13.4", "u1") {
		t.Error("Expected first Add to report an empty key")
	}
	if r.Add("52.5,13.4", "u2") {
		t.Error("Expected second Add to report a non-empty key")
	}
	if got := r.Members("52.5,13.4"); !reflect.DeepEqual(got, []string{"u1", "u2"}) {
		t.Errorf("Expected [u1 u2], got %v", got)
	}

	if !r.Remove("52.5,13.4", "u1") {
		t.Error("Expected Remove of a member to succeed")
	}
	if r.Remove("52.5,13.4", "u1") {
		t.Error("Expected Remove of a non-member to report false")
	}
	if r.IsEmpty("52.5,13.4") {
		t.Error("Expected key to still have u2")
	}
	r.Remove("52.5,13.4", "u2")
	if !r.IsEmpty("52.5,13.4") {
		t.Error("Expected key to be empty")
	}
	if len(r.Keys()) != 0 {
		t.Errorf("Expected no keys, got %v", r.Keys())
	}
}

func TestRegistryReferenceCounting(t *testing.T) {
	r := NewRegistry()

	r.Add("u1", "u1")
	r.Add("u1", "u1")

	if got := r.Members("u1"); len(got) != 1 {
		t.Fatalf("Expected one distinct member, got %v", got)
	}
	r.Remove("u1", "u1")
	if !r.Contains("u1", "u1") {
		t.Fatal("Expected subscriber to survive while a reference remains")
	}
	r.Remove("u1", "u1")
	if r.Contains("u1", "u1") {
		t.Error("Expected subscriber to leave after its last reference")
	}
}

func TestRegistryRemoveAll(t *testing.T) {
	r := NewRegistry()
	r.Add("k", "b")
	r.Add("k", "a")
	r.Add("other", "c")

	removed := r.RemoveAll("k")
	if !reflect.DeepEqual(removed, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %v", removed)
	}
	if !r.IsEmpty("k") {
		t.Error("Expected k to be empty")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 remaining pair, got %d", r.Len())
	}
}

func TestRegistryDropAndKeysOf(t *testing.T) {
	r := NewRegistry()
	r.Add("k1", "u1")
	r.Add("k1", "u1")
	r.Add("k2", "u1")
	r.Add("k2", "u2")

	if got := r.Count("k1", "u1"); got != 2 {
		t.Errorf("Count = %d, want 2", got)
	}
	if !reflect.DeepEqual(r.KeysOf("u1"), []string{"k1", "k2"}) {
		t.Errorf("KeysOf(u1) = %v", r.KeysOf("u1"))
	}
	if n := r.Drop("k1", "u1"); n != 2 {
		t.Errorf("Drop returned %d, want 2", n)
	}
	if !r.IsEmpty("k1") {
		t.Error("k1 should be empty after dropping its only subscriber")
	}
	if n := r.Drop("k1", "u1"); n != 0 {
		t.Errorf("Second Drop returned %d, want 0", n)
	}
	if !reflect.DeepEqual(r.KeysOf("u1"), []string{"k2"}) {
		t.Errorf("KeysOf(u1) after drop = %v", r.KeysOf("u1"))
	}
}
