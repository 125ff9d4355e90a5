// Hearth - Smart Display Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hearth

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordPoll(t *testing.T) {
	before := testutil.ToFloat64(PollsTotal.WithLabelValues("music", "changed"))

	RecordPoll("music", "changed", 120*time.Millisecond)
	RecordPoll("music", "changed", 80*time.Millisecond)

	after := testutil.ToFloat64(PollsTotal.WithLabelValues("music", "changed"))
	if after-before != 2 {
		t.Errorf("Expected counter to grow by 2, got %v", after-before)
	}
}

func TestRecordStorageOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{"success", nil, "success"},
		{"failure", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := StorageOperations.WithLabelValues("upload", tt.result)
			before := testutil.ToFloat64(c)
			RecordStorageOperation("upload", tt.err)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("Expected %s counter to grow by 1, got %v", tt.result, got)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("Expected %v active requests, got %v", before+1, got)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("Expected %v active requests, got %v", before, got)
	}
}
