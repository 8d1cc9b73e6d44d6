// DateAI Discover - Event Aggregation and Map Clustering
// Copyright 2026 The DateAI Discover Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bestfriendai/date-ai-discover

package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordProviderCall(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("metrics-test", "timeout"))
	RecordProviderCall("metrics-test", "timeout", 0, 2*time.Second)
	after := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("metrics-test", "timeout"))
	if after-before != 1 {
		t.Errorf("provider counter delta = %v, want 1", after-before)
	}

	RecordProviderCall("metrics-test", "success", 7, 100*time.Millisecond)
	if got := testutil.ToFloat64(ProviderEventsTotal.WithLabelValues("metrics-test")); got != 7 {
		t.Errorf("events total = %v, want 7", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 1 {
		t.Errorf("active requests delta = %v, want 1", got)
	}
	TrackActiveRequest(false)
}

func TestRecordSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("cached"))
	RecordSearch("cached", 12, 3*time.Millisecond)
	if got := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("cached")) - before; got != 1 {
		t.Errorf("cached search delta = %v", got)
	}
}
