// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package metrics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

// histogramCount reads the sample count of one histogram series.
func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("%T is not a prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordDBQuery_CountsErrorsOnly(t *testing.T) {
	before := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "metrics_test", "timeout"))

	RecordDBQuery("select", "metrics_test", 10*time.Millisecond, nil)
	RecordDBQuery("select", "metrics_test", 10*time.Millisecond, fmt.Errorf("query: %w", context.DeadlineExceeded))

	after := testutil.ToFloat64(DBQueryErrors.WithLabelValues("select", "metrics_test", "timeout"))
	if after-before != 1 {
		t.Errorf("timeout errors increased by %v, want 1", after-before)
	}
}

func TestRecordDBQuery_ObservesEveryQuery(t *testing.T) {
	series := DBQueryDuration.WithLabelValues("insert", "metrics_histogram_test")
	before := histogramCount(t, series)

	RecordDBQuery("insert", "metrics_histogram_test", 5*time.Millisecond, nil)
	RecordDBQuery("insert", "metrics_histogram_test", 5*time.Millisecond, errors.New("constraint violated"))

	if got := histogramCount(t, series) - before; got != 2 {
		t.Errorf("observations increased by %d, want 2", got)
	}
}

func TestClassifyDBError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"wrapped cancel", fmt.Errorf("x: %w", context.Canceled), "canceled"},
		{"constraint", errors.New("Constraint Error: duplicate key"), "constraint"},
		{"conflict", errors.New("Transaction conflict on update"), "conflict"},
		{"short", errors.New("boom"), "boom"},
		{"truncated", errors.New(strings.Repeat("x", 80)), strings.Repeat("x", maxErrorTypeLength)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyDBError(tt.err); got != tt.want {
				t.Errorf("classifyDBError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("GET", "/api/movies", "200")
	before := testutil.ToFloat64(counter)

	RecordAPIRequest("GET", "/api/movies", "200", 25*time.Millisecond)
	RecordAPIRequest("GET", "/api/movies", "200", 5*time.Millisecond)

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("api_requests_total increased by %v, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("after inc gauge = %v, want %v", got, before+1)
	}
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("after dec gauge = %v, want %v", got, before)
	}
}

func TestRecordTMDBRequest_StatusLabel(t *testing.T) {
	ok := TMDBRequestsTotal.WithLabelValues("/search/movie", "200")
	failed := TMDBRequestsTotal.WithLabelValues("/search/movie", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	RecordTMDBRequest("/search/movie", 200, time.Millisecond)
	RecordTMDBRequest("/search/movie", 0, time.Millisecond)

	if testutil.ToFloat64(ok)-okBefore != 1 {
		t.Error("expected one 200 observation")
	}
	if testutil.ToFloat64(failed)-failedBefore != 1 {
		t.Error("expected one transport error observation")
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits := CacheHits.WithLabelValues("metrics_test")
	misses := CacheMisses.WithLabelValues("metrics_test")

	RecordCacheLookup("metrics_test", true)
	RecordCacheLookup("metrics_test", true)
	RecordCacheLookup("metrics_test", false)
	SetCacheEntries("metrics_test", 7)

	if got := testutil.ToFloat64(hits); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(misses); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(CacheEntries.WithLabelValues("metrics_test")); got != 7 {
		t.Errorf("entries = %v, want 7", got)
	}
}

func TestAuthCounters(t *testing.T) {
	success := AuthLoginAttempts.WithLabelValues("metrics_test", "success")
	failure := AuthLoginAttempts.WithLabelValues("metrics_test", "failure")

	RecordLoginAttempt("metrics_test", true)
	RecordLoginAttempt("metrics_test", false)
	RecordLoginAttempt("metrics_test", false)

	if testutil.ToFloat64(success) != 1 || testutil.ToFloat64(failure) != 2 {
		t.Errorf("login attempts success=%v failure=%v", testutil.ToFloat64(success), testutil.ToFloat64(failure))
	}

	sent := MailMessagesSent.WithLabelValues("metrics_test", "failure")
	RecordMailSent("metrics_test", errors.New("smtp down"))
	if testutil.ToFloat64(sent) != 1 {
		t.Error("expected one failed mail")
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test-version")
	if got := testutil.CollectAndCount(AppInfo); got < 1 {
		t.Errorf("app_info series = %d, want >= 1", got)
	}
	UpdateUptime(time.Now().Add(-time.Minute))
	if got := testutil.ToFloat64(AppUptime); got < 59 {
		t.Errorf("uptime = %v, want >= 59", got)
	}
}
