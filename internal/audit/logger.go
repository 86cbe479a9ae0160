// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package audit

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/reelview/internal/logging"
)

// Config holds configuration for the audit logger.
type Config struct {
	// BufferSize is the size of the async write buffer.
	BufferSize int

	// Retention is how long events are kept. Zero keeps them forever.
	Retention time.Duration

	// CleanupInterval is how often expired events are removed.
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BufferSize:      256,
		Retention:       90 * 24 * time.Hour,
		CleanupInterval: 24 * time.Hour,
	}
}

// Logger buffers audit events and writes them to a Store from Serve, which
// runs under the supervisor. A nil *Logger discards everything.
type Logger struct {
	config Config
	store  Store
	events chan *Event
}

// NewLogger creates an audit logger. Zero config fields take the defaults.
func NewLogger(store Store, config Config) *Logger {
	defaults := DefaultConfig()
	if config.BufferSize <= 0 {
		config.BufferSize = defaults.BufferSize
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = defaults.CleanupInterval
	}
	return &Logger{
		config: config,
		store:  store,
		events: make(chan *Event, config.BufferSize),
	}
}

// Serve writes queued events until ctx is canceled, then drains the buffer.
func (l *Logger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case event := <-l.events:
			l.write(event)
		case <-ticker.C:
			l.cleanup(ctx)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (l *Logger) String() string {
	return "audit-logger"
}

func (l *Logger) drain() {
	for {
		select {
		case event := <-l.events:
			l.write(event)
		default:
			return
		}
	}
}

// write persists an event with its own deadline so a drain after shutdown
// still completes.
func (l *Logger) write(event *Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.store.Save(ctx, event); err != nil {
		logging.Error().Err(err).Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Failed to save audit event")
	}
}

func (l *Logger) cleanup(ctx context.Context) {
	if l.config.Retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-l.config.Retention)
	count, err := l.store.Delete(ctx, cutoff)
	if err != nil {
		logging.Error().Err(err).Msg("Audit cleanup error")
		return
	}
	if count > 0 {
		logging.Info().Int64("count", count).Msg("Cleaned up old audit events")
	}
}

// Log queues an event. ID, Timestamp, Severity and Outcome are filled in
// when empty. A full buffer drops the event with a warning.
func (l *Logger) Log(event *Event) {
	if l == nil || event == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if event.Severity == "" {
		event.Severity = SeverityInfo
	}
	if event.Outcome == "" {
		event.Outcome = OutcomeSuccess
	}

	select {
	case l.events <- event:
	default:
		logging.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("Audit event buffer full, dropping event")
	}
}

// Record queues an event raised while serving r, filling Source and
// RequestID from the request.
func (l *Logger) Record(r *http.Request, event *Event) {
	if l == nil || event == nil {
		return
	}
	event.Source = SourceFromRequest(r)
	event.RequestID = logging.RequestIDFromContext(r.Context())
	l.Log(event)
}

// Query retrieves events matching the filter.
func (l *Logger) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	return l.store.Query(ctx, filter)
}

// Count returns the number of events matching the filter.
func (l *Logger) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return l.store.Count(ctx, filter)
}

// Metadata encodes v for Event.Metadata, returning an empty object on error.
func Metadata(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// SourceFromRequest creates a Source from an HTTP request. RemoteAddr is
// already rewritten by the RealIP middleware when a proxy header is present.
func SourceFromRequest(r *http.Request) Source {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return Source{
		IPAddress: ip,
		UserAgent: r.UserAgent(),
	}
}
