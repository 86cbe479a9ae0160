// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// DuckDBStore implements Store on the application database.
type DuckDBStore struct {
	db *sql.DB
}

// NewDuckDBStore creates a DuckDB-backed audit store. Call CreateTable once
// before use.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table if it doesn't exist.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS audit_events (
			id VARCHAR PRIMARY KEY,
			timestamp TIMESTAMP NOT NULL,
			type VARCHAR NOT NULL,
			severity VARCHAR NOT NULL,
			outcome VARCHAR NOT NULL,
			actor_id VARCHAR NOT NULL DEFAULT '',
			actor_name VARCHAR NOT NULL DEFAULT '',
			actor_role VARCHAR NOT NULL DEFAULT '',
			target_id VARCHAR,
			target_type VARCHAR,
			target_name VARCHAR,
			source_ip VARCHAR NOT NULL DEFAULT '',
			source_user_agent VARCHAR NOT NULL DEFAULT '',
			description VARCHAR NOT NULL DEFAULT '',
			metadata VARCHAR,
			request_id VARCHAR NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_type ON audit_events(type)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_events(actor_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_target_id ON audit_events(target_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create audit schema: %w", err)
		}
	}
	return nil
}

// Save persists an audit event.
func (s *DuckDBStore) Save(ctx context.Context, event *Event) error {
	var targetID, targetType, targetName *string
	if t := event.Target; t != nil {
		targetID, targetType, targetName = &t.ID, &t.Type, &t.Name
	}
	var metadata *string
	if len(event.Metadata) > 0 {
		m := string(event.Metadata)
		metadata = &m
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (
			id, timestamp, type, severity, outcome,
			actor_id, actor_name, actor_role,
			target_id, target_type, target_name,
			source_ip, source_user_agent,
			description, metadata, request_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Timestamp.UTC(), string(event.Type), string(event.Severity), string(event.Outcome),
		event.Actor.ID, event.Actor.Name, event.Actor.Role,
		targetID, targetType, targetName,
		event.Source.IPAddress, event.Source.UserAgent,
		event.Description, metadata, event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("failed to save audit event: %w", err)
	}
	return nil
}

// Query retrieves events matching the filter, newest first.
func (s *DuckDBStore) Query(ctx context.Context, filter QueryFilter) ([]Event, error) {
	filter = filter.normalized()
	where, args := buildFilterConditions(filter)
	query := `
		SELECT id, timestamp, type, severity, outcome,
			actor_id, actor_name, actor_role,
			target_id, target_type, target_name,
			source_ip, source_user_agent,
			description, metadata, request_id
		FROM audit_events` + where + `
		ORDER BY timestamp DESC, id
		LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit events: %w", err)
	}
	return events, nil
}

// Count returns the number of events matching the filter.
func (s *DuckDBStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	where, args := buildFilterConditions(filter)
	var count int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count audit events: %w", err)
	}
	return count, nil
}

// Delete removes events older than the cutoff.
func (s *DuckDBStore) Delete(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM audit_events WHERE timestamp < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete audit events: %w", err)
	}
	return result.RowsAffected()
}

// buildFilterConditions returns a WHERE clause (or "") and its arguments.
func buildFilterConditions(filter QueryFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			placeholders[i] = "?"
			args = append(args, string(t))
		}
		conditions = append(conditions, "type IN ("+strings.Join(placeholders, ",")+")")
	}
	conditions, args = appendStringCondition(conditions, args, "actor_id", filter.ActorID)
	conditions, args = appendStringCondition(conditions, args, "target_type", filter.TargetType)
	conditions, args = appendStringCondition(conditions, args, "target_id", filter.TargetID)
	if filter.Since != nil {
		conditions = append(conditions, "timestamp >= ?")
		args = append(args, filter.Since.UTC())
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func appendStringCondition(conditions []string, args []interface{}, column, value string) ([]string, []interface{}) {
	if value == "" {
		return conditions, args
	}
	return append(conditions, column+" = ?"), append(args, value)
}

func scanEvent(rows *sql.Rows) (*Event, error) {
	var (
		e                                Event
		typ, severity, outcome           string
		targetID, targetType, targetName sql.NullString
		metadata                         sql.NullString
	)
	if err := rows.Scan(
		&e.ID, &e.Timestamp, &typ, &severity, &outcome,
		&e.Actor.ID, &e.Actor.Name, &e.Actor.Role,
		&targetID, &targetType, &targetName,
		&e.Source.IPAddress, &e.Source.UserAgent,
		&e.Description, &metadata, &e.RequestID,
	); err != nil {
		return nil, fmt.Errorf("failed to scan audit event: %w", err)
	}
	e.Type = EventType(typ)
	e.Severity = Severity(severity)
	e.Outcome = Outcome(outcome)
	if targetID.Valid {
		e.Target = &Target{ID: targetID.String, Type: targetType.String, Name: targetName.String}
	}
	if metadata.Valid && metadata.String != "" {
		e.Metadata = json.RawMessage(metadata.String)
	}
	return &e, nil
}
