// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// requestFields is the per-request logging state. Each ContextWith* call
// stores a modified copy, so parent contexts never see later changes.
type requestFields struct {
	requestID     string
	correlationID string
	userID        string
}

type fieldsKey struct{}

func fieldsFrom(ctx context.Context) requestFields {
	f, _ := ctx.Value(fieldsKey{}).(requestFields)
	return f
}

func withFields(ctx context.Context, update func(*requestFields)) context.Context {
	f := fieldsFrom(ctx)
	update(&f)
	return context.WithValue(ctx, fieldsKey{}, f)
}

// GenerateCorrelationID returns a short random ID for grouping the log lines
// of one unit of work.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *requestFields) { f.requestID = id })
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *requestFields) { f.correlationID = id })
}

// ContextWithNewCorrelationID is ContextWithCorrelationID with a fresh ID.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

// ContextWithUserID records the signed-in user for later log lines.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return withFields(ctx, func(f *requestFields) { f.userID = id })
}

func RequestIDFromContext(ctx context.Context) string { return fieldsFrom(ctx).requestID }
func CorrelationIDFromContext(ctx context.Context) string { return fieldsFrom(ctx).correlationID }
func UserIDFromContext(ctx context.Context) string { return fieldsFrom(ctx).userID }

// Ctx returns the global logger with whichever of request_id,
// correlation_id and user_id ctx carries.
func Ctx(ctx context.Context) *zerolog.Logger {
	f := fieldsFrom(ctx)
	c := Logger().With()
	for _, field := range [...]struct{ key, value string }{
		{"request_id", f.requestID},
		{"correlation_id", f.correlationID},
		{"user_id", f.userID},
	} {
		if field.value != "" {
			c = c.Str(field.key, field.value)
		}
	}
	l := c.Logger()
	return &l
}
