// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/tomtom215/reelview/internal/audit"
	"github.com/tomtom215/reelview/internal/auth"
	"github.com/tomtom215/reelview/internal/models"
)

// AuditPage is the body of GET /api/admin/audit.
type AuditPage struct {
	Events []audit.Event `json:"events"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// SetAuditLogger enables the moderation trail. Without it nothing is
// recorded and /api/admin/audit answers 503.
func (h *Handler) SetAuditLogger(l *audit.Logger) {
	h.audit = l
}

// recordAudit queues an event with the session user as actor.
func (h *Handler) recordAudit(r *http.Request, typ audit.EventType, target *audit.Target, description string) {
	if h.audit == nil {
		return
	}
	event := &audit.Event{Type: typ, Target: target, Description: description}
	if subject := auth.GetAuthSubject(r.Context()); subject != nil {
		event.Actor = audit.Actor{ID: subject.ID, Name: subject.Username, Role: string(subject.Role)}
	}
	h.audit.Record(r, event)
}

// ListAuditEvents handles GET /api/admin/audit.
//
// Query parameters: type (comma separated), actor, targetType, targetId,
// since (RFC 3339), limit (default 100, max 500) and offset.
func (h *Handler) ListAuditEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.audit == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.ErrCodeUnavailable, "Audit trail is disabled", nil)
		return
	}

	q := r.URL.Query()
	filter := audit.QueryFilter{
		ActorID:    strings.TrimSpace(q.Get("actor")),
		TargetType: strings.TrimSpace(q.Get("targetType")),
		TargetID:   strings.TrimSpace(q.Get("targetId")),
		Limit:      getIntParam(r, "limit", audit.DefaultQueryFilter().Limit),
		Offset:     getIntParam(r, "offset", 0),
	}
	for _, t := range parseCommaSeparated(q.Get("type")) {
		filter.Types = append(filter.Types, audit.EventType(t))
	}
	if raw := strings.TrimSpace(q.Get("since")); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(w, r, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = &since
	}
	filter.Limit = min(max(filter.Limit, 1), audit.MaxQueryLimit)
	filter.Offset = max(filter.Offset, 0)

	events, err := h.audit.Query(r.Context(), filter)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	total, err := h.audit.Count(r.Context(), filter)
	if err != nil {
		respondDBError(w, r, err, "")
		return
	}
	respondSuccess(w, http.StatusOK, AuditPage{Events: events, Total: total, Limit: filter.Limit, Offset: filter.Offset}, start)
}
