// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelview/internal/models"
)

// readinessTimeout bounds the database ping of a readiness probe.
const readinessTimeout = 2 * time.Second

// HealthReport is the data of both probe responses.
type HealthReport struct {
	UptimeSeconds float64                `json:"uptimeSeconds"`
	Checks        map[string]HealthCheck `json:"checks,omitempty"`
}

// HealthCheck is one dependency. Only required checks gate readiness.
type HealthCheck struct {
	OK       bool   `json:"ok"`
	Required bool   `json:"required"`
	Detail   string `json:"detail,omitempty"`
}

// HealthLive answers 200 while the process can serve HTTP at all.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "alive",
		Data:     HealthReport{UptimeSeconds: h.uptime()},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady answers 503 until the database responds. TMDB is listed but
// optional: without it the catalog still serves local movies.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	report := HealthReport{
		UptimeSeconds: h.uptime(),
		Checks: map[string]HealthCheck{
			"database": h.checkDatabase(r.Context()),
			"tmdb":     {OK: h.tmdb != nil && h.tmdb.Configured(), Detail: "TMDB_API_KEY"},
		},
	}

	code, status := http.StatusOK, "ready"
	for _, c := range report.Checks {
		if c.Required && !c.OK {
			code, status = http.StatusServiceUnavailable, "not_ready"
			break
		}
	}
	respondJSON(w, code, &models.APIResponse{
		Status:   status,
		Data:     report,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

func (h *Handler) checkDatabase(ctx context.Context) HealthCheck {
	check := HealthCheck{Required: true}
	if h.db == nil {
		check.Detail = "not initialized"
		return check
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		check.Detail = err.Error()
		return check
	}
	check.OK = true
	return check
}

func (h *Handler) uptime() float64 {
	return time.Since(h.startTime).Seconds()
}
