// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package supervisor provides process supervision for Reelview using suture v4.

# Overview

Long-running services are grouped in two layers:

	RootSupervisor ("reelview")
	├── DataSupervisor ("data-layer")
	│   ├── AuditLogger (moderation trail writer)
	│   └── SessionCleanupService (SESSION_STRATEGY=store only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer counts its own failures, so a session store that keeps failing
backs off without restarting the HTTP server.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	tree.AddDataService(auditLogger) // same as tree.Add(supervisor.LayerData, auditLogger)

	unstopped, err := tree.Run(ctx) // returns once ctx is canceled and services stopped
	for _, svc := range unstopped {
	    logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

Supervisor events (service start, failure, backoff) are logged through
sutureslog, bridged to zerolog by logging.NewSlogLogger.

# Configuration

	FailureThreshold  5    failures before backoff
	FailureDecay      30   seconds for the failure count to decay
	FailureBackoff    15s  delay once the threshold is exceeded
	ShutdownTimeout   10s  per-service stop deadline

# Not Supervised

DuckDB is an embedded library opened once by main and closed on exit.
TMDB calls are request-scoped and guarded by their own circuit breaker.

# See Also

  - internal/supervisor/services: service wrappers
  - github.com/thejerf/suture/v4
*/
package supervisor
