// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package main is the entry point for the Reelview server.

Reelview is a movie catalog with community reviews. Members sign in with a
password or with Google, rate and review movies, and keep a favorites list.
Administrators curate the catalog by importing titles from The Movie
Database (TMDB) and moderate users and reviews.

# Application Architecture

The process runs under a Suture v4 supervisor tree:

	RootSupervisor ("reelview")
	├── DataSupervisor ("data-layer")
	│   ├── AuditLogger (moderation trail writer)
	│   └── SessionCleanupService (SESSION_STRATEGY=store)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Component initialization order:

 1. Configuration: .env file, then Koanf v2 (defaults, config.yaml, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB, schema migrated on open
 4. Bootstrap admin: BOOTSTRAP_ADMIN_EMAIL is created or promoted
 5. Sessions: signed JWT cookie, or opaque ID backed by memory or BadgerDB
 6. Authorization: Casbin role policy
 7. TMDB client, mailer, templates, HTTP handlers, audit trail
 8. Google sign-in when GOOGLE_CLIENT_ID is set
 9. Supervisor tree

# Configuration

The common variables:

	NEXTAUTH_URL       public origin used in email links and OAuth redirects
	NEXTAUTH_SECRET    session signing secret (32+ chars, required in production)
	DATABASE_PATH      DuckDB file (default data/reelview.duckdb)
	TMDB_API_KEY       TMDB v3 API key, or TMDB_AUTHORIZATION for a v4 token
	EMAIL_HOST, EMAIL_PORT, EMAIL_USER, EMAIL_PASS
	                   SMTP; without EMAIL_USER mails are only logged
	ADMIN_BEARER       shared secret for /api/admin/tmdb/*
	SESSION_STRATEGY   jwt (default) or store
	SESSION_STORE      memory (default) or badger

See internal/config for the full list. A .env file in the working directory
is loaded before the environment is read.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to 10 seconds, services that outlive the supervisor timeout
are reported, and the session store and database are closed.

# Example Usage

	export NEXTAUTH_URL=http://localhost:3000
	export NEXTAUTH_SECRET=$(openssl rand -hex 32)
	export TMDB_API_KEY=your-tmdb-key
	export BOOTSTRAP_ADMIN_EMAIL=admin@example.com
	export BOOTSTRAP_ADMIN_PASSWORD=change-me-now
	./reelview

Administrative tasks without a running server are handled by reelctl.
*/
package main
