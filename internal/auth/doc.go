// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package auth provides authentication, sessions and request guards.

# Sessions

A SessionManager issues the session cookie after a successful sign-in and
resolves it on every request. Two strategies are supported:

  - jwt: the cookie is an HS256 token signed with the session secret
    (stateless, the default)
  - store: the cookie is an opaque 32-byte ID backed by a SessionStore,
    either in memory or in BadgerDB, with sliding expiry

SessionManager.Authenticate places the resolved *AuthSubject in the request
context. Handlers read it with GetAuthSubject.

# Sign-in

Authenticator.Login checks email and password credentials with bcrypt.
GoogleFlow runs the OpenID Connect code flow against Google using the
zitadel relying party and provisions accounts on first sign-in.

# Guards

RequireAuth, RequireAdmin, CheckOwnership and RequireConfirmedEmail are plain
checks over the subject in the context; each returns a *GuardError carrying
the HTTP status to send. The matching middleware adapters reject requests
with the JSON error envelope. PageGuard applies the same rules to HTML
routes with redirects instead of errors.

AdminBearer protects the TMDB admin proxy with a static shared secret, and
CSRFMiddleware protects HTML form posts with a double-submit cookie.
*/
package auth
