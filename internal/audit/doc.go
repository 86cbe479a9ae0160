// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package audit keeps the moderation trail: who signed in, who changed which
account, and who curated which movie.

# Event Types

	auth.login          successful password sign-in
	auth.login_failed   rejected password sign-in (actor name is the email)
	user.created        account created by an administrator
	user.updated        profile change on another member's account
	user.role_changed   role granted or revoked
	user.deleted        account deleted
	movie.created       title added by hand
	movie.imported      title imported from TMDB
	movie.updated       catalog entry edited
	movie.deleted       catalog entry removed

# Usage

	store := audit.NewDuckDBStore(db.Conn())
	if err := store.CreateTable(ctx); err != nil {
	    return err
	}
	auditLog := audit.NewLogger(store, audit.DefaultConfig())
	tree.AddDataService(auditLog) // Serve writes the buffered events

	auditLog.Record(r, &audit.Event{
	    Type:   audit.EventTypeMovieDeleted,
	    Actor:  audit.Actor{ID: subject.ID, Name: subject.Username, Role: "ADMIN"},
	    Target: &audit.Target{ID: id, Type: "movie"},
	})

Log never blocks a request: events go to a buffered channel and are dropped
with a warning when it is full. Events older than Config.Retention are
removed by Serve once per CleanupInterval.

Administrators read the trail through GET /api/admin/audit.
*/
package audit
