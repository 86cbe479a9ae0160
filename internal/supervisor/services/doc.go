// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

/*
Package services provides suture.Service wrappers for Reelview components.

Each wrapper implements suture's context-aware interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

and names itself through fmt.Stringer so supervisor events identify it.

# Available Services

HTTPServerService (api layer):
  - Binds its own listener on each Serve, so a restart rebinds the port
  - Drains in-flight requests through Shutdown when the context is canceled
  - Treats any stop it did not ask for as a failure, which suture restarts
  - Addr reports the bound address while serving (":0" in tests)

SessionCleanupService (data layer):
  - Sweeps expired sessions from the memory or badger session store
  - Only registered when SESSION_STRATEGY=store

# Example

	tree.AddDataService(services.NewSessionCleanupService(store, 15*time.Minute))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
*/
package services
