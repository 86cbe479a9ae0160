// Reelview - Movie Reviews and Catalog Curation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelview

package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/tomtom215/reelview/internal/logging"
)

// DefaultDrainTimeout bounds graceful shutdown when none is given.
const DefaultDrainTimeout = 10 * time.Second

// HTTPServer is the part of *http.Server the service drives.
type HTTPServer interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

// HTTPServerService binds the listen address, serves until its context is
// canceled, then drains in-flight requests for up to the drain timeout.
//
//	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router.SetupChi()}
//	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
type HTTPServerService struct {
	server HTTPServer
	addr   string
	drain  time.Duration

	mu    sync.Mutex
	bound string
}

// NewHTTPServerService serves server on server.Addr.
func NewHTTPServerService(server *http.Server, drain time.Duration) *HTTPServerService {
	return newHTTPServerService(server, server.Addr, drain)
}

func newHTTPServerService(server HTTPServer, addr string, drain time.Duration) *HTTPServerService {
	if drain <= 0 {
		drain = DefaultDrainTimeout
	}
	return &HTTPServerService{server: server, addr: addr, drain: drain}
}

// Serve implements suture.Service. A bind failure or an unexpected stop is
// returned so the supervisor restarts the service; a clean shutdown
// returns ctx.Err().
func (s *HTTPServerService) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.setBound(ln.Addr().String())
	defer s.setBound("")
	logging.Info().Str("addr", ln.Addr().String()).Msg("HTTP server listening")

	served := make(chan error, 1)
	go func() { served <- s.server.Serve(ln) }()

	select {
	case err := <-served:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return errors.New("http server stopped unexpectedly")
		}
		return fmt.Errorf("http server failed: %w", err)

	case <-ctx.Done():
		drainCtx, cancel := context.WithTimeout(context.Background(), s.drain)
		defer cancel()

		shutdownErr := s.server.Shutdown(drainCtx)
		<-served
		if shutdownErr != nil {
			return fmt.Errorf("http server shutdown failed: %w", shutdownErr)
		}
		logging.Info().Msg("HTTP server stopped")
		return ctx.Err()
	}
}

// Addr returns the bound address while serving, or "".
func (s *HTTPServerService) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

func (s *HTTPServerService) setBound(addr string) {
	s.mu.Lock()
	s.bound = addr
	s.mu.Unlock()
}

// String names the service in supervisor events.
func (s *HTTPServerService) String() string {
	return "http-server"
}
