package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/teranos/schemalens/errors"
	"github.com/teranos/schemalens/sym"
)

// ShutdownTimeout bounds how long Stop waits for connections to drain
const ShutdownTimeout = 5 * time.Second

// getState returns the current server state
func (s *LensServer) getState() ServerState {
	return ServerState(s.state.Load())
}

// setState atomically updates the server state
func (s *LensServer) setState(newState ServerState) {
	s.state.Store(int32(newState))
	s.logger.Infow("Server state changed", "new_state", stateString(newState))
}

// stateString returns human-readable state name
func stateString(state ServerState) string {
	switch state {
	case ServerStateRunning:
		return "running"
	case ServerStateDraining:
		return "draining"
	case ServerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Start listens on port (or the next free one) and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *LensServer) Start(ctx context.Context, port int) error {
	actualPort, err := findAvailablePort(port)
	if err != nil {
		return errors.Wrap(err, "failed to find available port")
	}
	if actualPort != port {
		s.logger.Infow("Port in use, using alternative",
			"requested_port", port,
			"actual_port", actualPort,
		)
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", actualPort))
	if err != nil {
		return errors.Wrapf(err, "listen on port %d", actualPort)
	}
	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled.
func (s *LensServer) Serve(ctx context.Context, listener net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Infow(fmt.Sprintf("%s HTTP server listening", sym.Graph),
		"addr", listener.Addr().String(),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "http server")
	case <-ctx.Done():
		return s.Stop()
	}
}

// Stop drains the server: new requests get 503, websocket clients are
// closed, and in-flight requests get ShutdownTimeout to finish.
func (s *LensServer) Stop() error {
	s.logger.Infow("Initiating server shutdown")
	s.setState(ServerStateDraining)

	var shutdownErr error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = errors.Wrap(err, "http shutdown")
		}
	}

	// Hijacked websocket connections are not tracked by http.Server
	s.mu.Lock()
	clientsToClose := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clientsToClose = append(clientsToClose, client)
	}
	s.mu.Unlock()

	if len(clientsToClose) > 0 {
		s.logger.Infow("Closing client connections", "count", len(clientsToClose))
		for _, client := range clientsToClose {
			client.conn.Close()
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Infow("All goroutines stopped cleanly")
	case <-time.After(ShutdownTimeout):
		s.logger.Warnw("Goroutine shutdown timed out", "timeout", ShutdownTimeout)
	}

	s.setState(ServerStateStopped)
	return shutdownErr
}
