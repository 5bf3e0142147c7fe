package server

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/teranos/schemalens/errors"
)

// checkOrigin accepts requests without an Origin header and origins that
// prefix-match a configured allowed origin (so any port is accepted).
func (s *LensServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	allowed := s.opts.AllowedOrigins
	if len(allowed) == 0 {
		return strings.HasPrefix(origin, "http://localhost") ||
			strings.HasPrefix(origin, "https://localhost")
	}
	for _, a := range allowed {
		if strings.HasPrefix(origin, a) {
			return true
		}
	}
	return false
}

// isPortAvailable checks if a port is available for binding
func isPortAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	listener.Close()
	return true
}

// findAvailablePort returns port or the first free port among the next few
func findAvailablePort(port int) (int, error) {
	for p := port; p < port+10; p++ {
		if isPortAvailable(p) {
			return p, nil
		}
	}
	return 0, errors.Newf("no available port in range %d-%d", port, port+9)
}
