package server

import (
	"net/http"
)

// setupHTTPRoutes configures all HTTP handlers
func (s *LensServer) setupHTTPRoutes() {
	s.mux.HandleFunc("/health", s.corsMiddleware(s.HandleHealth))
	s.mux.HandleFunc("/api/resolve", s.corsMiddleware(s.HandleResolve))   // Resolve fields and plan the join (POST)
	s.mux.HandleFunc("/api/path", s.corsMiddleware(s.HandlePath))         // Join plan only (POST)
	s.mux.HandleFunc("/api/snapshot", s.corsMiddleware(s.HandleSnapshot)) // Active snapshot summary (GET)
	s.mux.HandleFunc("/api/intents", s.corsMiddleware(s.HandleIntents))   // Intent catalog (GET)
	s.mux.HandleFunc("/api/reload", s.corsMiddleware(s.HandleReload))     // Rebuild from the seed source (POST)
	s.mux.HandleFunc("/ws/snapshots", s.HandleSnapshotWebSocket)          // Snapshot swap notifications
}

// corsMiddleware adds CORS headers for configured allowed origins and
// refuses work while the server drains.
func (s *LensServer) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.checkOrigin(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		if s.getState() != ServerStateRunning {
			w.Header().Set("Retry-After", "5")
			writeError(w, http.StatusServiceUnavailable, "server is shutting down")
			return
		}

		next(w, r)
	}
}
