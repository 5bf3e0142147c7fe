package server

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/teranos/schemalens/logger"
	"github.com/teranos/schemalens/resolution"
	"github.com/teranos/schemalens/snapshot"
)

// ServerState tracks the lifecycle phase for graceful shutdown
type ServerState int32

const (
	ServerStateRunning ServerState = iota
	ServerStateDraining
	ServerStateStopped
)

// Options configures a LensServer
type Options struct {
	AllowedOrigins []string
	DefaultIntent  string             // used when a resolve request names no intent
	MaxTables      int                // join set cap, 0 = no cap
	Reloader       *snapshot.Reloader // nil disables POST /api/reload
}

// LensServer serves schema resolution over HTTP and pushes snapshot swaps
// to websocket clients.
type LensServer struct {
	holder   *snapshot.Holder
	facade   *resolution.Facade
	reloader *snapshot.Reloader
	opts     Options

	mux      *http.ServeMux
	upgrader websocket.Upgrader

	clients map[*Client]bool
	mu      sync.RWMutex

	state  atomic.Int32
	wg     sync.WaitGroup
	logger *zap.SugaredLogger

	httpServer *http.Server
	startedAt  time.Time
}

// New creates a server reading snapshots from holder. A nil logger is allowed.
func New(holder *snapshot.Holder, opts Options, log *zap.SugaredLogger) *LensServer {
	log = logger.OrNop(log).Named("server")
	s := &LensServer{
		holder:    holder,
		facade:    resolution.NewFacade(holder, resolution.Options{MaxTables: opts.MaxTables}, log),
		reloader:  opts.Reloader,
		opts:      opts,
		mux:       http.NewServeMux(),
		clients:   make(map[*Client]bool),
		logger:    log,
		startedAt: time.Now(),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.setupHTTPRoutes()
	return s
}

// Handler returns the routed handler, for embedding or httptest.
func (s *LensServer) Handler() http.Handler {
	return s.mux
}

// ClientCount returns the number of connected websocket clients
func (s *LensServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *LensServer) register(c *Client) {
	s.mu.Lock()
	s.clients[c] = true
	s.mu.Unlock()
}

func (s *LensServer) unregister(c *Client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
}
