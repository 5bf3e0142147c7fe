package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teranos/schemalens/snapshot"
)

// WebSocket timeouts follow the gorilla chat example.
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512
)

// SnapshotMessage is pushed to websocket clients
type SnapshotMessage struct {
	Type     string         `json:"type"` // "snapshot" on connect, "swap" afterwards
	Current  *snapshot.Info `json:"current,omitempty"`
	Previous *snapshot.Info `json:"previous,omitempty"`
}

// Client is one websocket subscriber to snapshot swaps
type Client struct {
	server *LensServer
	conn   *websocket.Conn
	events <-chan snapshot.Event
	cancel func()
	done   chan struct{}
	once   sync.Once
}

// HandleSnapshotWebSocket upgrades the connection and streams swap events
func (s *LensServer) HandleSnapshotWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		writeError(w, http.StatusServiceUnavailable, "server is shutting down")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnw("Failed to upgrade WebSocket", "remote", r.RemoteAddr, "error", err)
		return
	}

	events, cancel := s.holder.Subscribe()
	c := &Client{
		server: s,
		conn:   conn,
		events: events,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.register(c)
	s.logger.Debugw("Snapshot subscriber connected", "remote", r.RemoteAddr, "clients", s.ClientCount())

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		c.writePump()
	}()
	go func() {
		defer s.wg.Done()
		c.readPump()
	}()
}

// readPump drains control frames and detects disconnects
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.logger.Debugw("WebSocket read error", "error", err)
			}
			return
		}
	}
}

// writePump sends the current snapshot, then every swap, with keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	hello := SnapshotMessage{Type: "snapshot"}
	if snap := c.server.holder.Current(); snap != nil {
		info := snap.Info()
		hello.Current = &info
	}
	if !c.write(hello) {
		return
	}

	for {
		select {
		case ev, ok := <-c.events:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			current := ev.Current
			if !c.write(SnapshotMessage{Type: "swap", Current: &current, Previous: ev.Previous}) {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

func (c *Client) write(msg SnapshotMessage) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.server.logger.Debugw("Failed to send snapshot message", "error", err)
		return false
	}
	return true
}

// close unsubscribes and unregisters; safe to call more than once
func (c *Client) close() {
	c.once.Do(func() {
		c.server.unregister(c)
		c.cancel()
		close(c.done)
	})
}
