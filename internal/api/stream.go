package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	streamWriteWait = 5 * time.Second
	streamPingEvery = 15 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// envelope is one stream message.
type envelope struct {
	Type    string `json:"type"` // "snapshot" or "frame"
	Payload any    `json:"payload"`
}

// streamConn serialises writes to a WebSocket connection.
type streamConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *streamConn) send(typ string, payload any) error {
	data, err := json.Marshal(envelope{Type: typ, Payload: payload})
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *streamConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait))
}

// handleStream upgrades to a WebSocket, sends the current snapshot, then
// one frame per tick until either side closes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if !s.acquireStream() {
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer s.releaseStream()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	sc := &streamConn{conn: conn}

	subID, frames := s.Sim.Subscribe()
	defer s.Sim.Unsubscribe(subID)

	if err := sc.send("snapshot", s.Sim.Snapshot()); err != nil {
		return
	}
	slog.Info("stream client connected", "sub_id", subID, "client", clientAddr(r))

	// The reader only watches for the close; clients send nothing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	heartbeat := time.NewTicker(streamPingEvery)
	defer heartbeat.Stop()

	for {
		select {
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := sc.send("frame", f); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := sc.ping(); err != nil {
				return
			}
		case <-closed:
			slog.Info("stream client disconnected", "sub_id", subID)
			return
		}
	}
}
