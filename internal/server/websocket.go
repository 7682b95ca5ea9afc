package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/isidrok/templao/tree"
)

// Message types pushed to preview clients.
const (
	MessageFullReload = "full_reload"
	MessagePatch      = "patch"
)

// Message is one WebSocket push to preview clients.
type Message struct {
	Type   string    `json:"type"`
	Target string    `json:"target,omitempty"`
	Ops    []PatchOp `json:"ops,omitempty"`
}

// PatchOp is one tree mutation serialized for the wire.
type PatchOp struct {
	Op    string `json:"op"`
	Name  string `json:"name,omitempty"`
	Value any    `json:"value,omitempty"`
}

// patchOps converts a recorder's mutation log to wire form.
func patchOps(mutations []tree.Mutation) []PatchOp {
	ops := make([]PatchOp, 0, len(mutations))
	for _, m := range mutations {
		ops = append(ops, PatchOp{Op: string(m.Op), Name: m.Name, Value: m.Value})
	}
	return ops
}

// client is one connected preview browser.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *client) close() {
	c.conn.Close(websocket.StatusNormalClosure, "")
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: false, // origin already validated above
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}

	s.mutex.Lock()
	s.clients[c] = struct{}{}
	s.mutex.Unlock()

	go s.writePump(c)
	go s.readPump(c)
}

// checkOrigin validates the request origin against the server's own
// address and the configured allow list.
func (s *PreviewServer) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return false
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	allowed := append([]string{
		fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		fmt.Sprintf("localhost:%d", s.config.Server.Port),
		fmt.Sprintf("127.0.0.1:%d", s.config.Server.Port),
	}, s.config.Server.AllowedOrigins...)

	for _, host := range allowed {
		if originURL.Host == host {
			return true
		}
	}
	return false
}

// writePump sends queued messages to one client.
func (s *PreviewServer) writePump(c *client) {
	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			s.unregister(c)
			return
		}
	}
}

// readPump drains client frames until the connection closes; previews
// never send meaningful data upstream.
func (s *PreviewServer) readPump(c *client) {
	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			s.unregister(c)
			return
		}
	}
}

func (s *PreviewServer) unregister(c *client) {
	s.mutex.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mutex.Unlock()
	c.close()
}

// broadcast sends a message to every connected client.
func (s *PreviewServer) broadcast(msg Message) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.broadcastLocked(msg)
}

// broadcastLocked requires s.mutex to be held.
func (s *PreviewServer) broadcastLocked(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	for c := range s.clients {
		select {
		case c.send <- payload:
		default:
			// Slow client; drop the message rather than block updates.
		}
	}
}
