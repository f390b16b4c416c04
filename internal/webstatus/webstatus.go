// Package webstatus serves a websocket feed of live decode events to a
// browser dashboard. Grounded on the teacher's websocket.go: a gorilla
// websocket.Upgrader, a write-mutex-guarded connection wrapper, and a
// dedicated buffered-channel writer goroutine per client so a slow browser
// can't block the decode loop that's broadcasting to everyone else.
package webstatus

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ua-parser/uap-go/uaparser"

	"github.com/cwsl/wsprgo/internal/wspr"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// uaParser classifies a connecting browser's User-Agent header for the
// connected-clients log line, the same uaparser.NewFromSaved() the teacher
// uses in session_stats_api.go.
var uaParser = uaparser.NewFromSaved()

// describeUserAgent reduces a raw User-Agent header to "Family Major", or
// "unknown" when the header is absent or unparseable.
func describeUserAgent(ua string) string {
	if ua == "" {
		return "unknown"
	}
	client := uaParser.Parse(ua)
	if client.UserAgent.Family == "" {
		return "unknown"
	}
	if client.UserAgent.Major == "" {
		return client.UserAgent.Family
	}
	return client.UserAgent.Family + " " + client.UserAgent.Major
}

// DecodeEvent is one message pushed to connected viewers.
type DecodeEvent struct {
	Timestamp   int64   `json:"timestamp"`
	Callsign    string  `json:"callsign"`
	Grid        string  `json:"grid"`
	PowerDBm    int     `json:"power_dbm"`
	SNRDb       float64 `json:"snr_db"`
	DistanceKm  float64 `json:"distance_km,omitempty"`
	MessageText string  `json:"message_text"`
}

// client wraps one websocket connection with a non-blocking outbound queue,
// mirroring the teacher's wsConn/spectrumWriteChan pattern.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	outbox  chan DecodeEvent
	done    chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	c := &client{
		conn:   conn,
		outbox: make(chan DecodeEvent, 32),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *client) writeLoop() {
	defer close(c.done)
	for ev := range c.outbox {
		payload, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		c.writeMu.Lock()
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		err = c.conn.WriteMessage(websocket.TextMessage, payload)
		c.writeMu.Unlock()
		if err != nil {
			return
		}
	}
}

// enqueue attempts a non-blocking send; a full outbox drops the event rather
// than stalling the broadcaster for one slow client.
func (c *client) enqueue(ev DecodeEvent) bool {
	select {
	case c.outbox <- ev:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	close(c.outbox)
	<-c.done
	c.conn.Close()
}

// Hub tracks connected dashboard clients and broadcasts decode events.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

// ServeHTTP upgrades the request to a websocket and registers the connection
// until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("webstatus: upgrade failed: %v", err)
		return
	}

	c := newClient(conn)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	log.Printf("webstatus: client connected (%s), %d total", describeUserAgent(r.Header.Get("User-Agent")), h.ClientCount())

	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		c.close()
	}()

	// The feed is push-only; read and discard to detect client disconnects
	// and keep gorilla's pong handling alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Broadcast pushes ev to every connected client, dropping it for any client
// whose outbox is full.
func (h *Hub) Broadcast(ev DecodeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.enqueue(ev)
	}
}

// ClientCount returns the number of connected dashboard clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// EventFromDecode converts a decode result into a broadcastable event.
func EventFromDecode(d wspr.Decode, distanceKm float64, ts time.Time) DecodeEvent {
	return DecodeEvent{
		Timestamp:   ts.Unix(),
		Callsign:    d.Callsign,
		Grid:        d.Grid,
		PowerDBm:    d.PowerDBm,
		SNRDb:       d.SNRDb,
		DistanceKm:  distanceKm,
		MessageText: d.MessageText,
	}
}
