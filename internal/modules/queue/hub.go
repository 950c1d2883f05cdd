package queue

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"queueless/internal/metrics"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4 * 1024
	sendBuffer = 64
)

// subscriber is one websocket client watching a company queue.
type subscriber struct {
	companyID int64
	userID    int64
	conn      *websocket.Conn
	send      chan []byte
}

// Hub fans queue snapshots out to the staff dashboards of each company.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[int64]map[*subscriber]struct{}
	origins  map[string]bool
	anyOrig  bool
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewHub accepts upgrades from the given browser origins; "*" allows any.
func NewHub(allowedOrigins []string, log zerolog.Logger) *Hub {
	h := &Hub{
		rooms:   make(map[int64]map[*subscriber]struct{}),
		origins: make(map[string]bool),
		log:     log.With().Str("module", "queue_hub").Logger(),
	}
	for _, o := range allowedOrigins {
		if o == "*" {
			h.anyOrig = true
		}
		h.origins[strings.TrimRight(o, "/")] = true
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || h.anyOrig {
		return true
	}
	if h.origins[origin] {
		return true
	}
	u, err := url.Parse(origin)
	return err == nil && u.Host == r.Host
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[s.companyID]
	if !ok {
		room = make(map[*subscriber]struct{})
		h.rooms[s.companyID] = room
	}
	room[s] = struct{}{}
	metrics.WSClientConnected()
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[s.companyID]
	if !ok {
		return
	}
	if _, ok := room[s]; !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(h.rooms, s.companyID)
	}
	close(s.send)
	metrics.WSClientDisconnected()
}

// Subscribers reports how many clients watch the company queue.
func (h *Hub) Subscribers(companyID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[companyID])
}

// Publish sends the event to every subscriber of the company. Slow clients
// whose buffer is full miss the event; the next snapshot catches them up.
func (h *Hub) Publish(companyID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Int64("company_id", companyID).Msg("marshal queue event")
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.rooms[companyID] {
		select {
		case s.send <- data:
		default:
			h.log.Warn().Int64("company_id", companyID).Int64("user_id", s.userID).Msg("queue subscriber too slow, event dropped")
		}
	}
}

// Serve upgrades the request and blocks until the client disconnects.
// initial, when non-nil, is the first frame the client receives.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, companyID, userID int64, initial *Event) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	s := &subscriber{
		companyID: companyID,
		userID:    userID,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
	}
	if initial != nil {
		if data, err := json.Marshal(initial); err == nil {
			s.send <- data
		}
	}
	h.register(s)
	h.log.Debug().Int64("company_id", companyID).Int64("user_id", userID).Msg("queue subscriber connected")

	go h.writePump(s)
	h.readPump(s)
	return nil
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for companyID, room := range h.rooms {
		for s := range room {
			close(s.send)
			metrics.WSClientDisconnected()
		}
		delete(h.rooms, companyID)
	}
}

// readPump only drains control frames; clients never send queue commands
// over the socket.
func (h *Hub) readPump(s *subscriber) {
	defer func() {
		h.unregister(s)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMsgSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Int64("user_id", s.userID).Msg("queue subscriber read")
			}
			return
		}
	}
}

func (h *Hub) writePump(s *subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
