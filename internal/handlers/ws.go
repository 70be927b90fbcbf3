package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/chepyr/go-board-notes/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeWait = 5 * time.Second

type wsClient struct {
	conn   *websocket.Conn
	userID uuid.UUID
	// gorilla/websocket allows one concurrent writer per connection.
	writeMu sync.Mutex
}

func (c *wsClient) send(message []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// WSHub keeps websocket subscribers per board and fans board events out to
// them.
type WSHub struct {
	connections map[uuid.UUID]map[*wsClient]bool
	mutex       sync.Mutex
}

func NewWSHub() *WSHub {
	return &WSHub{connections: make(map[uuid.UUID]map[*wsClient]bool)}
}

func (h *WSHub) register(boardID uuid.UUID, c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.connections[boardID] == nil {
		h.connections[boardID] = make(map[*wsClient]bool)
	}
	h.connections[boardID][c] = true
}

func (h *WSHub) unregister(boardID uuid.UUID, c *wsClient) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeLocked(boardID, c)
}

func (h *WSHub) removeLocked(boardID uuid.UUID, c *wsClient) {
	conns, ok := h.connections[boardID]
	if !ok || !conns[c] {
		return
	}
	delete(conns, c)
	c.conn.Close()
	if len(conns) == 0 {
		delete(h.connections, boardID)
	}
}

// Subscribers returns the number of open connections for a board.
func (h *WSHub) Subscribers(boardID uuid.UUID) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.connections[boardID])
}

// Publish sends the event to every subscriber of its board. Subscribers of a
// deleted board, and a user whose share was removed, are disconnected after
// the event is delivered. Writes happen outside the hub lock.
func (h *WSHub) Publish(ev service.Event) {
	message, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("failed to marshal board event")
		return
	}

	h.mutex.Lock()
	clients := make([]*wsClient, 0, len(h.connections[ev.BoardID]))
	for c := range h.connections[ev.BoardID] {
		clients = append(clients, c)
	}
	h.mutex.Unlock()

	var drop []*wsClient
	for _, c := range clients {
		if err := c.send(message); err != nil {
			log.WithError(err).WithField("board_id", ev.BoardID).Debug("failed to send websocket message")
			drop = append(drop, c)
			continue
		}
		switch {
		case ev.Name == service.EventBoardDeleted:
			drop = append(drop, c)
		case ev.Name == service.EventShareRemoved && c.userID == ev.ID:
			drop = append(drop, c)
		}
	}
	if len(drop) == 0 {
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	for _, c := range drop {
		h.removeLocked(ev.BoardID, c)
	}
}

// Close disconnects every subscriber.
func (h *WSHub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for boardID, conns := range h.connections {
		for c := range conns {
			h.removeLocked(boardID, c)
		}
	}
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.AllowedOrigins, origin)
}

// HandleWebSocket subscribes the caller to events of one board. Read access
// is resolved before the upgrade so failures get a normal HTTP status.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	boardID, err := uuid.Parse(r.URL.Query().Get("board_id"))
	if err != nil {
		sendError(w, "board_id is required (uuid)", http.StatusBadRequest)
		return
	}
	userID := UserID(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	_, err = h.Boards.GetBoard(ctx, userID, boardID)
	cancel()
	if err != nil {
		writeError(w, r, err)
		return
	}

	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already answered the client
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &wsClient{conn: conn, userID: userID}
	h.WSHub.register(boardID, client)
	log.WithFields(log.Fields{"board_id": boardID, "user_id": userID}).Debug("websocket subscribed")

	// Clients only listen; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.WSHub.unregister(boardID, client)
			return
		}
	}
}
