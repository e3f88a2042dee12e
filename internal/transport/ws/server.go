package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/cipherdrop/relay-service/internal/domain"
)

type RoomChecker interface {
	RoomExists(ctx context.Context, roomID string) bool
}

// Server upgrades subscribers and pushes stored relay records to them.
// Connections are read-only for clients; sends go through the HTTP API.
type Server struct {
	upgrader websocket.Upgrader
	hub      *Hub
	rooms    RoomChecker

	pingEvery time.Duration
}

func NewServer(hub *Hub, rooms RoomChecker) *Server {
	return &Server{
		hub:   hub,
		rooms: rooms,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
	}
}

// WS endpoint: GET /ws/rooms/{id}?user_id=...
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := domain.NormalizeRoomID(chi.URLParam(r, "id"))
	if roomID == "" {
		http.Error(w, "missing room id", http.StatusBadRequest)
		return
	}
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		http.Error(w, "missing user_id", http.StatusBadRequest)
		return
	}
	if !s.rooms.RoomExists(r.Context(), roomID) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	c := newWsConn(conn, roomID, userID)
	s.hub.Add(c)

	go s.writeLoop(r.Context(), c)
	s.readLoop(c)

	s.hub.Remove(c)
	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", roomID, "user", userID, "err", err)
	}
}

// BroadcastStored pushes a stored broadcast message to the room.
func (s *Server) BroadcastStored(msg domain.Message) {
	s.hub.Broadcast(msg.RoomID, Message{
		Type: TypeMessage,
		Payload: MessagePayload{
			ID:        msg.ID,
			RoomID:    msg.RoomID,
			SenderID:  msg.SenderID,
			Body:      msg.Body,
			TSUnix:    msg.CreatedAt.Unix(),
			ExpiresAt: unixOrZero(msg.ExpiresAt),
		},
	})
}

// DirectedStored pushes a stored directed record to its recipient only.
func (s *Server) DirectedStored(rec domain.DirectedMessage) {
	s.hub.SendToUser(rec.RoomID, rec.RecipientID, Message{
		Type: TypeE2EE,
		Payload: DirectedPayload{
			ID:            rec.ID,
			MessageID:     rec.MessageID,
			RoomID:        rec.RoomID,
			SenderID:      rec.SenderID,
			RecipientID:   rec.RecipientID,
			EncryptedData: rec.EncryptedData,
			TSUnix:        rec.CreatedAt.Unix(),
			ExpiresAt:     unixOrZero(rec.ExpiresAt),
		},
	})
}

// ReceiptStored pushes an appended receipt to the room.
func (s *Server) ReceiptStored(rc domain.Receipt) {
	s.hub.Broadcast(rc.RoomID, Message{
		Type: TypeReceipt,
		Payload: ReceiptPayload{
			RoomID:      rc.RoomID,
			MessageID:   rc.MessageID,
			RecipientID: rc.RecipientID,
			Type:        rc.Type,
			TSUnix:      rc.CreatedAt.Unix(),
		},
	})
}

func (s *Server) readLoop(c *wsConn) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(1 << 16)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	// Subscribers only listen; inbound frames are drained and dropped.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

type wsConn struct {
	conn   *websocket.Conn
	roomID string
	userID string
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, roomID, userID string) *wsConn {
	return &wsConn{
		conn:   c,
		roomID: roomID,
		userID: userID,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(msg Message) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(msg)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) UserID() string { return c.userID }
func (c *wsConn) RoomID() string { return c.roomID }
