package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/service"
)

type Handler struct {
	roomSvc    *service.RoomService
	keySvc     *service.KeyService
	msgSvc     *service.MessageService
	receiptSvc *service.ReceiptService
	stats      *service.Stats
}

func NewHandler(room *service.RoomService, key *service.KeyService, msg *service.MessageService, receipt *service.ReceiptService, stats *service.Stats) *Handler {
	return &Handler{
		roomSvc:    room,
		keySvc:     key,
		msgSvc:     msg,
		receiptSvc: receipt,
		stats:      stats,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, out any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

func derefExpiry(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// POST /rooms
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	room, err := h.roomSvc.CreateRoom(r.Context(), req.RoomID, req.HostID, req.E2EE)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateRoomResponse{
		RoomID:    room.ID,
		E2EE:      room.E2EE,
		Timestamp: room.CreatedAt,
	})
}

// POST /rooms/{id}/join
func (h *Handler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	var req JoinRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := h.roomSvc.JoinRoom(r.Context(), roomID, req.UserID); err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, JoinRoomResponse{
		RoomID:    domain.NormalizeRoomID(roomID),
		Timestamp: time.Now(),
	})
}

// GET /rooms/{id}
func (h *Handler) DescribeRoom(w http.ResponseWriter, r *http.Request) {
	info, err := h.roomSvc.DescribeRoom(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DescribeRoomResponse{
		Exists:    true,
		E2EE:      info.E2EE,
		UserCount: info.MemberCount,
	})
}

// GET /rooms/{id}/users
func (h *Handler) ListRoomUsers(w http.ResponseWriter, r *http.Request) {
	members, err := h.keySvc.ListMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	resp := RoomUsersResponse{Users: make([]RoomUserItem, 0, len(members)), TotalUsers: len(members)}
	for _, m := range members {
		resp.Users = append(resp.Users, RoomUserItem{
			UserID:    m.UserID,
			PublicKey: m.PublicKey,
			JoinedAt:  m.JoinedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/keys/{userId}
func (h *Handler) PublishPublicKey(w http.ResponseWriter, r *http.Request) {
	var req PublishKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	entry, err := h.keySvc.PublishPublicKey(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"), req.PublicKey)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PublicKeyResponse{
		PublicKey: entry.PublicKey,
		Timestamp: entry.UpdatedAt,
	})
}

// GET /rooms/{id}/keys/{userId}
func (h *Handler) GetPublicKey(w http.ResponseWriter, r *http.Request) {
	entry, err := h.keySvc.GetPublicKey(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, PublicKeyResponse{
		PublicKey: entry.PublicKey,
		Timestamp: entry.UpdatedAt,
	})
}

// POST /rooms/{id}/room-key
func (h *Handler) StoreRoomKey(w http.ResponseWriter, r *http.Request) {
	var req StoreRoomKeyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	key, err := h.keySvc.StoreRoomKey(r.Context(), chi.URLParam(r, "id"), req.EncryptedKey)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, RoomKeyResponse{
		EncryptedKey: key.EncryptedKey,
		Timestamp:    key.CreatedAt,
	})
}

// GET /rooms/{id}/room-key
func (h *Handler) GetRoomKey(w http.ResponseWriter, r *http.Request) {
	key, err := h.keySvc.GetRoomKey(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, RoomKeyResponse{
		EncryptedKey: key.EncryptedKey,
		Timestamp:    key.CreatedAt,
	})
}

// POST /rooms/{id}/messages
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	msg, err := h.msgSvc.SendBroadcast(r.Context(), chi.URLParam(r, "id"), req.SenderID, req.Body, derefExpiry(req.ExpirationTime))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SendMessageResponse{
		MessageID: msg.ID,
		Timestamp: msg.CreatedAt,
	})
}

// GET /rooms/{id}/messages
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.msgSvc.ListBroadcast(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	resp := MessagesResponse{Messages: make([]MessageItem, 0, len(msgs))}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, MessageItem{
			ID:             m.ID,
			RoomID:         m.RoomID,
			SenderID:       m.SenderID,
			Body:           m.Body,
			Timestamp:      m.CreatedAt,
			ExpirationTime: expiryPtr(m.ExpiresAt),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/e2ee-messages
func (h *Handler) SendDirectedMessage(w http.ResponseWriter, r *http.Request) {
	var req SendDirectedRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	records, err := h.msgSvc.SendDirected(r.Context(), chi.URLParam(r, "id"), req.SenderID, req.RecipientPayloads, derefExpiry(req.ExpirationTime))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SendDirectedResponse{
		MessageID:      records[0].MessageID,
		RecipientCount: len(records),
		Timestamp:      records[0].CreatedAt,
	})
}

// GET /rooms/{id}/e2ee-messages/{userId}
func (h *Handler) ListDirectedMessages(w http.ResponseWriter, r *http.Request) {
	records, err := h.msgSvc.ListDirected(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	resp := DirectedMessagesResponse{Messages: make([]DirectedMessageItem, 0, len(records))}
	for _, rec := range records {
		resp.Messages = append(resp.Messages, DirectedMessageItem{
			ID:             rec.ID,
			MessageID:      rec.MessageID,
			SenderID:       rec.SenderID,
			RecipientID:    rec.RecipientID,
			EncryptedData:  rec.EncryptedData,
			Timestamp:      rec.CreatedAt,
			ExpirationTime: expiryPtr(rec.ExpiresAt),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/receipts
func (h *Handler) AppendReceipt(w http.ResponseWriter, r *http.Request) {
	var req AppendReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	rc, err := h.receiptSvc.AppendReceipt(r.Context(), chi.URLParam(r, "id"), req.MessageID, req.RecipientID, req.Type)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ReceiptItem{
		MessageID:   rc.MessageID,
		RecipientID: rc.RecipientID,
		Type:        rc.Type,
		Timestamp:   rc.CreatedAt,
	})
}

// GET /rooms/{id}/receipts
func (h *Handler) ListReceipts(w http.ResponseWriter, r *http.Request) {
	receipts, err := h.receiptSvc.ListReceipts(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	resp := ReceiptsResponse{Receipts: make([]ReceiptItem, 0, len(receipts))}
	for _, rc := range receipts {
		resp.Receipts = append(resp.Receipts, ReceiptItem{
			MessageID:   rc.MessageID,
			RecipientID: rc.RecipientID,
			Type:        rc.Type,
			Timestamp:   rc.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// POST /maintenance/sweep
func (h *Handler) ManualSweep(w http.ResponseWriter, r *http.Request) {
	cleaned := h.receiptSvc.PruneOld(r.Context())
	writeJSON(w, http.StatusOK, SweepResponse{CleanedReceipts: cleaned})
}

// GET /status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:            "ok",
		Uptime:            h.stats.Uptime().Truncate(time.Second).String(),
		Timestamp:         time.Now(),
		TotalRooms:        h.stats.Rooms(),
		TotalMessages:     h.stats.Messages(),
		TotalE2EEMessages: h.stats.DirectedMessages(),
		RequestsServed:    h.stats.Requests(),
	})
}

func expiryPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
