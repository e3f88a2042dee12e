package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cipherdrop/relay-service/internal/domain"
)

// stream holds both message collections of one room behind that room's own
// lock, so unrelated rooms never contend with each other.
type stream struct {
	mu        sync.Mutex
	broadcast []domain.Message
	directed  []domain.DirectedMessage
}

// MessageRepository owns the per-room message streams and their expiration
// sweeping. Timestamps are assigned under the room lock, which makes the
// intra-room order total at write time; reads return records ascending by
// creation instant.
type MessageRepository struct {
	mu      sync.RWMutex
	streams map[string]*stream
	clock   Clock
	ttl     time.Duration
}

func NewMessageRepository(clock Clock, ttl time.Duration) *MessageRepository {
	if ttl <= 0 {
		ttl = domain.DefaultMessageTTL
	}
	return &MessageRepository{
		streams: make(map[string]*stream),
		clock:   orNow(clock),
		ttl:     ttl,
	}
}

// EnsureRoom initializes the room's backing stream. Called on room
// creation; append and list refuse rooms that were never created.
func (r *MessageRepository) EnsureRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[roomID]; !ok {
		r.streams[roomID] = &stream{}
	}
}

func (r *MessageRepository) room(roomID string) (*stream, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.streams[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return st, nil
}

// AppendBroadcast stores one undirected message. A zero explicitExpiry, or
// one not in the future, falls back to the default TTL.
func (r *MessageRepository) AppendBroadcast(roomID, senderID, body string, explicitExpiry time.Time) (domain.Message, error) {
	st, err := r.room(roomID)
	if err != nil {
		return domain.Message{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	now := r.clock()
	msg := domain.Message{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		SenderID:  senderID,
		Body:      body,
		CreatedAt: now,
		ExpiresAt: domain.ExpiryAt(now, explicitExpiry, r.ttl),
	}
	st.broadcast = append(st.broadcast, msg)
	return msg, nil
}

// AppendDirected stores one record per recipient payload. All records share
// a single message id and creation instant and land under one lock
// acquisition, so readers never observe a partial fan-out.
func (r *MessageRepository) AppendDirected(roomID, senderID string, payloads map[string]string, explicitExpiry time.Time) ([]domain.DirectedMessage, error) {
	if len(payloads) == 0 {
		return nil, domain.ErrInvalidInput
	}
	st, err := r.room(roomID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	now := r.clock()
	messageID := uuid.NewString()
	expiresAt := domain.ExpiryAt(now, explicitExpiry, r.ttl)

	records := make([]domain.DirectedMessage, 0, len(payloads))
	for recipientID, data := range payloads {
		rec := domain.DirectedMessage{
			ID:            uuid.NewString(),
			MessageID:     messageID,
			RoomID:        roomID,
			SenderID:      senderID,
			RecipientID:   recipientID,
			EncryptedData: data,
			CreatedAt:     now,
			ExpiresAt:     expiresAt,
		}
		st.directed = append(st.directed, rec)
		records = append(records, rec)
	}
	return records, nil
}

// ListBroadcast sweeps the room, then returns the surviving undirected
// messages ascending by creation instant. Reads are non-destructive.
func (r *MessageRepository) ListBroadcast(roomID string) ([]domain.Message, error) {
	st, err := r.room(roomID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sweepLocked(st, r.clock())

	out := make([]domain.Message, len(st.broadcast))
	copy(out, st.broadcast)
	return out, nil
}

// ListDirected sweeps the room, then returns the surviving records
// addressed to recipientID, ascending by creation instant.
func (r *MessageRepository) ListDirected(roomID, recipientID string) ([]domain.DirectedMessage, error) {
	st, err := r.room(roomID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	sweepLocked(st, r.clock())

	var out []domain.DirectedMessage
	for _, rec := range st.directed {
		if rec.RecipientID == recipientID {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SweepRoom removes every expired record from one room. Returns the number
// of records reclaimed.
func (r *MessageRepository) SweepRoom(roomID string) (int, error) {
	st, err := r.room(roomID)
	if err != nil {
		return 0, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return sweepLocked(st, r.clock()), nil
}

// SweepAll reclaims expired records across every room, taking one room lock
// at a time so foreground requests on other rooms are never starved.
func (r *MessageRepository) SweepAll() int {
	r.mu.RLock()
	streams := make([]*stream, 0, len(r.streams))
	for _, st := range r.streams {
		streams = append(streams, st)
	}
	r.mu.RUnlock()

	total := 0
	for _, st := range streams {
		st.mu.Lock()
		total += sweepLocked(st, r.clock())
		st.mu.Unlock()
	}
	return total
}

// sweepLocked drops expired records from both collections. The caller holds
// the stream lock. Records with a zero expiry are kept.
func sweepLocked(st *stream, now time.Time) int {
	removed := 0

	kept := st.broadcast[:0]
	for _, msg := range st.broadcast {
		if domain.Expired(msg.ExpiresAt, now) {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	st.broadcast = kept

	keptDirected := st.directed[:0]
	for _, rec := range st.directed {
		if domain.Expired(rec.ExpiresAt, now) {
			removed++
			continue
		}
		keptDirected = append(keptDirected, rec)
	}
	st.directed = keptDirected

	return removed
}
