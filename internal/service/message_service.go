package service

import (
	"context"
	"strings"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/memstore"
)

type MessageService struct {
	rooms    *memstore.RoomRepository
	messages *memstore.MessageRepository
	stats    *Stats
	events   RelayEvents
}

func NewMessageService(rooms *memstore.RoomRepository, messages *memstore.MessageRepository, stats *Stats, events RelayEvents) *MessageService {
	return &MessageService{
		rooms:    rooms,
		messages: messages,
		stats:    stats,
		events:   events,
	}
}

// SendBroadcast appends one undirected message to the room's stream.
func (s *MessageService) SendBroadcast(ctx context.Context, roomID, senderID, body string, explicitExpiry time.Time) (domain.Message, error) {
	roomID = domain.NormalizeRoomID(roomID)
	senderID = strings.TrimSpace(senderID)
	if roomID == "" || senderID == "" || body == "" {
		return domain.Message{}, domain.ErrInvalidInput
	}
	if !s.rooms.Exists(roomID) {
		return domain.Message{}, domain.ErrRoomNotFound
	}

	msg, err := s.messages.AppendBroadcast(roomID, senderID, body, explicitExpiry)
	if err != nil {
		return domain.Message{}, err
	}
	if s.stats != nil {
		s.stats.IncMessages()
	}
	if s.events != nil {
		s.events.BroadcastStored(msg)
	}
	return msg, nil
}

// SendDirected fans one logical message out to its recipients: one stored
// record per entry in payloads, each retrievable only by its recipient.
func (s *MessageService) SendDirected(ctx context.Context, roomID, senderID string, payloads map[string]string, explicitExpiry time.Time) ([]domain.DirectedMessage, error) {
	roomID = domain.NormalizeRoomID(roomID)
	senderID = strings.TrimSpace(senderID)
	if roomID == "" || senderID == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(payloads) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !s.rooms.Exists(roomID) {
		return nil, domain.ErrRoomNotFound
	}

	records, err := s.messages.AppendDirected(roomID, senderID, payloads, explicitExpiry)
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.IncDirectedMessages()
	}
	if s.events != nil {
		for _, rec := range records {
			s.events.DirectedStored(rec)
		}
	}
	return records, nil
}

func (s *MessageService) ListBroadcast(ctx context.Context, roomID string) ([]domain.Message, error) {
	return s.messages.ListBroadcast(domain.NormalizeRoomID(roomID))
}

func (s *MessageService) ListDirected(ctx context.Context, roomID, recipientID string) ([]domain.DirectedMessage, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.messages.ListDirected(domain.NormalizeRoomID(roomID), recipientID)
}
