package service

import (
	"context"
	"strings"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/memstore"
)

type RoomService struct {
	rooms    *memstore.RoomRepository
	messages *memstore.MessageRepository
	receipts *memstore.ReceiptRepository
	stats    *Stats
}

func NewRoomService(rooms *memstore.RoomRepository, messages *memstore.MessageRepository, receipts *memstore.ReceiptRepository, stats *Stats) *RoomService {
	return &RoomService{
		rooms:    rooms,
		messages: messages,
		receipts: receipts,
		stats:    stats,
	}
}

// RoomInfo is the read-only description of a room.
type RoomInfo struct {
	E2EE        bool
	MemberCount int
}

// CreateRoom registers a room and seeds the dependent stores. Re-creating
// an existing room overwrites its metadata but keeps members, messages,
// keys and receipts; there is no error on re-create.
func (s *RoomService) CreateRoom(ctx context.Context, roomID, hostID string, e2ee bool) (domain.Room, error) {
	roomID = domain.NormalizeRoomID(roomID)
	hostID = strings.TrimSpace(hostID)
	if roomID == "" || hostID == "" {
		return domain.Room{}, domain.ErrInvalidInput
	}

	created := !s.rooms.Exists(roomID)
	room := s.rooms.Create(roomID, hostID, e2ee)
	s.messages.EnsureRoom(roomID)
	s.receipts.EnsureRoom(roomID)
	if created && s.stats != nil {
		s.stats.IncRooms()
	}
	return room, nil
}

// JoinRoom adds userID to an existing room's member set. Joining twice is a
// no-op.
func (s *RoomService) JoinRoom(ctx context.Context, roomID, userID string) error {
	roomID = domain.NormalizeRoomID(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" {
		return domain.ErrInvalidInput
	}
	return s.rooms.AddMember(roomID, userID)
}

func (s *RoomService) DescribeRoom(ctx context.Context, roomID string) (RoomInfo, error) {
	roomID = domain.NormalizeRoomID(roomID)
	room, err := s.rooms.Get(roomID)
	if err != nil {
		return RoomInfo{}, err
	}
	count, err := s.rooms.MemberCount(roomID)
	if err != nil {
		return RoomInfo{}, err
	}
	return RoomInfo{E2EE: room.E2EE, MemberCount: count}, nil
}

func (s *RoomService) RoomExists(ctx context.Context, roomID string) bool {
	return s.rooms.Exists(domain.NormalizeRoomID(roomID))
}
