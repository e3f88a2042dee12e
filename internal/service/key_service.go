package service

import (
	"context"
	"strings"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
	"github.com/cipherdrop/relay-service/internal/memstore"
)

type KeyService struct {
	rooms *memstore.RoomRepository
	keys  *memstore.KeyRepository
}

func NewKeyService(rooms *memstore.RoomRepository, keys *memstore.KeyRepository) *KeyService {
	return &KeyService{rooms: rooms, keys: keys}
}

// MemberKey is one row of a room's member listing: membership joined with
// whatever public key is on file. PublicKey is empty until the member
// registers one.
type MemberKey struct {
	UserID    string
	PublicKey string
	JoinedAt  time.Time
}

// PublishPublicKey registers a member's public key, overwriting any prior
// value for the pair. Publishing also adds the user to the room's members.
func (s *KeyService) PublishPublicKey(ctx context.Context, roomID, userID, publicKey string) (domain.PublicKeyEntry, error) {
	roomID = domain.NormalizeRoomID(roomID)
	userID = strings.TrimSpace(userID)
	if roomID == "" || userID == "" || publicKey == "" {
		return domain.PublicKeyEntry{}, domain.ErrInvalidInput
	}
	if err := s.rooms.AddMember(roomID, userID); err != nil {
		return domain.PublicKeyEntry{}, err
	}
	return s.keys.PutPublicKey(roomID, userID, publicKey), nil
}

func (s *KeyService) GetPublicKey(ctx context.Context, roomID, userID string) (domain.PublicKeyEntry, error) {
	return s.keys.GetPublicKey(domain.NormalizeRoomID(roomID), strings.TrimSpace(userID))
}

// StoreRoomKey stores the wrapped symmetric key for a room. One-shot: the
// first successful write is permanent and later writes get
// ErrRoomKeyExists.
func (s *KeyService) StoreRoomKey(ctx context.Context, roomID, encryptedKey string) (domain.RoomKey, error) {
	roomID = domain.NormalizeRoomID(roomID)
	if roomID == "" || encryptedKey == "" {
		return domain.RoomKey{}, domain.ErrInvalidInput
	}
	if !s.rooms.Exists(roomID) {
		return domain.RoomKey{}, domain.ErrRoomNotFound
	}
	return s.keys.PutRoomKey(roomID, encryptedKey)
}

func (s *KeyService) GetRoomKey(ctx context.Context, roomID string) (domain.RoomKey, error) {
	return s.keys.GetRoomKey(domain.NormalizeRoomID(roomID))
}

// ListMembers returns the room's membership with keys on file.
func (s *KeyService) ListMembers(ctx context.Context, roomID string) ([]MemberKey, error) {
	roomID = domain.NormalizeRoomID(roomID)
	members, err := s.rooms.Members(roomID)
	if err != nil {
		return nil, err
	}
	out := make([]MemberKey, 0, len(members))
	for _, m := range members {
		row := MemberKey{UserID: m.UserID, JoinedAt: m.JoinedAt}
		if entry, err := s.keys.GetPublicKey(roomID, m.UserID); err == nil {
			row.PublicKey = entry.PublicKey
		}
		out = append(out, row)
	}
	return out, nil
}
