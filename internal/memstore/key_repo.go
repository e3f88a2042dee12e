package memstore

import (
	"sync"

	"github.com/cipherdrop/relay-service/internal/domain"
)

// KeyRepository holds two independent namespaces: public keys per
// (room, user) and wrapped room keys per room. Both values are opaque to
// the relay.
type KeyRepository struct {
	mu         sync.RWMutex
	publicKeys map[string]map[string]domain.PublicKeyEntry // roomID -> userID -> entry
	roomKeys   map[string]domain.RoomKey
	clock      Clock
}

func NewKeyRepository(clock Clock) *KeyRepository {
	return &KeyRepository{
		publicKeys: make(map[string]map[string]domain.PublicKeyEntry),
		roomKeys:   make(map[string]domain.RoomKey),
		clock:      orNow(clock),
	}
}

// PutPublicKey registers or replaces the key on file for (roomID, userID).
// Last write wins.
func (r *KeyRepository) PutPublicKey(roomID, userID, publicKey string) domain.PublicKeyEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	byUser, ok := r.publicKeys[roomID]
	if !ok {
		byUser = make(map[string]domain.PublicKeyEntry)
		r.publicKeys[roomID] = byUser
	}
	entry := domain.PublicKeyEntry{
		RoomID:    roomID,
		UserID:    userID,
		PublicKey: publicKey,
		UpdatedAt: r.clock(),
	}
	byUser[userID] = entry
	return entry
}

func (r *KeyRepository) GetPublicKey(roomID, userID string) (domain.PublicKeyEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if entry, ok := r.publicKeys[roomID][userID]; ok {
		return entry, nil
	}
	return domain.PublicKeyEntry{}, domain.ErrNotFound
}

// PutRoomKey stores the wrapped room key once. The check and the write
// happen under one lock so concurrent first writers cannot both win.
func (r *KeyRepository) PutRoomKey(roomID, encryptedKey string) (domain.RoomKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roomKeys[roomID]; ok {
		return domain.RoomKey{}, domain.ErrRoomKeyExists
	}
	key := domain.RoomKey{
		RoomID:       roomID,
		EncryptedKey: encryptedKey,
		CreatedAt:    r.clock(),
	}
	r.roomKeys[roomID] = key
	return key, nil
}

func (r *KeyRepository) GetRoomKey(roomID string) (domain.RoomKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key, ok := r.roomKeys[roomID]; ok {
		return key, nil
	}
	return domain.RoomKey{}, domain.ErrNotFound
}
