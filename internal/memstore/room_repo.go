package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/cipherdrop/relay-service/internal/domain"
)

// Clock supplies the current instant. Repositories take one so retention
// tests can drive a simulated clock; nil means time.Now.
type Clock func() time.Time

func orNow(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

type roomEntry struct {
	room    domain.Room
	members map[string]time.Time // userID -> joinedAt
}

// RoomRepository is the authoritative room registry. All identifiers are
// expected in normalized form; callers normalize at the service boundary.
type RoomRepository struct {
	mu    sync.RWMutex
	rooms map[string]*roomEntry
	clock Clock
}

func NewRoomRepository(clock Clock) *RoomRepository {
	return &RoomRepository{
		rooms: make(map[string]*roomEntry),
		clock: orNow(clock),
	}
}

// Create registers a room or, when it already exists, overwrites its
// metadata in place. Membership survives a re-create; the host is always a
// member afterwards.
func (r *RoomRepository) Create(roomID, hostID string, e2ee bool) domain.Room {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock()
	entry, ok := r.rooms[roomID]
	if !ok {
		entry = &roomEntry{members: make(map[string]time.Time)}
		r.rooms[roomID] = entry
	}
	entry.room = domain.Room{
		ID:        roomID,
		HostID:    hostID,
		E2EE:      e2ee,
		CreatedAt: now,
	}
	if _, joined := entry.members[hostID]; !joined {
		entry.members[hostID] = now
	}
	return entry.room
}

func (r *RoomRepository) Exists(roomID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}

func (r *RoomRepository) Get(roomID string) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return domain.Room{}, domain.ErrRoomNotFound
	}
	return entry.room, nil
}

// AddMember inserts userID into the room's member set. The set only grows;
// re-adding an existing member keeps the original join instant.
func (r *RoomRepository) AddMember(roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if _, joined := entry.members[userID]; !joined {
		entry.members[userID] = r.clock()
	}
	return nil
}

func (r *RoomRepository) Members(roomID string) ([]domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	list := make([]domain.Member, 0, len(entry.members))
	for userID, joinedAt := range entry.members {
		list = append(list, domain.Member{RoomID: roomID, UserID: userID, JoinedAt: joinedAt})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].JoinedAt.Equal(list[j].JoinedAt) {
			return list[i].UserID < list[j].UserID
		}
		return list[i].JoinedAt.Before(list[j].JoinedAt)
	})
	return list, nil
}

func (r *RoomRepository) MemberCount(roomID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.rooms[roomID]
	if !ok {
		return 0, domain.ErrRoomNotFound
	}
	return len(entry.members), nil
}
