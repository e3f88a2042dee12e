package domain

import (
	"strings"
	"time"
)

type Room struct {
	ID        string
	HostID    string
	E2EE      bool
	CreatedAt time.Time
}

// NormalizeRoomID folds a caller-supplied room identifier to its canonical
// form. Every room-scoped operation must pass identifiers through here
// before touching any store, so that variants like "abc" and "ABC " collide
// onto one room.
func NormalizeRoomID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}
