package domain

import "time"

// PublicKeyEntry is the key on file for one (room, user) pair. Overwrites
// are allowed: the latest registration wins.
type PublicKeyEntry struct {
	RoomID    string
	UserID    string
	PublicKey string
	UpdatedAt time.Time
}

// RoomKey is the wrapped symmetric key for a room. At most one exists per
// room and the first successful write is permanent: the relay cannot verify
// key provenance, so overwrites are refused rather than trusted.
type RoomKey struct {
	RoomID       string
	EncryptedKey string
	CreatedAt    time.Time
}
