package domain

import "time"

const DefaultMessageTTL = 24 * time.Hour

// Message is one record in a room's broadcast stream. The body is an opaque
// blob; the relay never interprets it.
type Message struct {
	ID        string
	RoomID    string
	SenderID  string
	Body      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// DirectedMessage is one per-recipient record of an E2EE fan-out. All
// records produced by a single send share MessageID and CreatedAt.
type DirectedMessage struct {
	ID            string
	MessageID     string
	RoomID        string
	SenderID      string
	RecipientID   string
	EncryptedData string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

// ExpiryAt resolves the absolute expiration instant for a message created
// at now: an explicit expiry wins when it lies in the future, otherwise the
// default TTL applies.
func ExpiryAt(now, explicit time.Time, ttl time.Duration) time.Time {
	if !explicit.IsZero() && explicit.After(now) {
		return explicit
	}
	return now.Add(ttl)
}

// Expired reports whether a record with the given expiry is dead at the
// given instant. A zero expiry never expires; records written before the
// default TTL was mandated may lack one.
func Expired(expiresAt, now time.Time) bool {
	return !expiresAt.IsZero() && !expiresAt.After(now)
}
