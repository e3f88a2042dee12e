package domain

import "time"

const (
	// ReceiptVisibility bounds how far back listReceipts reads.
	ReceiptVisibility = 24 * time.Hour
	// ReceiptRetention is the horizon past which the prune operation
	// deletes entries. A receipt is invisible after ReceiptVisibility but
	// still occupies memory until pruned.
	ReceiptRetention = 7 * 24 * time.Hour
)

type Receipt struct {
	RoomID      string
	MessageID   string
	RecipientID string
	Type        string
	CreatedAt   time.Time
}
