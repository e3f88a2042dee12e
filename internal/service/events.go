package service

import "github.com/cipherdrop/relay-service/internal/domain"

// RelayEvents receives stored records for live delivery to connected
// clients. Implementations push the opaque records as-is; the relay never
// decrypts. A nil publisher disables push.
type RelayEvents interface {
	BroadcastStored(msg domain.Message)
	DirectedStored(rec domain.DirectedMessage)
	ReceiptStored(rc domain.Receipt)
}
