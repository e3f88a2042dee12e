package ws

// Event types pushed to connected clients. Payloads carry the stored
// records as-is; the relay never sees plaintext.
const (
	TypeMessage = "message"      // broadcast message stored in the room
	TypeE2EE    = "e2ee_message" // directed record, delivered to its recipient only
	TypeReceipt = "receipt"      // delivery/read receipt appended
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type MessagePayload struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	SenderID  string `json:"sender_id"`
	Body      string `json:"message"`
	TSUnix    int64  `json:"ts_unix"`
	ExpiresAt int64  `json:"expires_at_unix,omitempty"`
}

type DirectedPayload struct {
	ID            string `json:"id"`
	MessageID     string `json:"message_id"`
	RoomID        string `json:"room_id"`
	SenderID      string `json:"sender_id"`
	RecipientID   string `json:"recipient_id"`
	EncryptedData string `json:"encrypted_data"`
	TSUnix        int64  `json:"ts_unix"`
	ExpiresAt     int64  `json:"expires_at_unix,omitempty"`
}

type ReceiptPayload struct {
	RoomID      string `json:"room_id"`
	MessageID   string `json:"message_id"`
	RecipientID string `json:"recipient_id"`
	Type        string `json:"receipt_type"`
	TSUnix      int64  `json:"ts_unix"`
}
