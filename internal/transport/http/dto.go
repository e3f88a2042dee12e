package http

import "time"

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateRoomRequest struct {
	RoomID string `json:"roomId"`
	HostID string `json:"hostId"`
	E2EE   bool   `json:"e2eeEnabled"`
}

type CreateRoomResponse struct {
	RoomID    string    `json:"roomId"`
	E2EE      bool      `json:"e2eeEnabled"`
	Timestamp time.Time `json:"timestamp"`
}

type JoinRoomRequest struct {
	UserID string `json:"userId"`
}

type JoinRoomResponse struct {
	RoomID    string    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
}

type DescribeRoomResponse struct {
	Exists    bool `json:"exists"`
	E2EE      bool `json:"e2eeEnabled"`
	UserCount int  `json:"userCount"`
}

type PublishKeyRequest struct {
	PublicKey string `json:"publicKey"`
}

type PublicKeyResponse struct {
	PublicKey string    `json:"publicKey"`
	Timestamp time.Time `json:"timestamp"`
}

type RoomUserItem struct {
	UserID    string    `json:"userId"`
	PublicKey string    `json:"publicKey"`
	JoinedAt  time.Time `json:"joinedAt"`
}

type RoomUsersResponse struct {
	Users      []RoomUserItem `json:"users"`
	TotalUsers int            `json:"totalUsers"`
}

type StoreRoomKeyRequest struct {
	EncryptedKey string `json:"encryptedKey"`
}

type RoomKeyResponse struct {
	EncryptedKey string    `json:"encryptedKey"`
	Timestamp    time.Time `json:"timestamp"`
}

type SendMessageRequest struct {
	SenderID       string     `json:"senderId"`
	Body           string     `json:"message"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
}

type SendMessageResponse struct {
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageItem struct {
	ID             string     `json:"id"`
	RoomID         string     `json:"roomId"`
	SenderID       string     `json:"senderId"`
	Body           string     `json:"message"`
	Timestamp      time.Time  `json:"timestamp"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
}

type MessagesResponse struct {
	Messages []MessageItem `json:"messages"`
}

type SendDirectedRequest struct {
	SenderID          string            `json:"senderId"`
	RecipientPayloads map[string]string `json:"recipientPayloads"`
	ExpirationTime    *time.Time        `json:"expirationTime,omitempty"`
}

type SendDirectedResponse struct {
	MessageID      string    `json:"messageId"`
	RecipientCount int       `json:"recipientCount"`
	Timestamp      time.Time `json:"timestamp"`
}

type DirectedMessageItem struct {
	ID             string     `json:"id"`
	MessageID      string     `json:"messageId"`
	SenderID       string     `json:"senderId"`
	RecipientID    string     `json:"recipientId"`
	EncryptedData  string     `json:"encryptedData"`
	Timestamp      time.Time  `json:"timestamp"`
	ExpirationTime *time.Time `json:"expirationTime,omitempty"`
}

type DirectedMessagesResponse struct {
	Messages []DirectedMessageItem `json:"messages"`
}

type AppendReceiptRequest struct {
	MessageID   string `json:"messageId"`
	RecipientID string `json:"recipientId"`
	Type        string `json:"type"`
}

type ReceiptItem struct {
	MessageID   string    `json:"messageId"`
	RecipientID string    `json:"recipientId"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
}

type ReceiptsResponse struct {
	Receipts []ReceiptItem `json:"receipts"`
}

type SweepResponse struct {
	CleanedReceipts int `json:"cleanedReceipts"`
}

type StatusResponse struct {
	Status            string    `json:"status"`
	Uptime            string    `json:"uptime"`
	Timestamp         time.Time `json:"timestamp"`
	TotalRooms        int64     `json:"totalRooms"`
	TotalMessages     int64     `json:"totalMessages"`
	TotalE2EEMessages int64     `json:"totalE2eeMessages"`
	RequestsServed    int64     `json:"requestsServed"`
}
