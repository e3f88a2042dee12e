package domain

import "time"

type Member struct {
	RoomID   string
	UserID   string
	JoinedAt time.Time
}
