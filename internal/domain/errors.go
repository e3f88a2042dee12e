package domain

import "errors"

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotFound      = errors.New("not found")
	ErrRoomKeyExists = errors.New("room key already set")
)
