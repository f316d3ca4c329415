package domain

import "errors"

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrRoomNotFound     = errors.New("room not found")
	ErrWrongAccessCode  = errors.New("wrong access code")
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyMember    = errors.New("user already joined the room")
	ErrNotInRoom        = errors.New("not connected to a room")
	ErrNotRoomMember    = errors.New("user not in the room")
	ErrInvalidVideo     = errors.New("invalid video")
	ErrMessageEmpty     = errors.New("empty message")
	ErrMessageTooLong   = errors.New("message too long")
)
