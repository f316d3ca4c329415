package service

import (
	"context"
	"errors"

	"github.com/cwrk-planet/watch-together/internal/domain"
)

var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrVideoNotFound    = errors.New("video not found")
)

// IdentityResolver: логин -> участник (логин + аватар).
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, login string) (domain.Participant, error)
}

// VideoCatalog отдаёт только опубликованные видео.
// Для неопубликованного видео тоже ErrVideoNotFound.
type VideoCatalog interface {
	GetPublished(ctx context.Context, videoID string) (domain.Video, error)
}

// Notifier доставляет события соединениям и группам комнат.
// AddToGroup/RemoveFromGroup вызываются под замком комнаты и не должны блокироваться.
type Notifier interface {
	SendTo(connID, event string, payload any) error
	BroadcastToRoom(roomID, event string, payload any)
	BroadcastToRoomExcept(roomID, exceptConnID, event string, payload any)
	AddToGroup(roomID, connID string)
	RemoveFromGroup(roomID, connID string)
}
