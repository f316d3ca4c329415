package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/registry"
)

const MaxMessageLength = 200

// Caller: соединение и логин, извлечённый транспортом из токена.
type Caller struct {
	ConnID string
	Login  string
}

type RoomInfo struct {
	ID              string               `json:"id"`
	Participants    []domain.Participant `json:"participants"`
	MaxParticipants int                  `json:"maxParticipants"`
	Phase           domain.Phase         `json:"phase"`
}

type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// WatchService координирует комнаты совместного просмотра.
//
// Порядок работы с замками: сетевые вызовы (identity, каталог видео) до замка комнаты,
// проверки и изменения состояния под замком, отправка событий после него.
type WatchService struct {
	rooms    *registry.Rooms
	bindings *registry.Bindings
	identity IdentityResolver
	videos   VideoCatalog
	notifier Notifier

	now func() time.Time
}

func NewWatchService(
	rooms *registry.Rooms,
	bindings *registry.Bindings,
	identity IdentityResolver,
	videos VideoCatalog,
	notifier Notifier,
) *WatchService {
	return &WatchService{
		rooms:    rooms,
		bindings: bindings,
		identity: identity,
		videos:   videos,
		notifier: notifier,
		now:      time.Now,
	}
}

func (s *WatchService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *WatchService) CreateRoom(ctx context.Context, c Caller) (RoomCreatedPayload, error) {
	p, err := s.resolve(ctx, c.Login)
	if err != nil {
		return RoomCreatedPayload{}, err
	}
	// соединение может быть только в одной комнате
	s.leave(c.ConnID)

	room, err := s.rooms.Create()
	if err != nil {
		return RoomCreatedPayload{}, fmt.Errorf("create room: %w", err)
	}

	room.Lock()
	if err := room.AddParticipant(c.ConnID, p); err != nil {
		room.Unlock()
		s.rooms.Remove(room)
		return RoomCreatedPayload{}, fmt.Errorf("create room: %w", err)
	}
	s.notifier.AddToGroup(room.ID(), c.ConnID)
	s.bindings.Bind(c.ConnID, room.ID())
	snap := room.Snapshot(s.now())
	room.Unlock()

	created := RoomCreatedPayload{RoomID: room.ID(), AccessCode: room.AccessCode()}
	s.sendTo(c.ConnID, EventRoomCreated, created)
	s.sendTo(c.ConnID, EventInitialize, initializeFrom(snap))

	slog.InfoContext(ctx, "watch room created", "room", room.ID(), "login", p.Login, "conn", c.ConnID)

	return created, nil
}

func (s *WatchService) JoinRoom(ctx context.Context, c Caller, roomID, accessCode string) error {
	p, err := s.resolve(ctx, c.Login)
	if err != nil {
		return err
	}
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return domain.ErrRoomNotFound
	}
	if !room.VerifyAccessCode(accessCode) {
		return domain.ErrWrongAccessCode
	}
	if cur, ok := s.bindings.Lookup(c.ConnID); ok {
		if cur == roomID {
			return domain.ErrAlreadyMember
		}
		s.leave(c.ConnID)
	}

	room.Lock()
	if err := room.AddParticipant(c.ConnID, p); err != nil {
		room.Unlock()
		return err
	}
	s.notifier.AddToGroup(roomID, c.ConnID)
	s.bindings.Bind(c.ConnID, roomID)
	now := s.now()
	snap := room.Snapshot(now)
	room.Unlock()

	s.sendTo(c.ConnID, EventInitialize, initializeFrom(snap))
	s.notifier.BroadcastToRoomExcept(roomID, c.ConnID, EventParticipantsUpdate, ParticipantsUpdatePayload{
		Participants: snap.Participants,
		Message:      domain.NewSystemMessage(fmt.Sprintf("%s joined the room", p.Login), now),
	})

	slog.InfoContext(ctx, "watch room joined", "room", roomID, "login", p.Login, "conn", c.ConnID, "participants", len(snap.Participants))

	return nil
}

func (s *WatchService) SetVideo(ctx context.Context, c Caller, videoURL string) error {
	room, err := s.boundRoom(c.ConnID)
	if err != nil {
		return err
	}
	videoID, err := ParseVideoID(videoURL)
	if err != nil {
		return err
	}
	v, err := s.videos.GetPublished(ctx, videoID)
	if err != nil {
		if errors.Is(err, ErrVideoNotFound) {
			return domain.ErrInvalidVideo
		}
		return fmt.Errorf("get video %s: %w", videoID, err)
	}

	room.Lock()
	if !isMember(room, c.ConnID) {
		room.Unlock()
		return domain.ErrNotRoomMember
	}
	room.SetVideo(v, s.now())
	room.Unlock()

	s.notifier.BroadcastToRoom(room.ID(), EventVideoChanged, videoChangedFrom(v))

	slog.InfoContext(ctx, "watch video changed", "room", room.ID(), "video", v.ID, "conn", c.ConnID)

	return nil
}

func (s *WatchService) PlayPause(ctx context.Context, c Caller, playing bool, at float64) error {
	room, err := s.boundRoom(c.ConnID)
	if err != nil {
		return err
	}
	at = clampTime(at)

	room.Lock()
	if !isMember(room, c.ConnID) {
		room.Unlock()
		return domain.ErrNotRoomMember
	}
	room.PlayPause(playing, at, s.now())
	room.Unlock()

	s.notifier.BroadcastToRoomExcept(room.ID(), c.ConnID, EventPlayPause, PlayPausePayload{IsPlaying: playing, Time: at})

	slog.DebugContext(ctx, "watch play/pause", "room", room.ID(), "playing", playing, "time", at)

	return nil
}

func (s *WatchService) Seek(ctx context.Context, c Caller, at float64) error {
	room, err := s.boundRoom(c.ConnID)
	if err != nil {
		return err
	}
	at = clampTime(at)

	room.Lock()
	if !isMember(room, c.ConnID) {
		room.Unlock()
		return domain.ErrNotRoomMember
	}
	room.Seek(at, s.now())
	room.Unlock()

	s.notifier.BroadcastToRoomExcept(room.ID(), c.ConnID, EventSeek, SeekPayload{Time: at})

	slog.DebugContext(ctx, "watch seek", "room", room.ID(), "time", at)

	return nil
}

func (s *WatchService) SendMessage(_ context.Context, c Caller, text string) error {
	room, err := s.boundRoom(c.ConnID)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrMessageEmpty
	}
	if utf8.RuneCountInString(text) > MaxMessageLength {
		return domain.ErrMessageTooLong
	}

	room.Lock()
	p, ok := room.Participant(c.ConnID)
	if !ok || room.Closed() {
		room.Unlock()
		return domain.ErrNotRoomMember
	}
	msg := domain.NewUserMessage(p.Login, text, s.now())
	room.Unlock()

	s.notifier.BroadcastToRoomExcept(room.ID(), c.ConnID, EventReceiveMessage, msg)

	return nil
}

// LeaveRoom идемпотентен: без привязки ничего не делает.
func (s *WatchService) LeaveRoom(_ context.Context, c Caller) {
	s.leave(c.ConnID)
}

// Disconnect вызывается транспортом при закрытии соединения.
func (s *WatchService) Disconnect(_ context.Context, connID string) {
	s.leave(connID)
}

func (s *WatchService) RoomInfo(roomID string) (RoomInfo, error) {
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return RoomInfo{}, domain.ErrRoomNotFound
	}

	room.Lock()
	defer room.Unlock()
	if room.Closed() {
		return RoomInfo{}, domain.ErrRoomNotFound
	}

	return RoomInfo{
		ID:              room.ID(),
		Participants:    room.Participants(),
		MaxParticipants: domain.MaxParticipants,
		Phase:           room.Phase(s.now()),
	}, nil
}

func (s *WatchService) Stats() Stats {
	return Stats{
		Rooms:       s.rooms.Len(),
		Connections: s.bindings.Len(),
	}
}

func (s *WatchService) leave(connID string) {
	// снятие привязки пропускает дальше ровно один вызов
	roomID, ok := s.bindings.Unbind(connID)
	if !ok {
		return
	}
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return
	}

	room.Lock()
	p, removed := room.RemoveParticipant(connID)
	s.notifier.RemoveFromGroup(roomID, connID)
	empty := room.Closed()
	var rest []domain.Participant
	if !empty {
		rest = room.Participants()
	}
	room.Unlock()

	if !removed {
		return
	}
	if empty {
		s.rooms.Remove(room)
		slog.Info("watch room closed", "room", roomID)
		return
	}

	s.notifier.BroadcastToRoom(roomID, EventParticipantsUpdate, ParticipantsUpdatePayload{
		Participants: rest,
		Message:      domain.NewSystemMessage(fmt.Sprintf("%s left the room", p.Login), s.now()),
	})

	slog.Info("watch room left", "room", roomID, "login", p.Login, "conn", connID, "participants", len(rest))
}

func (s *WatchService) resolve(ctx context.Context, login string) (domain.Participant, error) {
	if strings.TrimSpace(login) == "" {
		return domain.Participant{}, domain.ErrNotAuthenticated
	}
	p, err := s.identity.ResolveIdentity(ctx, login)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return domain.Participant{}, domain.ErrNotAuthenticated
		}
		return domain.Participant{}, fmt.Errorf("resolve identity %s: %w", login, err)
	}

	return p, nil
}

// boundRoom: комната, к которой привязано соединение. Замок не берёт.
func (s *WatchService) boundRoom(connID string) (*domain.Room, error) {
	roomID, ok := s.bindings.Lookup(connID)
	if !ok {
		return nil, domain.ErrNotInRoom
	}
	room, ok := s.rooms.Get(roomID)
	if !ok {
		return nil, domain.ErrNotInRoom
	}

	return room, nil
}

func (s *WatchService) sendTo(connID, event string, payload any) {
	if err := s.notifier.SendTo(connID, event, payload); err != nil {
		slog.Warn("watch send failed", "conn", connID, "event", event, "err", err)
	}
}

// под замком комнаты
func isMember(room *domain.Room, connID string) bool {
	return !room.Closed() && room.HasConn(connID)
}

func clampTime(t float64) float64 {
	if t < 0 {
		return 0
	}
	return t
}
