package domain

import (
	"crypto/subtle"
	"sync"
	"time"
)

const MaxParticipants = 3

// Room: агрегат комнаты совместного просмотра.
// Всё, кроме ID и VerifyAccessCode, вызывается под Lock.
type Room struct {
	mu sync.Mutex

	id         string
	accessCode string

	video    Video
	playback Playback
	members  []member // порядок входа
	closed   bool
}

type member struct {
	connID string
	p      Participant
}

// Snapshot: копия состояния комнаты для нового участника.
type Snapshot struct {
	RoomID       string
	Video        Video
	Time         float64
	IsPlaying    bool
	Countdown    *float64 // nil, если отсчёт не идёт
	Participants []Participant
}

func NewRoom(id, accessCode string) *Room {
	return &Room{
		id:         id,
		accessCode: accessCode,
		members:    make([]member, 0, MaxParticipants),
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) AccessCode() string { return r.accessCode }

func (r *Room) VerifyAccessCode(code string) bool {
	return subtle.ConstantTimeCompare([]byte(r.accessCode), []byte(code)) == 1
}

func (r *Room) Lock()   { r.mu.Lock() }
func (r *Room) Unlock() { r.mu.Unlock() }

// Closed: комната опустела и удалена из реестра.
func (r *Room) Closed() bool { return r.closed }

func (r *Room) Len() int { return len(r.members) }

func (r *Room) IsFull() bool { return len(r.members) >= MaxParticipants }

func (r *Room) HasConn(connID string) bool {
	return r.indexOf(connID) >= 0
}

func (r *Room) HasLogin(login string) bool {
	for _, m := range r.members {
		if m.p.Login == login {
			return true
		}
	}
	return false
}

func (r *Room) Participant(connID string) (Participant, bool) {
	if i := r.indexOf(connID); i >= 0 {
		return r.members[i].p, true
	}
	return Participant{}, false
}

// AddParticipant добавляет участника с проверкой закрытия, дубля логина и вместимости.
func (r *Room) AddParticipant(connID string, p Participant) error {
	if r.closed {
		return ErrRoomNotFound
	}
	if r.HasConn(connID) || r.HasLogin(p.Login) {
		return ErrAlreadyMember
	}
	if r.IsFull() {
		return ErrRoomFull
	}
	r.members = append(r.members, member{connID: connID, p: p})

	return nil
}

// RemoveParticipant удаляет участника. Последний вышедший закрывает комнату.
func (r *Room) RemoveParticipant(connID string) (Participant, bool) {
	i := r.indexOf(connID)
	if i < 0 {
		return Participant{}, false
	}
	p := r.members[i].p
	r.members = append(r.members[:i], r.members[i+1:]...)
	if len(r.members) == 0 {
		r.closed = true
	}

	return p, true
}

func (r *Room) Participants() []Participant {
	out := make([]Participant, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.p)
	}
	return out
}

// ConnIDs: соединения участников в порядке входа.
func (r *Room) ConnIDs() []string {
	out := make([]string, 0, len(r.members))
	for _, m := range r.members {
		out = append(out, m.connID)
	}
	return out
}

func (r *Room) Playback() Playback { return r.playback }

// SetVideo ставит новое видео на паузу в начало и запускает отсчёт.
func (r *Room) SetVideo(v Video, now time.Time) {
	r.video = v
	r.playback = Playback{
		LastKnownTime:      0,
		IsPlaying:          false,
		CountdownStartedAt: now,
	}
}

func (r *Room) PlayPause(playing bool, at float64, now time.Time) {
	r.playback.LastKnownTime = at
	r.playback.IsPlaying = playing
	if playing {
		r.playback.PlayStartedAt = now
	} else {
		r.playback.PlayStartedAt = time.Time{}
	}
	r.playback.CountdownStartedAt = time.Time{}
}

func (r *Room) Seek(at float64, now time.Time) {
	r.playback.LastKnownTime = at
	if r.playback.IsPlaying {
		r.playback.PlayStartedAt = now
	}
	r.playback.CountdownStartedAt = time.Time{}
}

// Snapshot собирает состояние для Initialize.
// Истёкший отсчёт сбрасывается здесь же.
func (r *Room) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		RoomID:       r.id,
		Video:        r.video,
		Time:         r.playback.CurrentVideoTime(now),
		IsPlaying:    r.playback.IsPlaying,
		Participants: r.Participants(),
	}
	if left, ok := r.playback.CountdownRemaining(now); ok {
		if left > 0 {
			s.Countdown = &left
		} else {
			r.playback.CountdownStartedAt = time.Time{}
		}
	}

	return s
}

func (r *Room) Phase(now time.Time) Phase {
	switch {
	case r.video.ID == "":
		return PhaseEmpty
	case r.countdownActive(now):
		return PhaseCountdown
	case r.playback.IsPlaying:
		return PhasePlaying
	default:
		return PhasePaused
	}
}

func (r *Room) countdownActive(now time.Time) bool {
	left, ok := r.playback.CountdownRemaining(now)
	return ok && left > 0
}

func (r *Room) indexOf(connID string) int {
	for i, m := range r.members {
		if m.connID == connID {
			return i
		}
	}
	return -1
}
