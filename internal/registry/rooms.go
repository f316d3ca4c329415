package registry

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/security"
)

const (
	RoomIDLength     = 12
	AccessCodeLength = 6

	maxCreateAttempts = 16
)

var ErrIDSpaceExhausted = errors.New("could not generate unique room id")

// Rooms: живые комнаты процесса. Состояние не переживает рестарт.
type Rooms struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
	rnd   io.Reader
}

func NewRooms() *Rooms {
	return NewRoomsWithRand(rand.Reader)
}

// NewRoomsWithRand нужен тестам для детерминированных id.
func NewRoomsWithRand(r io.Reader) *Rooms {
	return &Rooms{
		rooms: make(map[string]*domain.Room),
		rnd:   r,
	}
}

// Create выдаёт новую комнату с уникальным id и свежим кодом доступа.
func (rs *Rooms) Create() (*domain.Room, error) {
	code, err := security.RandomString(rs.rnd, security.Alphanumeric, AccessCodeLength)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	for i := 0; i < maxCreateAttempts; i++ {
		id, err := security.RandomString(rs.rnd, security.Alphanumeric, RoomIDLength)
		if err != nil {
			return nil, err
		}
		if _, taken := rs.rooms[id]; taken {
			continue
		}
		room := domain.NewRoom(id, code)
		rs.rooms[id] = room
		return room, nil
	}

	return nil, ErrIDSpaceExhausted
}

func (rs *Rooms) Get(id string) (*domain.Room, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	r, ok := rs.rooms[id]
	return r, ok
}

// Remove удаляет комнату, только если под id лежит именно она.
func (rs *Rooms) Remove(room *domain.Room) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if cur, ok := rs.rooms[room.ID()]; ok && cur == room {
		delete(rs.rooms, room.ID())
	}
}

func (rs *Rooms) Len() int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	return len(rs.rooms)
}
