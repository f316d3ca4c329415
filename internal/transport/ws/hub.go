package ws

import (
	"errors"
	"log/slog"
	"sync"
)

var ErrConnNotFound = errors.New("connection not found")

type Conn interface {
	Send(msg Message) error
	Close() error
	ID() string
}

// Hub знает все живые соединения и группы комнат.
// Реализует service.Notifier.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms map[string]map[string]struct{} // roomID -> set of connIDs
}

func NewHub() *Hub {
	return &Hub{
		conns: make(map[string]Conn),
		rooms: make(map[string]map[string]struct{}),
	}
}

func (h *Hub) Register(c Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[c.ID()] = c
}

// Unregister убирает соединение. Из групп его выводит сервис при Disconnect.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.conns, connID)
}

func (h *Hub) AddToGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rs, ok := h.rooms[roomID]
	if !ok {
		rs = make(map[string]struct{})
		h.rooms[roomID] = rs
	}
	rs[connID] = struct{}{}
}

func (h *Hub) RemoveFromGroup(roomID, connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rs, ok := h.rooms[roomID]; ok {
		delete(rs, connID)
		if len(rs) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

func (h *Hub) SendTo(connID, event string, payload any) error {
	h.mu.RLock()
	c, ok := h.conns[connID]
	h.mu.RUnlock()
	if !ok {
		return ErrConnNotFound
	}

	return c.Send(Message{Type: event, Payload: payload})
}

func (h *Hub) BroadcastToRoom(roomID, event string, payload any) {
	h.BroadcastToRoomExcept(roomID, "", event, payload)
}

// BroadcastToRoomExcept: best-effort: ошибка одного получателя не мешает остальным.
func (h *Hub) BroadcastToRoomExcept(roomID, exceptConnID, event string, payload any) {
	msg := Message{Type: event, Payload: payload}
	for _, c := range h.targets(roomID, exceptConnID) {
		if err := c.Send(msg); err != nil {
			slog.Debug("ws broadcast send failed", "room", roomID, "conn", c.ID(), "event", event, "err", err)
		}
	}
}

// CloseAll закрывает все соединения (остановка сервера).
func (h *Hub) CloseAll() {
	h.mu.RLock()
	conns := make([]Conn, 0, len(h.conns))
	for _, c := range h.conns {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		_ = c.Close()
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// снимок получателей, отправка идёт без замка хаба
func (h *Hub) targets(roomID, except string) []Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rs := h.rooms[roomID]
	out := make([]Conn, 0, len(rs))
	for id := range rs {
		if id == except {
			continue
		}
		if c, ok := h.conns[id]; ok {
			out = append(out, c)
		}
	}
	return out
}
