package registry

import "sync"

// Bindings: к какой комнате привязано соединение (connID -> roomID).
type Bindings struct {
	mu    sync.RWMutex
	byCon map[string]string
}

func NewBindings() *Bindings {
	return &Bindings{byCon: make(map[string]string)}
}

func (b *Bindings) Bind(connID, roomID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.byCon[connID] = roomID
}

// Unbind снимает привязку. ok=false, привязки не было (повторный выход).
func (b *Bindings) Unbind(connID string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	roomID, ok := b.byCon[connID]
	if ok {
		delete(b.byCon, connID)
	}
	return roomID, ok
}

func (b *Bindings) Lookup(connID string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	roomID, ok := b.byCon[connID]
	return roomID, ok
}

func (b *Bindings) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.byCon)
}
