package service

import (
	"context"
	"sync"
	"time"

	"github.com/cwrk-planet/watch-together/internal/domain"
	"github.com/cwrk-planet/watch-together/internal/registry"
)

type fakeIdentity struct {
	users map[string]domain.Participant
	err   error
}

func (f *fakeIdentity) ResolveIdentity(_ context.Context, login string) (domain.Participant, error) {
	if f.err != nil {
		return domain.Participant{}, f.err
	}
	if p, ok := f.users[login]; ok {
		return p, nil
	}
	return domain.Participant{Login: login, ImageURL: "/img/" + login + ".png"}, nil
}

type fakeCatalog struct {
	videos map[string]domain.Video
	err    error
}

func (f *fakeCatalog) GetPublished(_ context.Context, id string) (domain.Video, error) {
	if f.err != nil {
		return domain.Video{}, f.err
	}
	v, ok := f.videos[id]
	if !ok {
		return domain.Video{}, ErrVideoNotFound
	}
	return v, nil
}

type sent struct {
	Event   string
	Payload any
}

// fakeNotifier держит группы как хаб и складывает доставленные события по соединениям.
type fakeNotifier struct {
	mu     sync.Mutex
	groups map[string]map[string]struct{}
	inbox  map[string][]sent
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{
		groups: make(map[string]map[string]struct{}),
		inbox:  make(map[string][]sent),
	}
}

func (f *fakeNotifier) SendTo(connID, event string, payload any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[connID] = append(f.inbox[connID], sent{event, payload})
	return nil
}

func (f *fakeNotifier) BroadcastToRoom(roomID, event string, payload any) {
	f.BroadcastToRoomExcept(roomID, "", event, payload)
}

func (f *fakeNotifier) BroadcastToRoomExcept(roomID, except, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id := range f.groups[roomID] {
		if id == except {
			continue
		}
		f.inbox[id] = append(f.inbox[id], sent{event, payload})
	}
}

func (f *fakeNotifier) AddToGroup(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.groups[roomID]
	if !ok {
		g = make(map[string]struct{})
		f.groups[roomID] = g
	}
	g[connID] = struct{}{}
}

func (f *fakeNotifier) RemoveFromGroup(roomID, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups[roomID], connID)
	if len(f.groups[roomID]) == 0 {
		delete(f.groups, roomID)
	}
}

// drain возвращает и очищает входящие соединения.
func (f *fakeNotifier) drain(connID string) []sent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.inbox[connID]
	delete(f.inbox, connID)
	return out
}

func (f *fakeNotifier) groupSize(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.groups[roomID])
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	svc      *WatchService
	rooms    *registry.Rooms
	bindings *registry.Bindings
	notifier *fakeNotifier
	identity *fakeIdentity
	catalog  *fakeCatalog
	clock    *fakeClock
}

const (
	videoA = "65f1c0ffee0000000000000a"
	videoB = "65f1c0ffee0000000000000b"
)

func newFixture() *fixture {
	f := &fixture{
		rooms:    registry.NewRooms(),
		bindings: registry.NewBindings(),
		notifier: newFakeNotifier(),
		identity: &fakeIdentity{users: map[string]domain.Participant{}},
		catalog: &fakeCatalog{videos: map[string]domain.Video{
			videoA: {ID: videoA, Path: "/videos/" + videoA + "/master.m3u8", Title: "Intro"},
			videoB: {ID: videoB, Path: "/videos/" + videoB + "/master.m3u8", Title: "Sequel"},
		}},
		clock: &fakeClock{t: time.Date(2025, 5, 10, 18, 0, 0, 0, time.UTC)},
	}
	f.svc = NewWatchService(f.rooms, f.bindings, f.identity, f.catalog, f.notifier)
	f.svc.SetClock(f.clock.Now)
	return f
}

func caller(conn, login string) Caller { return Caller{ConnID: conn, Login: login} }

func events(in []sent) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Event)
	}
	return out
}
