// room/manager.go
package room

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/wfunc/onepiecedle/catalog"
	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/timer"
)

const roomIDLength = 6

// Manager 管理所有房间. The registry map has its own lock, distinct from
// each room's internal lock. Lock order is always registry before room and
// rooms never call back into the registry, so deadlock cannot occur.
type Manager struct {
	rooms map[string]*Room
	mutex sync.RWMutex

	catalog     *catalog.Catalog
	clock       *timer.Manager
	broadcaster Broadcaster

	idleTimeout time.Duration
	stopReaper  chan struct{}
	reaperOnce  sync.Once
}

// NewManager creates the room registry. A positive idleTimeout starts a
// reaper that evicts rooms with no events for longer than the timeout.
func NewManager(cat *catalog.Catalog, clock *timer.Manager, broadcaster Broadcaster, idleTimeout time.Duration) *Manager {
	m := &Manager{
		rooms:       make(map[string]*Room),
		catalog:     cat,
		clock:       clock,
		broadcaster: broadcaster,
		idleTimeout: idleTimeout,
		stopReaper:  make(chan struct{}),
	}
	if idleTimeout > 0 {
		go m.reaperLoop()
	}
	return m
}

// CreateRoom validates the configuration, generates a collision-free id and
// registers a fresh lobby with the owner as its first player.
func (m *Manager) CreateRoom(owner string, mode Mode, timerSeconds int) (*Room, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, ErrInvalidConfig
	}
	if timerSeconds <= 0 {
		return nil, ErrInvalidConfig
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	id := m.newRoomIDLocked()
	room := newRoom(id, owner, mode, timerSeconds, m.catalog, m.clock, m.broadcaster)
	m.rooms[id] = room
	return room, nil
}

// GetRoom 从管理器中获取一个房间
func (m *Manager) GetRoom(id string) (*Room, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	room, exists := m.rooms[id]
	return room, exists
}

// RemoveRoom tears a room down, stopping its round clock.
func (m *Manager) RemoveRoom(id string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if room, exists := m.rooms[id]; exists {
		room.Close()
		delete(m.rooms, id)
	}
}

// RoomIDs lists every live room, for the admin RPC.
func (m *Manager) RoomIDs() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	ids := make([]string, 0, len(m.rooms))
	for id := range m.rooms {
		ids = append(ids, id)
	}
	return ids
}

func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.rooms)
}

// Stop halts the reaper; rooms themselves stay usable.
func (m *Manager) Stop() {
	m.reaperOnce.Do(func() { close(m.stopReaper) })
}

// newRoomIDLocked generates a short crypto-random id and retries on the
// (unlikely) collision with a live room. Caller holds m.mutex.
func (m *Manager) newRoomIDLocked() string {
	for {
		buf := make([]byte, roomIDLength/2)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		id := hex.EncodeToString(buf)
		if _, exists := m.rooms[id]; !exists {
			return id
		}
	}
}

// reaperLoop periodically evicts rooms that have seen no events for longer
// than idleTimeout, bounding memory growth.
func (m *Manager) reaperLoop() {
	ticker := time.NewTicker(m.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.reapIdle(time.Now().Add(-m.idleTimeout))
		case <-m.stopReaper:
			return
		}
	}
}

func (m *Manager) reapIdle(cutoff time.Time) {
	m.mutex.Lock()
	var stale []*Room
	for id, room := range m.rooms {
		if room.LastActive().Before(cutoff) {
			stale = append(stale, room)
			delete(m.rooms, id)
		}
	}
	m.mutex.Unlock()

	for _, room := range stale {
		room.Close()
		logger.Log.Infof("Reaped idle room %s (owner %s)", room.ID, room.Owner)
	}
}
