package room

import (
	"testing"
	"time"

	"github.com/wfunc/onepiecedle/timer"
)

func newTestManager(t *testing.T, idleTimeout time.Duration) *Manager {
	t.Helper()
	cat := testCatalog(t, "Monkey D. Luffy", "Roronoa Zoro")
	clock := timer.NewManager()
	t.Cleanup(clock.Stop)
	m := NewManager(cat, clock, &MockBroadcaster{}, idleTimeout)
	t.Cleanup(m.Stop)
	return m
}

func TestManager_CreateRoomValidation(t *testing.T) {
	m := newTestManager(t, 0)

	if _, err := m.CreateRoom("Luffy", Mode("speedrun"), 60); err != ErrInvalidConfig {
		t.Errorf("Unknown mode: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := m.CreateRoom("Luffy", ModeTimed, 0); err != ErrInvalidConfig {
		t.Errorf("Zero timer: expected ErrInvalidConfig, got %v", err)
	}
	if _, err := m.CreateRoom("Luffy", ModeTimed, -5); err != ErrInvalidConfig {
		t.Errorf("Negative timer: expected ErrInvalidConfig, got %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("Rejected creations must not register rooms, got %d", m.Len())
	}
}

func TestManager_CreateRoomIDs(t *testing.T) {
	m := newTestManager(t, 0)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		r, err := m.CreateRoom("Luffy", ModeTimed, 60)
		if err != nil {
			t.Fatalf("CreateRoom failed: %v", err)
		}
		if len(r.ID) != roomIDLength {
			t.Fatalf("Expected %d-char room id, got %q", roomIDLength, r.ID)
		}
		if seen[r.ID] {
			t.Fatalf("Duplicate room id %q", r.ID)
		}
		seen[r.ID] = true
	}
	if m.Len() != 50 {
		t.Errorf("Expected 50 rooms, got %d", m.Len())
	}
	if len(m.RoomIDs()) != 50 {
		t.Errorf("RoomIDs must list every live room")
	}
}

func TestManager_GetAndRemove(t *testing.T) {
	m := newTestManager(t, 0)

	r, err := m.CreateRoom("Luffy", ModeFirstToGuess, 60)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	got, exists := m.GetRoom(r.ID)
	if !exists || got != r {
		t.Fatal("GetRoom must return the registered room")
	}
	if _, exists := m.GetRoom("nosuch"); exists {
		t.Error("GetRoom must miss on unknown ids")
	}

	m.RemoveRoom(r.ID)
	if _, exists := m.GetRoom(r.ID); exists {
		t.Error("Removed room must no longer resolve")
	}
	// Removing twice is a no-op.
	m.RemoveRoom(r.ID)
}

func TestManager_ReapsIdleRooms(t *testing.T) {
	m := newTestManager(t, 40*time.Millisecond)

	idle, err := m.CreateRoom("Luffy", ModeTimed, 60)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}
	busy, err := m.CreateRoom("Zoro", ModeTimed, 60)
	if err != nil {
		t.Fatalf("CreateRoom failed: %v", err)
	}

	// Keep one room active past the idle window; the other goes quiet.
	deadline := time.Now().Add(300 * time.Millisecond)
	for time.Now().Before(deadline) {
		busy.Join("guest-" + time.Now().Format("05.000000000"))
		time.Sleep(10 * time.Millisecond)
	}

	if _, exists := m.GetRoom(idle.ID); exists {
		t.Error("Idle room should have been reaped")
	}
	if _, exists := m.GetRoom(busy.ID); !exists {
		t.Error("Active room must survive the reaper")
	}
}
