// server/http.go
package server

// Single-shot HTTP endpoints: one-off guesses with full attribute feedback,
// round resets, target reveal and name autocomplete. These need no
// persistent connection and work both for rooms and for the single-player
// fallback target.

import (
	"encoding/json"
	"net/http"

	"github.com/wfunc/onepiecedle/catalog"
	"github.com/wfunc/onepiecedle/guess"
	"github.com/wfunc/onepiecedle/logger"
	"github.com/wfunc/onepiecedle/models"
	"github.com/wfunc/onepiecedle/search"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Warnf("write response: %v", err)
	}
}

// resolveTarget picks the room's target, or the single-player fallback when
// no room id is given. The bool reports whether the room was found.
func (s *GameServer) resolveTarget(roomID string) (*catalog.Character, bool) {
	if roomID == "" {
		s.soloMutex.Lock()
		defer s.soloMutex.Unlock()
		return s.soloTarget, true
	}
	r, exists := s.registry.GetRoom(roomID)
	if !exists {
		return nil, false
	}
	return r.Target(), true
}

// handleGuess answers a one-off name guess with the full feedback map. A
// winning guess overrides every status to correct.
func (s *GameServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	guessName := r.FormValue("guess")
	if guessName == "" {
		writeJSON(w, map[string]string{"error": "No guess provided"})
		return
	}

	target, found := s.resolveTarget(r.FormValue("room_id"))
	if !found {
		writeJSON(w, map[string]string{"error": "Room not found"})
		return
	}

	guessed, err := s.catalog.FindByName(guessName)
	if err != nil {
		writeJSON(w, map[string]string{"error": "Character not found"})
		return
	}

	feedback, win := guess.Compare(target, guessed, s.catalog.ArcPositions())
	result := make(map[string]any, len(feedback)+1)
	for attr, fb := range feedback {
		result[attr] = fb
	}
	if win {
		result["winner"] = true
	}
	writeJSON(w, result)
}

// handleReset starts a fresh round for a room, or re-rolls the
// single-player target.
func (s *GameServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	roomID := r.FormValue("room_id")
	if roomID != "" {
		rm, exists := s.registry.GetRoom(roomID)
		if !exists {
			writeJSON(w, map[string]string{"error": "Room not found"})
			return
		}
		rm.Reset()
		writeJSON(w, map[string]string{"message": "Room new round started", "room_id": roomID})
		return
	}

	s.soloMutex.Lock()
	s.soloTarget = s.catalog.Random()
	s.soloMutex.Unlock()
	writeJSON(w, map[string]string{"message": "New round started"})
}

// handleReveal returns the full target attributes, for end-of-game or
// debugging.
func (s *GameServer) handleReveal(w http.ResponseWriter, r *http.Request) {
	target, found := s.resolveTarget(r.URL.Query().Get("room_id"))
	if !found || target == nil {
		writeJSON(w, map[string]string{"error": "No active target"})
		return
	}
	writeJSON(w, models.NewCharacterReveal(target))
}

// handleSearch delegates name autocomplete to the search collaborator. The
// core only validates that the query is non-empty.
func (s *GameServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := []search.Result{}
	if q != "" {
		if hits := s.searcher.Search(q, s.game.SearchLimit); hits != nil {
			results = hits
		}
	}
	writeJSON(w, results)
}

func (s *GameServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
