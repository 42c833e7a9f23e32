package trivia

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// JoinResult reports the outcome of a successful join.
type JoinResult struct {
	Role       Role
	MasterName string
}

// Join adds a connection to a session, creating the session if the id is
// unknown. The first connection to claim an id becomes its master. Joins
// are refused while a round is running.
func (e *Engine) Join(sessionID, name, connID string) (JoinResult, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || connID == "" {
		return JoinResult{}, ErrInvalidInput
	}
	name = normalizeName(name, e.config.MaxNameLen)

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok {
		s = &Session{
			ID:         sessionID,
			MasterID:   connID,
			MasterName: name,
			Players:    make(map[string]*Player),
			Status:     StatusWaiting,
			CreatedAt:  e.clock.Now(),
		}
		e.store.Put(s)
		log.Info().
			Str("session_id", sessionID).
			Str("conn_id", connID).
			Str("master", name).
			Msg("session created")
	} else if s.Status == StatusInProgress {
		return JoinResult{}, ErrGameInProgress
	}

	if _, member := s.Players[connID]; !member {
		s.Players[connID] = &Player{
			ConnID:       connID,
			Name:         name,
			AttemptsLeft: e.config.AttemptsPerRound,
		}
		s.Order = append(s.Order, connID)
	}

	role := RolePlayer
	if s.MasterID == connID {
		role = RoleMaster
	}

	e.broadcast.AddToGroup(s.ID, connID)
	e.broadcast.ToConnection(connID, Event{Type: EventJoined, Data: JoinedPayload{
		SessionID:  s.ID,
		Role:       role,
		MasterName: s.MasterName,
	}})
	if role == RolePlayer {
		e.broadcast.ToConnection(s.MasterID, Event{Type: EventPlayerJoined, Data: PlayerJoinedPayload{Name: name}})
	}
	e.broadcastStateLocked(s)
	e.broadcastSessionsLocked()

	log.Info().
		Str("session_id", s.ID).
		Str("conn_id", connID).
		Str("name", name).
		Str("role", string(role)).
		Msg("player joined")

	return JoinResult{Role: role, MasterName: s.MasterName}, nil
}

// Leave removes a connection from a session. Idempotent: unknown sessions
// and non-members are ignored.
func (e *Engine) Leave(sessionID, connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.leaveLocked(sessionID, connID)
}

// Disconnect handles a transport-level drop by leaving every session that
// still tracks the connection. A connection belongs to at most one session
// in practice, but the defensive scan is cheap.
func (e *Engine) Disconnect(connID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.store.All() {
		if _, ok := s.Players[connID]; ok {
			e.leaveLocked(s.ID, connID)
		}
	}
}

func (e *Engine) leaveLocked(sessionID, connID string) {
	s, ok := e.store.Get(sessionID)
	if !ok {
		return
	}
	p, ok := s.Players[connID]
	if !ok {
		return
	}

	delete(s.Players, connID)
	s.Order = removeID(s.Order, connID)
	e.broadcast.RemoveFromGroup(s.ID, connID)
	e.broadcast.ToGroup(s.ID, Event{Type: EventPlayerLeft, Data: PlayerLeftPayload{Name: p.Name}})

	log.Info().
		Str("session_id", s.ID).
		Str("conn_id", connID).
		Str("name", p.Name).
		Msg("player left")

	if connID == s.MasterID {
		// The master is gone: the current round is voided, never scored.
		e.cancelTimerLocked(s)
		s.round++

		if len(s.Order) == 0 {
			e.destroyLocked(s)
			e.broadcastSessionsLocked()
			return
		}

		// Unlike post-round rotation, master-on-leave goes to the first
		// remaining player.
		next := s.Players[s.Order[0]]
		s.MasterID = next.ConnID
		s.MasterName = next.Name
		s.Question = ""
		s.Answer = ""
		s.Status = StatusWaiting

		e.broadcast.ToGroup(s.ID, Event{Type: EventNewMaster, Data: NewMasterPayload{
			MasterID:   s.MasterID,
			MasterName: s.MasterName,
		}})
		e.broadcastStateLocked(s)
		e.broadcastSessionsLocked()

		log.Info().
			Str("session_id", s.ID).
			Str("master_id", s.MasterID).
			Str("master", s.MasterName).
			Msg("master left, reassigned")
		return
	}

	if len(s.Order) == 0 {
		e.destroyLocked(s)
		e.broadcastSessionsLocked()
		return
	}

	e.broadcastStateLocked(s)
	e.broadcastSessionsLocked()
}

// normalizeName trims and caps a display name, falling back to "Player"
// when nothing usable remains.
func normalizeName(name string, maxLen int) string {
	name = strings.TrimSpace(name)
	if r := []rune(name); len(r) > maxLen {
		name = string(r[:maxLen])
	}
	if name == "" {
		return "Player"
	}
	return name
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
