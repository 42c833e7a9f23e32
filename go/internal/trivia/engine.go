package trivia

import (
	"sort"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Broadcaster delivers events to connected clients. The gateway implements
// it over WebSocket rooms; tests use a recording fake. Delivery is
// fire-and-forget and must never block the caller.
type Broadcaster interface {
	AddToGroup(sessionID, connID string)
	RemoveFromGroup(sessionID, connID string)
	ToGroup(sessionID string, event Event)
	ToConnection(connID string, event Event)
	ToAll(event Event)
}

// Engine owns the session store and applies every mutation under a single
// mutex, so each inbound event runs to completion before the next one is
// processed. Timer callbacks and the post-round rotation delay re-enter
// through the same mutex and re-check session existence and round
// generation before acting.
type Engine struct {
	mu        sync.Mutex
	store     *Store
	broadcast Broadcaster
	clock     clockwork.Clock
	config    Config
}

// NewEngine creates an engine around an empty session store.
func NewEngine(b Broadcaster, clock clockwork.Clock, config Config) *Engine {
	return &Engine{
		store:     NewStore(),
		broadcast: b,
		clock:     clock,
		config:    config,
	}
}

// Sessions returns a summary of every live session, ordered by id.
func (e *Engine) Sessions() []SessionSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summariesLocked()
}

// SessionState returns the broadcast snapshot for one session.
func (e *Engine) SessionState(id string) (GameState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.store.Get(id)
	if !ok {
		return GameState{}, false
	}
	return e.snapshotLocked(s), true
}

// SessionExists reports whether a session id is currently live.
func (e *Engine) SessionExists(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.store.Get(id)
	return ok
}

// Chat rebroadcasts a chat line to the sender's session group. No state
// effect. An empty sessionID resolves to whichever session the sender
// belongs to.
func (e *Engine) Chat(sessionID, connID, message string) error {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return ErrInvalidInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	var s *Session
	if sessionID != "" {
		var ok bool
		s, ok = e.store.Get(sessionID)
		if !ok {
			return ErrNotFound
		}
	} else {
		for _, cand := range e.store.All() {
			if _, ok := cand.Players[connID]; ok {
				s = cand
				break
			}
		}
		if s == nil {
			return ErrNotAMember
		}
	}
	p, ok := s.Players[connID]
	if !ok {
		return ErrNotAMember
	}

	e.broadcast.ToGroup(s.ID, Event{Type: EventChatMessage, Data: ChatPayload{
		Name:    p.Name,
		Message: msg,
	}})
	return nil
}

func (e *Engine) snapshotLocked(s *Session) GameState {
	players := make([]PlayerSnapshot, 0, len(s.Order))
	for _, id := range s.Order {
		players = append(players, snapshotPlayer(s.Players[id]))
	}
	return GameState{
		SessionID:  s.ID,
		Players:    players,
		GameState:  s.Status,
		MasterID:   s.MasterID,
		MasterName: s.MasterName,
		Question:   s.Question,
		TimeLeft:   s.TimeLeft,
	}
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ConnID:       p.ConnID,
		Name:         p.Name,
		Score:        p.Score,
		AttemptsLeft: p.AttemptsLeft,
	}
}

func (e *Engine) summariesLocked() []SessionSummary {
	sums := make([]SessionSummary, 0, e.store.Len())
	for _, s := range e.store.All() {
		sums = append(sums, SessionSummary{
			ID:           s.ID,
			MasterName:   s.MasterName,
			PlayersCount: len(s.Players),
			Status:       s.Status,
		})
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].ID < sums[j].ID })
	return sums
}

func (e *Engine) broadcastStateLocked(s *Session) {
	e.broadcast.ToGroup(s.ID, Event{Type: EventGameState, Data: e.snapshotLocked(s)})
}

func (e *Engine) broadcastSessionsLocked() {
	e.broadcast.ToAll(Event{Type: EventSessionsList, Data: e.summariesLocked()})
}

// destroyLocked tears a session down: any active timer is cancelled, the
// generation is bumped so pending delayed callbacks become no-ops, and the
// session leaves the store.
func (e *Engine) destroyLocked(s *Session) {
	e.cancelTimerLocked(s)
	s.round++
	e.store.Delete(s.ID)
	log.Info().Str("session_id", s.ID).Msg("session destroyed")
}
