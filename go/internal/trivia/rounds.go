package trivia

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CreateQuestion stores the question and answer for the next round. Master
// only, and only between rounds. Every player's attempts reset to the
// per-round allowance.
func (e *Engine) CreateQuestion(sessionID, connID, question, answer string) error {
	question = strings.TrimSpace(question)
	answer = strings.ToLower(strings.TrimSpace(answer))
	if question == "" || answer == "" {
		return ErrInvalidInput
	}
	if len([]rune(question)) > e.config.MaxQuestionLen || len([]rune(answer)) > e.config.MaxAnswerLen {
		return ErrInvalidInput
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok {
		return ErrNotFound
	}
	if connID != s.MasterID {
		return ErrForbidden
	}
	if s.Status != StatusWaiting {
		return ErrGameInProgress
	}

	s.Question = question
	s.Answer = answer
	for _, p := range s.Players {
		p.AttemptsLeft = e.config.AttemptsPerRound
	}

	e.broadcast.ToGroup(s.ID, Event{Type: EventQuestionCreated, Data: QuestionCreatedPayload{MasterName: s.MasterName}})
	e.broadcastStateLocked(s)

	log.Info().Str("session_id", s.ID).Msg("question created")
	return nil
}

// StartRound begins the countdown for the current question. Master only;
// needs more than two players and a question already set. A non-positive
// time limit falls back to the default.
func (e *Engine) StartRound(sessionID, connID string, timeLimitSec int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok {
		return ErrNotFound
	}
	if connID != s.MasterID {
		return ErrForbidden
	}
	if s.Status != StatusWaiting {
		return ErrGameInProgress
	}
	if len(s.Players) < e.config.MinPlayersToStart {
		return ErrNotEnoughPlayers
	}
	if s.Question == "" || s.Answer == "" {
		return ErrNoQuestion
	}
	if timeLimitSec <= 0 {
		timeLimitSec = e.config.DefaultTimeLimitSec
	}

	s.TimeLeft = timeLimitSec
	s.Status = StatusInProgress
	s.round++
	e.startTimerLocked(s, time.Duration(timeLimitSec)*time.Second)

	e.broadcast.ToGroup(s.ID, Event{Type: EventGameStarted, Data: GameStartedPayload{
		TimeLimit: timeLimitSec,
		Question:  s.Question,
	}})
	e.broadcastStateLocked(s)
	e.broadcastSessionsLocked()

	log.Info().
		Str("session_id", s.ID).
		Int("time_limit_sec", timeLimitSec).
		Msg("round started")
	return nil
}

// SubmitGuess evaluates one attempt against the stored answer. The attempt
// is spent before the guess is evaluated, and the whole group sees the
// attempt regardless of correctness. Returns whether the guess was correct.
func (e *Engine) SubmitGuess(sessionID, connID, guess string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok {
		return false, ErrNotFound
	}
	if s.Status != StatusInProgress {
		return false, ErrNoActiveRound
	}
	p, ok := s.Players[connID]
	if !ok {
		return false, ErrNotAMember
	}
	if p.AttemptsLeft <= 0 {
		return false, ErrNoAttemptsLeft
	}
	norm := strings.ToLower(strings.TrimSpace(guess))
	if norm == "" {
		return false, ErrInvalidInput
	}

	p.AttemptsLeft--
	e.broadcast.ToGroup(s.ID, Event{Type: EventPlayerAttempted, Data: PlayerAttemptedPayload{
		Name:         p.Name,
		AttemptsLeft: p.AttemptsLeft,
	}})

	if norm == s.Answer {
		p.Score += e.config.PointsPerGuess
		winner := snapshotPlayer(p)
		log.Info().
			Str("session_id", s.ID).
			Str("winner", p.Name).
			Int("score", p.Score).
			Msg("correct guess")
		e.endRoundLocked(s, &winner, ReasonCorrectGuess)
		return true, nil
	}

	e.broadcast.ToConnection(connID, Event{Type: EventGuessResult, Data: GuessResultPayload{
		Correct:      false,
		AttemptsLeft: p.AttemptsLeft,
	}})

	// The round dies with no winner only once every current player is out
	// of attempts, checked after each individual miss.
	if e.allExhaustedLocked(s) {
		e.endRoundLocked(s, nil, ReasonAttemptsExhausted)
		return false, nil
	}
	e.broadcastStateLocked(s)
	return false, nil
}

func (e *Engine) allExhaustedLocked(s *Session) bool {
	for _, p := range s.Players {
		if p.AttemptsLeft > 0 {
			return false
		}
	}
	return len(s.Players) > 0
}

// endRoundLocked finishes the running round exactly once: the timer is
// cancelled, the generation bumped, the outcome broadcast, and rotation
// scheduled after the grace delay.
func (e *Engine) endRoundLocked(s *Session, winner *PlayerSnapshot, reason string) {
	e.cancelTimerLocked(s)
	s.Status = StatusEnded
	s.round++

	e.broadcast.ToGroup(s.ID, Event{Type: EventRoundEnded, Data: RoundEndedPayload{
		Winner: winner,
		Answer: s.Answer,
		Reason: reason,
	}})
	e.broadcastStateLocked(s)
	e.broadcastSessionsLocked()
	e.scheduleRotationLocked(s)

	log.Info().
		Str("session_id", s.ID).
		Str("reason", reason).
		Msg("round ended")
}

func (e *Engine) scheduleRotationLocked(s *Session) {
	id, gen := s.ID, s.round
	e.clock.AfterFunc(e.config.RotateDelay, func() {
		e.rotate(id, gen)
	})
}

// rotate reassigns the master role after the post-round grace delay. The
// next master is the player after the current one in join order, wrapping
// around; the first player when the current master is already gone. The
// generation check makes stale callbacks harmless: the session may have
// been destroyed or its round voided while the delay ran.
func (e *Engine) rotate(sessionID string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok || s.round != gen || s.Status != StatusEnded {
		return
	}
	if len(s.Order) == 0 {
		e.destroyLocked(s)
		e.broadcastSessionsLocked()
		return
	}

	idx := -1
	for i, id := range s.Order {
		if id == s.MasterID {
			idx = i
			break
		}
	}
	nextID := s.Order[0]
	if idx >= 0 {
		nextID = s.Order[(idx+1)%len(s.Order)]
	}

	next := s.Players[nextID]
	s.MasterID = next.ConnID
	s.MasterName = next.Name
	s.Question = ""
	s.Answer = ""
	s.Status = StatusWaiting
	s.round++
	for _, p := range s.Players {
		p.AttemptsLeft = e.config.AttemptsPerRound
	}

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
		Msg("master rotated")
}

// expire is the timer manager's terminal callback for a round.
func (e *Engine) expire(sessionID string, gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok || s.round != gen || s.Status != StatusInProgress {
		return
	}
	log.Info().Str("session_id", s.ID).Msg("round timer expired")
	e.endRoundLocked(s, nil, ReasonTimeExpired)
}

// tick relays a countdown tick to the session group.
func (e *Engine) tick(sessionID string, gen uint64, remaining int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.store.Get(sessionID)
	if !ok || s.round != gen || s.Status != StatusInProgress {
		return
	}
	s.TimeLeft = remaining
	e.broadcast.ToGroup(s.ID, Event{Type: EventTick, Data: TickPayload{TimeLeft: remaining}})
}
