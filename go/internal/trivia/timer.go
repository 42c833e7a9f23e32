package trivia

import (
	"math"
	"sync"
	"time"
)

// roundTimer is the handle for one session's countdown. Stop is idempotent;
// a stopped timer emits no ticks and no expiry afterward.
type roundTimer struct {
	cancel chan struct{}
	once   sync.Once
}

func (t *roundTimer) Stop() {
	t.once.Do(func() { close(t.cancel) })
}

// startTimerLocked starts the countdown for the session's current round,
// cancelling any previous timer first so at most one runs per session.
// Called with the engine mutex held.
func (e *Engine) startTimerLocked(s *Session, d time.Duration) {
	e.cancelTimerLocked(s)
	t := &roundTimer{cancel: make(chan struct{})}
	s.timer = t

	deadline := e.clock.Now().Add(d)
	go e.runTimer(t, s.ID, s.round, deadline)
}

func (e *Engine) cancelTimerLocked(s *Session) {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// runTimer emits a tick roughly once per second with the seconds remaining
// until the deadline, computed from the clock rather than by decrementing,
// then fires the expiry. The cancel channel wins every race; a tick that
// slips through after cancellation is discarded by the generation check in
// tick/expire.
func (e *Engine) runTimer(t *roundTimer, sessionID string, gen uint64, deadline time.Time) {
	ticker := e.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-t.cancel:
			return
		case <-ticker.Chan():
			// Cancellation wins over a tick that raced it.
			select {
			case <-t.cancel:
				return
			default:
			}
			remaining := int(math.Ceil(deadline.Sub(e.clock.Now()).Seconds()))
			if remaining <= 0 {
				e.expire(sessionID, gen)
				return
			}
			e.tick(sessionID, gen, remaining)
		}
	}
}
