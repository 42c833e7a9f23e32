package trivia

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundTimerStopIsIdempotent(t *testing.T) {
	rt := &roundTimer{cancel: make(chan struct{})}
	rt.Stop()
	rt.Stop()

	select {
	case <-rt.cancel:
	default:
		t.Fatal("cancel channel not closed")
	}
}

func TestStartTimerReplacesActiveTimer(t *testing.T) {
	e, _, _ := newTestEngine(t)
	joinThree(t, e, "abc")
	s, _ := e.store.Get("abc")

	e.mu.Lock()
	e.startTimerLocked(s, 10*time.Second)
	first := s.timer
	e.startTimerLocked(s, 10*time.Second)
	second := s.timer
	e.mu.Unlock()

	require.NotSame(t, first, second)
	select {
	case <-first.cancel:
	default:
		t.Fatal("replaced timer was not cancelled")
	}
	select {
	case <-second.cancel:
		t.Fatal("active timer must not be cancelled")
	default:
	}

	e.mu.Lock()
	e.cancelTimerLocked(s)
	e.mu.Unlock()
	select {
	case <-second.cancel:
	default:
		t.Fatal("cancel did not stop the active timer")
	}
	require.Nil(t, s.timer)
}

func TestCancelledTimerEmitsNothing(t *testing.T) {
	e, fb, clk := newTestEngine(t)
	joinThree(t, e, "abc")
	require.NoError(t, e.CreateQuestion("abc", "c1", "2+2", "4"))
	require.NoError(t, e.StartRound("abc", "c1", 5))
	clk.BlockUntil(1)

	s, _ := e.store.Get("abc")
	e.mu.Lock()
	e.cancelTimerLocked(s)
	e.mu.Unlock()

	clk.Advance(30 * time.Second)
	require.Never(t, func() bool {
		return fb.countOf(EventTick) > 0 || fb.countOf(EventRoundEnded) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}
