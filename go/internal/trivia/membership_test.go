package trivia

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestJoinCreatesSessionWithMaster(t *testing.T) {
	e, fb, _ := newTestEngine(t)

	res, err := e.Join("abc", "Alice", "c1")
	require.NoError(t, err)
	require.Equal(t, RoleMaster, res.Role)
	require.Equal(t, "Alice", res.MasterName)

	require.True(t, e.SessionExists("abc"))
	require.True(t, fb.inGroup("abc", "c1"))

	ev, ok := fb.lastOf(EventJoined)
	require.True(t, ok)
	require.Equal(t, "c1", ev.target)
	require.Equal(t, JoinedPayload{SessionID: "abc", Role: RoleMaster, MasterName: "Alice"}, ev.event.Data)
}

func TestJoinExistingSessionAsPlayer(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	_, err := e.Join("abc", "Alice", "c1")
	require.NoError(t, err)

	res, err := e.Join("abc", "Bob", "c2")
	require.NoError(t, err)
	require.Equal(t, RolePlayer, res.Role)
	require.Equal(t, "Alice", res.MasterName)

	// The master is privately notified of the new player.
	ev, ok := fb.lastOf(EventPlayerJoined)
	require.True(t, ok)
	require.Equal(t, "conn", ev.scope)
	require.Equal(t, "c1", ev.target)
	require.Equal(t, PlayerJoinedPayload{Name: "Bob"}, ev.event.Data)
}

func TestJoinRejectedMidRound(t *testing.T) {
	e, _, _ := newTestEngine(t)
	joinThree(t, e, "abc")
	require.NoError(t, e.CreateQuestion("abc", "c1", "2+2", "4"))
	require.NoError(t, e.StartRound("abc", "c1", 10))

	_, err := e.Join("abc", "Dan", "c4")
	require.ErrorIs(t, err, ErrGameInProgress)
}

func TestJoinAllowedAfterRoundEnds(t *testing.T) {
	e, _, _ := newTestEngine(t)
	joinThree(t, e, "abc")
	require.NoError(t, e.CreateQuestion("abc", "c1", "2+2", "4"))
	require.NoError(t, e.StartRound("abc", "c1", 10))

	correct, err := e.SubmitGuess("abc", "c2", "4")
	require.NoError(t, err)
	require.True(t, correct)

	// Status is ended, not in-progress; joins go through immediately.
	_, err = e.Join("abc", "Dan", "c4")
	require.NoError(t, err)
}

func TestJoinInputValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.Join("  ", "Alice", "c1")
	require.ErrorIs(t, err, ErrInvalidInput)

	res, err := e.Join("abc", "   ", "c1")
	require.NoError(t, err)
	require.Equal(t, "Player", res.MasterName)

	long := strings.Repeat("x", 40)
	_, err = e.Join("abc", long, "c2")
	require.NoError(t, err)
	state, _ := e.SessionState("abc")
	require.Equal(t, strings.Repeat("x", 30), state.Players[1].Name)
}

func TestLeaveNonMasterKeepsSession(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	joinThree(t, e, "abc")

	e.Leave("abc", "c3")

	require.True(t, e.SessionExists("abc"))
	state, _ := e.SessionState("abc")
	require.Len(t, state.Players, 2)
	require.Equal(t, "c1", state.MasterID)
	require.False(t, fb.inGroup("abc", "c3"))

	ev, ok := fb.lastOf(EventPlayerLeft)
	require.True(t, ok)
	require.Equal(t, PlayerLeftPayload{Name: "Cara"}, ev.event.Data)
}

func TestLastLeaveDestroysSession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Join("abc", "Alice", "c1")
	require.NoError(t, err)

	e.Leave("abc", "c1")
	require.False(t, e.SessionExists("abc"))
	require.Empty(t, e.Sessions())
}

func TestMasterLeaveReassignsFirstRemaining(t *testing.T) {
	e, fb, _ := newTestEngine(t)
	joinThree(t, e, "abc")
	require.NoError(t, e.CreateQuestion("abc", "c1", "2+2", "4"))

	e.Leave("abc", "c1")

	state, _ := e.SessionState("abc")
	require.Equal(t, "c2", state.MasterID)
	require.Equal(t, "Bob", state.MasterName)
	require.Equal(t, StatusWaiting, state.GameState)
	require.Empty(t, state.Question)

	ev, ok := fb.lastOf(EventNewMaster)
	require.True(t, ok)
	require.Equal(t, NewMasterPayload{MasterID: "c2", MasterName: "Bob"}, ev.event.Data)
}

func TestMasterLeaveVoidsRunningRound(t *testing.T) {
	e, fb, clk := newTestEngine(t)
	joinThree(t, e, "abc")
	require.NoError(t, e.CreateQuestion("abc", "c1", "2+2", "4"))
	require.NoError(t, e.StartRound("abc", "c1", 10))
	clk.BlockUntil(1)

	e.Leave("abc", "c1")

	state, _ := e.SessionState("abc")
	require.Equal(t, StatusWaiting, state.GameState)

	// The round was voided, not scored: no expiry may fire even well past
	// the original deadline.
	clk.Advance(30 * time.Second)
	require.Never(t, func() bool {
		return fb.countOf(EventRoundEnded) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestDisconnectLeavesEverySession(t *testing.T) {
	e, _, _ := newTestEngine(t)
	_, err := e.Join("one", "Alice", "c1")
	require.NoError(t, err)
	_, err = e.Join("two", "Alice", "c1")
	require.NoError(t, err)
	_, err = e.Join("two", "Bob", "c2")
	require.NoError(t, err)

	e.Disconnect("c1")

	require.False(t, e.SessionExists("one"))
	require.True(t, e.SessionExists("two"))
	state, _ := e.SessionState("two")
	require.Equal(t, "c2", state.MasterID)
}

func TestLeaveIsIdempotent(t *testing.T) {
	e, _, _ := newTestEngine(t)
	joinThree(t, e, "abc")

	e.Leave("nope", "c1")
	e.Leave("abc", "stranger")
	e.Leave("abc", "c3")
	e.Leave("abc", "c3")

	state, _ := e.SessionState("abc")
	require.Len(t, state.Players, 2)
}
