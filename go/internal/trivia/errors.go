package trivia

import "errors"

// All errors below are recoverable and reported back to the originating
// client; none terminate the connection or the process.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("session not found")
	ErrForbidden        = errors.New("only the session master may do that")
	ErrGameInProgress   = errors.New("game already in progress")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNoQuestion       = errors.New("no question has been set")
	ErrNoActiveRound    = errors.New("no active round")
	ErrNotAMember       = errors.New("not a member of this session")
	ErrNoAttemptsLeft   = errors.New("no attempts left")
)
