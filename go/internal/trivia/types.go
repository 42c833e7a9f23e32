package trivia

import "time"

// Status is the lifecycle state of a session's round machine.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in-progress"
	StatusEnded      Status = "ended"
)

// Role is what a connection is allowed to do inside a session.
type Role string

const (
	RoleMaster Role = "master"
	RolePlayer Role = "player"
)

// Player is one connection's membership in a session.
type Player struct {
	ConnID       string
	Name         string
	Score        int
	AttemptsLeft int
}

// Session is one trivia game instance: exactly one master plus players.
// Every field is guarded by the engine mutex; timer and round are private
// to the engine's lifecycle management.
type Session struct {
	ID         string
	MasterID   string
	MasterName string
	Players    map[string]*Player
	Order      []string // join order; drives master rotation
	Status     Status
	Question   string
	Answer     string // lower-cased and trimmed
	TimeLeft   int
	CreatedAt  time.Time

	timer *roundTimer
	round uint64 // generation guard for delayed callbacks
}

// Config holds the game rule settings for the engine.
type Config struct {
	DefaultTimeLimitSec int
	AttemptsPerRound    int
	PointsPerGuess      int
	MinPlayersToStart   int
	RotateDelay         time.Duration
	MaxNameLen          int
	MaxQuestionLen      int
	MaxAnswerLen        int
}

// DefaultConfig returns the default game rules.
func DefaultConfig() Config {
	return Config{
		DefaultTimeLimitSec: 60,
		AttemptsPerRound:    3,
		PointsPerGuess:      10,
		MinPlayersToStart:   3,
		RotateDelay:         2 * time.Second,
		MaxNameLen:          30,
		MaxQuestionLen:      300,
		MaxAnswerLen:        100,
	}
}
