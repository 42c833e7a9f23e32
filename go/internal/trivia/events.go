package trivia

// Event is the wire envelope for every server-to-client message.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// EventType names a server-to-client event.
type EventType string

const (
	EventAck             EventType = "ack"
	EventJoined          EventType = "joined"
	EventPlayerJoined    EventType = "player_joined"
	EventQuestionCreated EventType = "question_created"
	EventGameStarted     EventType = "game_started"
	EventTick            EventType = "tick"
	EventPlayerAttempted EventType = "player_attempted"
	EventGuessResult     EventType = "guess_result"
	EventRoundEnded      EventType = "round_ended"
	EventPlayerLeft      EventType = "player_left"
	EventNewMaster       EventType = "new_master"
	EventChatMessage     EventType = "chat-message"
	EventGameState       EventType = "game-state"
	EventSessionsList    EventType = "sessions-list-update"
)

// Reasons attached to round_ended events.
const (
	ReasonCorrectGuess      = "correct_guess"
	ReasonAttemptsExhausted = "attempts_exhausted"
	ReasonTimeExpired       = "time_expired"
)

// GameState is the canonical session snapshot, broadcast to the group after
// every mutating event. The answer is never included.
type GameState struct {
	SessionID  string           `json:"sessionId"`
	Players    []PlayerSnapshot `json:"players"`
	GameState  Status           `json:"gameState"`
	MasterID   string           `json:"masterSocketId"`
	MasterName string           `json:"masterName"`
	Question   string           `json:"question,omitempty"`
	TimeLeft   int              `json:"timeLeft"`
}

// PlayerSnapshot is a player's public view inside a GameState.
type PlayerSnapshot struct {
	ConnID       string `json:"connectionId"`
	Name         string `json:"name"`
	Score        int    `json:"score"`
	AttemptsLeft int    `json:"attemptsLeft"`
}

// SessionSummary is one row of the global sessions list.
type SessionSummary struct {
	ID           string `json:"id"`
	MasterName   string `json:"masterName"`
	PlayersCount int    `json:"playersCount"`
	Status       Status `json:"status"`
}

// JoinedPayload is sent to a connection after it joins a session.
type JoinedPayload struct {
	SessionID  string `json:"sessionId"`
	Role       Role   `json:"role"`
	MasterName string `json:"masterName"`
}

// PlayerJoinedPayload notifies the master that a player joined.
type PlayerJoinedPayload struct {
	Name string `json:"name"`
}

// PlayerLeftPayload notifies the group that a player left.
type PlayerLeftPayload struct {
	Name string `json:"name"`
}

// QuestionCreatedPayload notifies the group that the master set a question.
type QuestionCreatedPayload struct {
	MasterName string `json:"masterName"`
}

// GameStartedPayload announces a round start to the group.
type GameStartedPayload struct {
	TimeLimit int    `json:"timeLimit"`
	Question  string `json:"question"`
}

// TickPayload carries the seconds remaining in the running round.
type TickPayload struct {
	TimeLeft int `json:"timeLeft"`
}

// PlayerAttemptedPayload announces a guess submission to the group.
type PlayerAttemptedPayload struct {
	Name         string `json:"name"`
	AttemptsLeft int    `json:"attemptsLeft"`
}

// GuessResultPayload is unicast to a submitter after a miss.
type GuessResultPayload struct {
	Correct      bool `json:"correct"`
	AttemptsLeft int  `json:"attemptsLeft"`
}

// RoundEndedPayload announces the end of a round. Winner is nil when the
// round ended by timeout or attempt exhaustion.
type RoundEndedPayload struct {
	Winner *PlayerSnapshot `json:"winner"`
	Answer string          `json:"answer"`
	Reason string          `json:"reason"`
}

// NewMasterPayload announces a master change to the group.
type NewMasterPayload struct {
	MasterID   string `json:"masterSocketId"`
	MasterName string `json:"masterName"`
}

// ChatPayload is a chat line rebroadcast to the group.
type ChatPayload struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
