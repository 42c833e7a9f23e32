package gateway

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/triviahub/go/internal/trivia"
)

// Client message types.
const (
	msgJoinSession    = "join_session"
	msgCreateQuestion = "create_question"
	msgStartGame      = "start_game"
	msgSubmitGuess    = "submit_guess"
	msgLeaveSession   = "leave_session"
	msgChatMessage    = "chat-message"
)

// ClientMessage is the envelope for all client-to-server traffic.
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Ack is the synchronous reply to every client request.
type Ack struct {
	Event   string      `json:"event"`
	OK      bool        `json:"ok"`
	Role    trivia.Role `json:"role,omitempty"`
	Correct *bool       `json:"correct,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Sender delivers acks back to the requesting connection.
type Sender interface {
	ToConnection(connID string, event trivia.Event)
}

// Router decodes client messages and dispatches them into the engine. It
// implements ClientHandler for the connection manager.
type Router struct {
	engine *trivia.Engine
	sender Sender
}

// NewRouter creates a router over an engine and an ack sender.
func NewRouter(engine *trivia.Engine, sender Sender) *Router {
	return &Router{engine: engine, sender: sender}
}

type joinPayload struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
}

type questionPayload struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

type startPayload struct {
	SessionID string `json:"sessionId"`
	TimeLimit int    `json:"timeLimit"`
}

type guessPayload struct {
	SessionID string `json:"sessionId"`
	Guess     string `json:"guess"`
}

type leavePayload struct {
	SessionID string `json:"sessionId"`
}

type chatMessagePayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message"`
}

// HandleMessage decodes one client message and applies it. Malformed
// traffic gets an error ack; it never tears the connection down.
func (r *Router) HandleMessage(connID string, data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Warn().Str("conn_id", connID).Err(err).Msg("malformed client message")
		r.nack(connID, "", trivia.ErrInvalidInput)
		return
	}

	switch msg.Type {
	case msgJoinSession:
		var p joinPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		res, err := r.engine.Join(p.SessionID, p.Name, connID)
		if err != nil {
			r.nack(connID, msg.Type, err)
			return
		}
		r.ack(connID, Ack{Event: msg.Type, OK: true, Role: res.Role})

	case msgCreateQuestion:
		var p questionPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		if err := r.engine.CreateQuestion(p.SessionID, connID, p.Question, p.Answer); err != nil {
			r.nack(connID, msg.Type, err)
			return
		}
		r.ack(connID, Ack{Event: msg.Type, OK: true})

	case msgStartGame:
		var p startPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		if err := r.engine.StartRound(p.SessionID, connID, p.TimeLimit); err != nil {
			r.nack(connID, msg.Type, err)
			return
		}
		r.ack(connID, Ack{Event: msg.Type, OK: true})

	case msgSubmitGuess:
		var p guessPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		correct, err := r.engine.SubmitGuess(p.SessionID, connID, p.Guess)
		if err != nil {
			r.nack(connID, msg.Type, err)
			return
		}
		r.ack(connID, Ack{Event: msg.Type, OK: true, Correct: &correct})

	case msgLeaveSession:
		var p leavePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		r.engine.Leave(p.SessionID, connID)
		r.ack(connID, Ack{Event: msg.Type, OK: true})

	case msgChatMessage:
		var p chatMessagePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			r.nack(connID, msg.Type, trivia.ErrInvalidInput)
			return
		}
		if err := r.engine.Chat(p.SessionID, connID, p.Message); err != nil {
			r.nack(connID, msg.Type, err)
		}

	default:
		log.Warn().
			Str("conn_id", connID).
			Str("type", msg.Type).
			Msg("unknown client message type - ignoring")
	}
}

// HandleDisconnect treats a transport drop as a leave from every session
// the connection belongs to.
func (r *Router) HandleDisconnect(connID string) {
	r.engine.Disconnect(connID)
}

func (r *Router) ack(connID string, ack Ack) {
	r.sender.ToConnection(connID, trivia.Event{Type: trivia.EventAck, Data: ack})
}

func (r *Router) nack(connID, event string, err error) {
	r.ack(connID, Ack{
		Event:   event,
		OK:      false,
		Error:   errorCode(err),
		Message: err.Error(),
	})
}

// errorCode maps engine errors onto the wire-level error taxonomy.
func errorCode(err error) string {
	switch {
	case errors.Is(err, trivia.ErrInvalidInput):
		return "InvalidInput"
	case errors.Is(err, trivia.ErrNotFound):
		return "NotFound"
	case errors.Is(err, trivia.ErrForbidden):
		return "Forbidden"
	case errors.Is(err, trivia.ErrGameInProgress):
		return "GameInProgress"
	case errors.Is(err, trivia.ErrNotEnoughPlayers):
		return "NotEnoughPlayers"
	case errors.Is(err, trivia.ErrNoQuestion):
		return "NoQuestion"
	case errors.Is(err, trivia.ErrNoActiveRound):
		return "NoActiveRound"
	case errors.Is(err, trivia.ErrNotAMember):
		return "NotAMember"
	case errors.Is(err, trivia.ErrNoAttemptsLeft):
		return "NoAttemptsLeft"
	default:
		return "Internal"
	}
}
