package ws

import "encoding/json"

// MessageType constants for the session event protocol.
const (
	// Client -> Server
	TypeWatchSession = "watch_session"
	TypePing         = "ping"

	// Server -> Client
	TypeStateChanged  = "state_changed"
	TypePlayerJoined  = "player_joined"
	TypeCountdown     = "countdown"
	TypeQuestionOpen  = "question_open"
	TypeQuestionClose = "question_close"
	TypeAnswerReveal  = "answer_reveal"
	TypeFinalResults  = "final_results"
	TypeSessionEnded  = "session_ended"
	TypeError         = "error"
	TypePong          = "pong"
)

// Message wraps all WebSocket payloads with a type tag.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WatchSessionPayload subscribes the connection to a session stream.
type WatchSessionPayload struct {
	SessionID string `json:"session_id"`
}

// StateChangedPayload announces every state machine transition.
type StateChangedPayload struct {
	SessionID     string `json:"session_id"`
	State         string `json:"state"`
	QuestionIndex int    `json:"question_index"`
}

// PlayerJoinedPayload announces a lobby join.
type PlayerJoinedPayload struct {
	SessionID   string `json:"session_id"`
	PlayerID    int64  `json:"player_id"`
	DisplayName string `json:"display_name"`
	PlayerCount int    `json:"player_count"`
}

// QuestionOpenPayload carries the question shown to players. Correct
// flags are never included here.
type QuestionOpenPayload struct {
	SessionID       string       `json:"session_id"`
	QuestionIndex   int          `json:"question_index"`
	Prompt          string       `json:"prompt"`
	Options         []OptionView `json:"options"`
	DurationSeconds int          `json:"duration_seconds"`
}

// OptionView is the player-facing shape of an answer option.
type OptionView struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// AnswerRevealPayload carries the scored result of a question.
type AnswerRevealPayload struct {
	SessionID     string          `json:"session_id"`
	QuestionIndex int             `json:"question_index"`
	Result        json.RawMessage `json:"result"`
}

// FinalResultsPayload carries the end-of-session leaderboard.
type FinalResultsPayload struct {
	SessionID   string          `json:"session_id"`
	Leaderboard json.RawMessage `json:"leaderboard"`
}

// ErrorPayload reports a protocol-level failure to one client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
