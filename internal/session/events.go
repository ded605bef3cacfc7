package session

import (
	"github.com/google/uuid"

	"github.com/quizlive/engine/internal/session/scoring"
)

// EventType classifies session events delivered to the sink.
type EventType string

const (
	EventStateChanged  EventType = "state_changed"
	EventPlayerJoined  EventType = "player_joined"
	EventCountdown     EventType = "countdown"
	EventQuestionOpen  EventType = "question_open"
	EventQuestionClose EventType = "question_close"
	EventAnswerReveal  EventType = "answer_reveal"
	EventFinalResults  EventType = "final_results"
	EventSessionEnded  EventType = "session_ended"
)

// Event describes something that happened inside a session. Events are
// emitted after the session's critical section is released, in the
// order the changes were applied.
type Event struct {
	Type          EventType
	SessionID     uuid.UUID
	State         State
	QuestionIndex int

	// Set for EventPlayerJoined.
	Player      *Player
	PlayerCount int

	// Set for EventQuestionOpen.
	Question *QuestionSnapshot

	// Set for EventAnswerReveal.
	Result *scoring.Result

	// Set for EventFinalResults.
	Leaderboard []LeaderboardEntry
}

// Sink receives session events. Implementations must not block: they
// are called on the goroutine that drove the transition, including
// timer goroutines.
type Sink func(Event)
