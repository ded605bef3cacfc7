package session

import (
	"time"

	"github.com/google/uuid"
)

// StatusView is the read-only snapshot of a session returned to status
// queries. It is safe to use after the session has moved on.
type StatusView struct {
	ID             uuid.UUID `json:"id"`
	QuizID         uuid.UUID `json:"quiz_id"`
	State          State     `json:"state"`
	QuestionIndex  int       `json:"question_index"`
	TotalQuestions int       `json:"total_questions"`
	Players        []Player  `json:"players"`
	AnswerCount    int       `json:"answer_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// LeaderboardEntry is one row of the session leaderboard.
type LeaderboardEntry struct {
	Position   int    `json:"position"`
	PlayerID   int64  `json:"player_id"`
	Name       string `json:"name"`
	TotalScore int    `json:"total_score"`
}
