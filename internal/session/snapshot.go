package session

import (
	"time"

	"github.com/quizlive/engine/internal/quiz"
	"github.com/quizlive/engine/internal/session/scoring"
)

// OptionSnapshot is an immutable copy of an answer option.
type OptionSnapshot struct {
	ID      int64
	Text    string
	Correct bool
}

// QuestionSnapshot is an immutable copy of a question definition taken
// at session start. Later edits to the quiz never reach a running
// session.
type QuestionSnapshot struct {
	Index    int
	Prompt   string
	Options  []OptionSnapshot
	Duration time.Duration
	Points   int
}

// CorrectOptionIDs returns the IDs of the snapshot's correct options.
func (q QuestionSnapshot) CorrectOptionIDs() []int64 {
	var ids []int64
	for _, o := range q.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// HasOption reports whether id names one of the snapshot's options.
func (q QuestionSnapshot) HasOption(id int64) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}

func (q QuestionSnapshot) scoringQuestion() scoring.Question {
	return scoring.Question{
		Index:            q.Index,
		Points:           q.Points,
		CorrectOptionIDs: q.CorrectOptionIDs(),
	}
}

// snapshotQuiz deep-copies a quiz definition into question snapshots,
// filling in defaults for missing durations and point values.
func snapshotQuiz(q *quiz.Quiz, defaultDuration time.Duration, defaultPoints int) []QuestionSnapshot {
	snaps := make([]QuestionSnapshot, len(q.Questions))
	for i, question := range q.Questions {
		duration := time.Duration(question.DurationSeconds) * time.Second
		if duration <= 0 {
			duration = defaultDuration
		}
		points := question.Points
		if points <= 0 {
			points = defaultPoints
		}

		opts := make([]OptionSnapshot, len(question.Options))
		for j, o := range question.Options {
			opts[j] = OptionSnapshot{ID: o.ID, Text: o.Text, Correct: o.Correct}
		}

		snaps[i] = QuestionSnapshot{
			Index:    i,
			Prompt:   question.Prompt,
			Options:  opts,
			Duration: duration,
			Points:   points,
		}
	}
	return snaps
}
