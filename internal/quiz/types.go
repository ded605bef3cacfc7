package quiz

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound indicates the quiz definition could not be loaded.
var ErrNotFound = errors.New("quiz not found")

// Quiz is an immutable quiz definition. The session engine copies it
// into snapshots at session start and never writes it back.
type Quiz struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Title     string
	Questions []Question
}

// Question is one entry in a quiz's ordered question list.
type Question struct {
	ID              int64
	Prompt          string
	DurationSeconds int
	Points          int
	Options         []Option
}

// Option is a single answer choice with its correctness flag.
type Option struct {
	ID      int64
	Text    string
	Correct bool
}

// CorrectOptionIDs returns the IDs of every correct option, in option
// order.
func (q Question) CorrectOptionIDs() []int64 {
	var ids []int64
	for _, o := range q.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// HasOption reports whether the given option ID belongs to the question.
func (q Question) HasOption(id int64) bool {
	for _, o := range q.Options {
		if o.ID == id {
			return true
		}
	}
	return false
}
