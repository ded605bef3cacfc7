package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown session identifiers.
	ErrSessionNotFound = errors.New("session not found")
	// ErrPlayerNotFound is returned when a submission names a player
	// that never joined the session.
	ErrPlayerNotFound = errors.New("player not found in session")
	// ErrInvalidTransition is returned when an action is not permitted
	// in the session's current state. State is left unchanged.
	ErrInvalidTransition = errors.New("action not permitted in current state")
	// ErrForbidden is returned when the caller does not own the
	// session's quiz.
	ErrForbidden = errors.New("caller does not own this session")
	// ErrValidation is returned for malformed submissions or session
	// parameters.
	ErrValidation = errors.New("validation failed")
	// ErrAnswersClosed is returned when a submission arrives outside
	// the question's answer window.
	ErrAnswersClosed = errors.New("answers are closed")
	// ErrNameTaken is returned when a joining player's display name is
	// already in use within the session.
	ErrNameTaken = errors.New("display name already taken")
	// ErrResultsNotReady is returned when results are requested for a
	// question that has not been scored yet.
	ErrResultsNotReady = errors.New("results not ready")
)
