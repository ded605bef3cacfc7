package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeInvalidToken = "invalid_token"
	ErrCodeTokenExpired = "token_expired"
	ErrCodeLoginFailed  = "login_failed"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Session engine errors
	ErrCodeSessionNotFound   = "session_not_found"
	ErrCodeQuizNotFound      = "quiz_not_found"
	ErrCodePlayerNotFound    = "player_not_found"
	ErrCodeInvalidTransition = "invalid_transition"
	ErrCodeAnswersClosed     = "answers_closed"
	ErrCodeNameTaken         = "name_taken"
	ErrCodeSessionEnded      = "session_ended"
	ErrCodeResultsNotReady   = "results_not_ready"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
)
