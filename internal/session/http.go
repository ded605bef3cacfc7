package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/auth"
	"github.com/quizlive/engine/internal/quiz"
	httperrors "github.com/quizlive/engine/pkg/http/errors"
)

// HTTPHandlers provides the REST surface over the session engine.
type HTTPHandlers struct {
	registry *Registry
	quizzes  quiz.Store
	logger   zerolog.Logger
}

// NewHTTPHandlers creates session HTTP handlers.
func NewHTTPHandlers(registry *Registry, quizzes quiz.Store, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		registry: registry,
		quizzes:  quizzes,
		logger:   logger.With().Str("component", "session_http").Logger(),
	}
}

type startSessionRequest struct {
	QuizID             string `json:"quiz_id"`
	AutoStartThreshold int    `json:"auto_start_threshold"`
}

// StartSession handles POST /v1/sessions. Only the quiz owner may
// start a session for it.
func (h *HTTPHandlers) StartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Authentication required")
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	quizID, err := uuid.Parse(req.QuizID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "quiz_id must be a UUID", "quiz_id")
		return
	}

	q, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		if errors.Is(err, quiz.ErrNotFound) {
			httperrors.RespondNotFound(w, httperrors.ErrCodeQuizNotFound, "Quiz not found")
			return
		}
		h.logger.Error().Err(err).Str("quiz_id", quizID.String()).Msg("quiz load failed")
		httperrors.RespondInternalError(w, "Failed to load quiz")
		return
	}
	if q.OwnerID != claims.HostID {
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "You do not own this quiz")
		return
	}

	s, err := h.registry.Create(q, req.AutoStartThreshold)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, s.Status())
}

// GetStatus handles GET /v1/sessions/{id}.
func (h *HTTPHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, s.Status())
}

type actionRequest struct {
	Action string `json:"action"`
}

// SubmitAction handles POST /v1/sessions/{id}/actions.
func (h *HTTPHandlers) SubmitAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "Authentication required")
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := s.ApplyAs(claims.HostID, action); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, s.Status())
}

type joinRequest struct {
	Name string `json:"name"`
}

// JoinSession handles POST /v1/sessions/{id}/join.
func (h *HTTPHandlers) JoinSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	player, err := s.Join(req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, player)
}

type submitRequest struct {
	PlayerID      int64   `json:"player_id"`
	QuestionIndex int     `json:"question_index"`
	OptionIDs     []int64 `json:"option_ids"`
}

// SubmitAnswer handles POST /v1/sessions/{id}/answers.
func (h *HTTPHandlers) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	if err := s.Submit(req.PlayerID, req.QuestionIndex, req.OptionIDs); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"accepted": true})
}

// GetQuestionResults handles GET /v1/sessions/{id}/questions/{index}/results.
func (h *HTTPHandlers) GetQuestionResults(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "question index must be an integer", "index")
		return
	}

	result, err := s.QuestionResult(index)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GetFinalResults handles GET /v1/sessions/{id}/results.
func (h *HTTPHandlers) GetFinalResults(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id":  s.ID().String(),
		"state":       s.State(),
		"leaderboard": s.Leaderboard(),
	})
}

// ListActiveSessions handles GET /v1/quizzes/{quizID}/sessions.
func (h *HTTPHandlers) ListActiveSessions(w http.ResponseWriter, r *http.Request) {
	quizID, err := uuid.Parse(r.PathValue("quizID"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "quiz id must be a UUID", "quizID")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_ids": h.registry.ListActive(quizID),
	})
}

func (h *HTTPHandlers) session(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, "session id must be a UUID", "id")
		return nil, false
	}
	s, err := h.registry.Get(id)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return nil, false
	}
	return s, true
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError maps engine errors onto transport status codes.
func (h *HTTPHandlers) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, err.Error())
	case errors.Is(err, ErrPlayerNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodePlayerNotFound, err.Error())
	case errors.Is(err, ErrResultsNotReady):
		httperrors.RespondNotFound(w, httperrors.ErrCodeResultsNotReady, err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidTransition, err.Error())
	case errors.Is(err, ErrValidation):
		httperrors.RespondBadRequest(w, httperrors.ErrCodeValidationFailed, err.Error())
	case errors.Is(err, ErrAnswersClosed):
		httperrors.RespondConflict(w, httperrors.ErrCodeAnswersClosed, err.Error())
	case errors.Is(err, ErrNameTaken):
		httperrors.RespondConflict(w, httperrors.ErrCodeNameTaken, err.Error())
	case errors.Is(err, ErrForbidden):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, err.Error())
	default:
		h.logger.Error().Err(err).Msg("unexpected engine error")
		httperrors.RespondInternalError(w, "Internal error")
	}
}
