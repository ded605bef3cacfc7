package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/quiz"
	"github.com/quizlive/engine/internal/session/scoring"
)

// Config holds engine-wide session defaults and test hooks.
type Config struct {
	// Countdown is the delay between selecting a question and opening
	// its answer window. Defaults to 3 seconds.
	Countdown time.Duration
	// DefaultQuestionDuration fills in for questions without a
	// duration. Defaults to 30 seconds.
	DefaultQuestionDuration time.Duration
	// DefaultPoints fills in for questions without a point value.
	// Defaults to 100.
	DefaultPoints int
	// Scoring configures the scoring engine (decay policy).
	Scoring scoring.Config
	// Sink receives session events; nil disables emission.
	Sink Sink
	// Scheduler and Clock are test hooks; nil picks real timers and
	// time.Now.
	Scheduler Scheduler
	Clock     func() time.Time
}

// Registry owns every live session in the process: the boundary the
// transport layer calls into. Sessions are independently locked;
// the registry's own lock only guards the map.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	countdown       time.Duration
	defaultDuration time.Duration
	defaultPoints   int
	scorer          *scoring.Engine
	sink            Sink
	sched           Scheduler
	now             func() time.Time
	logger          zerolog.Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry(cfg Config, logger zerolog.Logger) *Registry {
	countdown := cfg.Countdown
	if countdown <= 0 {
		countdown = 3 * time.Second
	}
	defaultDuration := cfg.DefaultQuestionDuration
	if defaultDuration <= 0 {
		defaultDuration = 30 * time.Second
	}
	defaultPoints := cfg.DefaultPoints
	if defaultPoints <= 0 {
		defaultPoints = 100
	}
	sched := cfg.Scheduler
	if sched == nil {
		sched = realScheduler{}
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}

	return &Registry{
		sessions:        make(map[uuid.UUID]*Session),
		countdown:       countdown,
		defaultDuration: defaultDuration,
		defaultPoints:   defaultPoints,
		scorer:          scoring.NewEngine(cfg.Scoring),
		sink:            cfg.Sink,
		sched:           sched,
		now:             now,
		logger:          logger.With().Str("component", "session_registry").Logger(),
	}
}

// Create snapshots the quiz definition and registers a new session in
// LOBBY. autoStartThreshold, if nonzero, fires NEXT_QUESTION once that
// many players have joined.
func (r *Registry) Create(q *quiz.Quiz, autoStartThreshold int) (*Session, error) {
	if q == nil || len(q.Questions) == 0 {
		return nil, fmt.Errorf("%w: quiz must have at least one question", ErrValidation)
	}
	if autoStartThreshold < 0 {
		return nil, fmt.Errorf("%w: auto-start threshold must not be negative", ErrValidation)
	}

	questions := snapshotQuiz(q, r.defaultDuration, r.defaultPoints)
	ledgers := make([]*answerLedger, len(questions))
	for i := range ledgers {
		ledgers[i] = newAnswerLedger()
	}

	id := uuid.New()
	s := &Session{
		id:                 id,
		quizID:             q.ID,
		hostID:             q.OwnerID,
		createdAt:          r.now(),
		countdown:          r.countdown,
		autoStartThreshold: autoStartThreshold,
		scorer:             r.scorer,
		sched:              r.sched,
		now:                r.now,
		sink:               r.sink,
		logger:             r.logger.With().Str("session_id", id.String()).Logger(),
		state:              StateLobby,
		questionIndex:      -1,
		questions:          questions,
		players:            newPlayerRegistry(),
		ledgers:            ledgers,
		results:            make([]*scoring.Result, len(questions)),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	metricSessionsCreated.Inc()
	r.logger.Info().
		Str("session_id", s.id.String()).
		Str("quiz_id", q.ID.String()).
		Int("questions", len(questions)).
		Int("auto_start_threshold", autoStartThreshold).
		Msg("session created")

	return s, nil
}

// Get returns the session or ErrSessionNotFound.
func (r *Registry) Get(id uuid.UUID) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// ListActive returns the IDs of sessions for a quiz that have not
// reached END, in creation order.
func (r *Registry) ListActive(quizID uuid.UUID) []uuid.UUID {
	r.mu.RLock()
	candidates := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		if s.quizID == quizID {
			candidates = append(candidates, s)
		}
	}
	r.mu.RUnlock()

	var active []*Session
	for _, s := range candidates {
		if s.State() != StateEnded {
			active = append(active, s)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].createdAt.Before(active[j].createdAt)
	})

	ids := make([]uuid.UUID, len(active))
	for i, s := range active {
		ids[i] = s.id
	}
	return ids
}

// Reset ends every session and clears the registry. Individual
// sessions are never deleted; this is the only way they go away.
func (r *Registry) Reset() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[uuid.UUID]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		if s.State() != StateEnded {
			// End cancels any pending timer so nothing fires after reset.
			if err := s.Apply(ActionEnd); err != nil {
				r.logger.Warn().Err(err).Str("session_id", s.id.String()).Msg("end on reset failed")
			}
		}
	}
	r.logger.Info().Int("sessions", len(sessions)).Msg("registry reset")
}
