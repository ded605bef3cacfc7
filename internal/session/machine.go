package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/session/scoring"
)

// State enumerates the session lifecycle. END is terminal.
type State string

const (
	StateLobby          State = "LOBBY"
	StateCountdown      State = "QUESTION_COUNTDOWN"
	StateQuestionOpen   State = "QUESTION_OPEN"
	StateQuestionClosed State = "QUESTION_CLOSE"
	StateAnswerShow     State = "ANSWER_SHOW"
	StateFinalResults   State = "FINAL_RESULTS"
	StateEnded          State = "END"
)

// Action enumerates administrator commands.
type Action string

const (
	ActionNextQuestion     Action = "NEXT_QUESTION"
	ActionSkipCountdown    Action = "SKIP_COUNTDOWN"
	ActionGoToAnswer       Action = "GO_TO_ANSWER"
	ActionGoToFinalResults Action = "GO_TO_FINAL_RESULTS"
	ActionEnd              Action = "END"
)

// ParseAction validates an action string from the transport layer.
func ParseAction(s string) (Action, error) {
	switch Action(s) {
	case ActionNextQuestion, ActionSkipCountdown, ActionGoToAnswer, ActionGoToFinalResults, ActionEnd:
		return Action(s), nil
	}
	return "", fmt.Errorf("%w: unknown action %q", ErrValidation, s)
}

// triggers cover administrator actions plus the two timer-fired events.
type trigger string

const (
	trigNextQuestion     = trigger(ActionNextQuestion)
	trigSkipCountdown    = trigger(ActionSkipCountdown)
	trigGoToAnswer       = trigger(ActionGoToAnswer)
	trigGoToFinal        = trigger(ActionGoToFinalResults)
	trigEnd              = trigger(ActionEnd)
	trigCountdownElapsed trigger = "COUNTDOWN_ELAPSED"
	trigDurationElapsed  trigger = "QUESTION_DURATION_ELAPSED"
)

// Session runs one quiz as a live, time-driven event. Every mutation
// of its state, ledgers, or scores goes through the single mutex, so
// a fired timer and a racing administrator action are applied in a
// well-defined order. At most one timer is pending at any instant;
// stale callbacks are detected by epoch and absorbed.
type Session struct {
	id        uuid.UUID
	quizID    uuid.UUID
	hostID    uuid.UUID
	createdAt time.Time

	countdown          time.Duration
	autoStartThreshold int

	scorer *scoring.Engine
	sched  Scheduler
	now    func() time.Time
	sink   Sink
	logger zerolog.Logger

	mu            sync.Mutex
	state         State
	questionIndex int
	questions     []QuestionSnapshot
	players       *playerRegistry
	ledgers       []*answerLedger
	results       []*scoring.Result
	timerEpoch    uint64
	stopTimer     func() bool
	pending       []Event
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// QuizID returns the owning quiz identifier.
func (s *Session) QuizID() uuid.UUID { return s.quizID }

// HostID returns the administrator who owns the session's quiz.
func (s *Session) HostID() uuid.UUID { return s.hostID }

// CreatedAt returns the session creation timestamp.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply dispatches an administrator action through the state machine.
// Invalid actions fail with ErrInvalidTransition and leave state
// unchanged.
func (s *Session) Apply(action Action) error {
	s.mu.Lock()
	err := s.applyLocked(trigger(action))
	events := s.takePendingLocked()
	s.mu.Unlock()

	s.emit(events)
	return err
}

// ApplyAs is Apply with an ownership check: only the quiz owner may
// drive the session.
func (s *Session) ApplyAs(hostID uuid.UUID, action Action) error {
	if hostID != s.hostID {
		return ErrForbidden
	}
	return s.Apply(action)
}

// Join admits a player to the lobby. Duplicate display names are
// rejected. If an auto-start threshold is configured, reaching it
// fires NEXT_QUESTION under the same critical section.
func (s *Session) Join(name string) (Player, error) {
	s.mu.Lock()
	if s.state != StateLobby {
		s.mu.Unlock()
		return Player{}, fmt.Errorf("%w: players can only join in the lobby", ErrInvalidTransition)
	}

	p, err := s.players.join(name, s.now())
	if err != nil {
		s.mu.Unlock()
		return Player{}, err
	}
	joined := *p
	metricPlayersJoined.Inc()
	s.pushEventLocked(Event{
		Type:        EventPlayerJoined,
		Player:      &joined,
		PlayerCount: s.players.count(),
	})

	if s.autoStartThreshold > 0 && s.players.count() >= s.autoStartThreshold {
		if err := s.applyLocked(trigNextQuestion); err != nil {
			s.logger.Warn().Err(err).Msg("auto-start failed")
		}
	}

	events := s.takePendingLocked()
	s.mu.Unlock()

	s.emit(events)
	return joined, nil
}

// Submit records a player's answer for the current question while its
// window is open. A later submission replaces the earlier one.
func (s *Session) Submit(playerID int64, questionIndex int, optionIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateQuestionOpen {
		return fmt.Errorf("%w: session state is %s", ErrAnswersClosed, s.state)
	}
	if questionIndex != s.questionIndex {
		return fmt.Errorf("%w: question %d is not the current question", ErrValidation, questionIndex)
	}
	if _, ok := s.players.get(playerID); !ok {
		return fmt.Errorf("%w: player %d", ErrPlayerNotFound, playerID)
	}
	if len(optionIDs) == 0 {
		return fmt.Errorf("%w: at least one option must be chosen", ErrValidation)
	}

	q := s.questions[s.questionIndex]
	seen := make(map[int64]struct{}, len(optionIDs))
	chosen := make([]int64, 0, len(optionIDs))
	for _, id := range optionIDs {
		if !q.HasOption(id) {
			return fmt.Errorf("%w: option %d does not belong to question %d", ErrValidation, id, questionIndex)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		chosen = append(chosen, id)
	}

	ledger := s.ledgers[s.questionIndex]
	if !ledger.open {
		return fmt.Errorf("%w: answer window closed", ErrAnswersClosed)
	}
	ledger.record(playerID, chosen, s.now())
	metricSubmissions.Inc()
	return nil
}

// Status returns a read-only snapshot of the session.
func (s *Session) Status() StatusView {
	s.mu.Lock()
	defer s.mu.Unlock()

	answerCount := 0
	if s.questionIndex >= 0 {
		answerCount = s.ledgers[s.questionIndex].count()
	}

	return StatusView{
		ID:             s.id,
		QuizID:         s.quizID,
		State:          s.state,
		QuestionIndex:  s.questionIndex,
		TotalQuestions: len(s.questions),
		Players:        s.players.list(),
		AnswerCount:    answerCount,
		CreatedAt:      s.createdAt,
	}
}

// Question returns the snapshot at the given index.
func (s *Session) Question(index int) (QuestionSnapshot, error) {
	if index < 0 || index >= len(s.questions) {
		return QuestionSnapshot{}, fmt.Errorf("%w: question %d", ErrValidation, index)
	}
	return s.questions[index], nil
}

// QuestionResult returns the scored result for a question, or
// ErrResultsNotReady if it has not been scored yet.
func (s *Session) QuestionResult(index int) (scoring.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.questions) {
		return scoring.Result{}, fmt.Errorf("%w: question %d", ErrValidation, index)
	}
	if s.results[index] == nil {
		return scoring.Result{}, fmt.Errorf("%w: question %d has not been scored", ErrResultsNotReady, index)
	}
	return *s.results[index], nil
}

// Leaderboard returns the current ranking. It is recomputed on demand
// and available in any state.
func (s *Session) Leaderboard() []LeaderboardEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.players.leaderboard()
}

// --- state machine internals (all *Locked methods require s.mu) ---

func (s *Session) applyLocked(trig trigger) error {
	switch s.state {
	case StateLobby:
		switch trig {
		case trigNextQuestion:
			return s.advanceLocked()
		case trigEnd:
			return s.endLocked()
		}
	case StateCountdown:
		switch trig {
		case trigSkipCountdown, trigCountdownElapsed:
			return s.openQuestionLocked()
		case trigEnd:
			return s.endLocked()
		}
	case StateQuestionOpen:
		switch trig {
		case trigDurationElapsed:
			return s.closeQuestionLocked()
		case trigGoToAnswer:
			return s.revealLocked()
		case trigEnd:
			return s.endLocked()
		}
	case StateQuestionClosed:
		switch trig {
		case trigGoToAnswer:
			return s.revealLocked()
		case trigGoToFinal:
			return s.finalLocked()
		case trigNextQuestion:
			return s.advanceLocked()
		case trigEnd:
			return s.endLocked()
		}
	case StateAnswerShow:
		switch trig {
		case trigNextQuestion:
			return s.advanceLocked()
		case trigGoToFinal:
			return s.finalLocked()
		case trigEnd:
			return s.endLocked()
		}
	case StateFinalResults:
		if trig == trigEnd {
			return s.endLocked()
		}
	case StateEnded:
		// terminal
	}
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, trig, s.state)
}

// setStateLocked performs the bookkeeping every transition shares:
// cancel the pending timer, bump the epoch so a lost-race callback
// becomes stale, record the new state.
func (s *Session) setStateLocked(next State) {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
	s.timerEpoch++
	s.state = next
	metricTransitions.WithLabelValues(string(next)).Inc()
	s.pushEventLocked(Event{Type: EventStateChanged})
}

// scheduleLocked arms the session's single timer. The callback
// re-checks the captured epoch under the lock before acting.
func (s *Session) scheduleLocked(d time.Duration, trig trigger) {
	epoch := s.timerEpoch
	s.stopTimer = s.sched.AfterFunc(d, func() {
		s.timerFired(epoch, trig)
	})
}

func (s *Session) timerFired(epoch uint64, trig trigger) {
	s.mu.Lock()
	if epoch != s.timerEpoch {
		s.mu.Unlock()
		metricStaleTimers.Inc()
		return
	}
	s.stopTimer = nil
	err := s.applyLocked(trig)
	events := s.takePendingLocked()
	s.mu.Unlock()

	s.emit(events)
	if err != nil {
		// A timer firing against a state it no longer matches is an
		// expected race, absorbed rather than surfaced.
		s.logger.Debug().Err(err).Str("trigger", string(trig)).Msg("timer event absorbed")
	}
}

func (s *Session) advanceLocked() error {
	if s.questionIndex+1 >= len(s.questions) {
		return fmt.Errorf("%w: no questions remaining", ErrInvalidTransition)
	}
	if s.state == StateQuestionClosed {
		s.scoreCurrentLocked()
	}
	s.questionIndex++
	s.setStateLocked(StateCountdown)
	s.pushEventLocked(Event{Type: EventCountdown})
	s.scheduleLocked(s.countdown, trigCountdownElapsed)
	return nil
}

func (s *Session) openQuestionLocked() error {
	s.setStateLocked(StateQuestionOpen)
	q := s.questions[s.questionIndex]
	s.ledgers[s.questionIndex].openWindow()
	s.pushEventLocked(Event{Type: EventQuestionOpen, Question: &q})
	s.scheduleLocked(q.Duration, trigDurationElapsed)
	return nil
}

func (s *Session) closeQuestionLocked() error {
	s.ledgers[s.questionIndex].closeWindow()
	s.setStateLocked(StateQuestionClosed)
	s.pushEventLocked(Event{Type: EventQuestionClose})
	return nil
}

func (s *Session) revealLocked() error {
	s.ledgers[s.questionIndex].closeWindow()
	s.scoreCurrentLocked()
	s.setStateLocked(StateAnswerShow)
	result := *s.results[s.questionIndex]
	s.pushEventLocked(Event{Type: EventAnswerReveal, Result: &result})
	return nil
}

func (s *Session) finalLocked() error {
	if s.state == StateQuestionClosed {
		s.scoreCurrentLocked()
	}
	s.setStateLocked(StateFinalResults)
	s.pushEventLocked(Event{Type: EventFinalResults, Leaderboard: s.players.leaderboard()})
	return nil
}

func (s *Session) endLocked() error {
	if s.questionIndex >= 0 {
		s.ledgers[s.questionIndex].closeWindow()
	}
	s.setStateLocked(StateEnded)
	s.pushEventLocked(Event{Type: EventSessionEnded})
	return nil
}

// scoreCurrentLocked scores the current question exactly once and
// credits player totals. Re-running is a no-op, which keeps scores
// monotonic.
func (s *Session) scoreCurrentLocked() {
	idx := s.questionIndex
	if idx < 0 || s.results[idx] != nil {
		return
	}
	result := s.scorer.Score(s.questions[idx].scoringQuestion(), s.ledgers[idx].submissions())
	s.results[idx] = &result
	for _, ps := range result.Scores {
		s.players.addPoints(ps.PlayerID, ps.Points)
	}
}

func (s *Session) pushEventLocked(ev Event) {
	ev.SessionID = s.id
	ev.State = s.state
	ev.QuestionIndex = s.questionIndex
	s.pending = append(s.pending, ev)
}

func (s *Session) takePendingLocked() []Event {
	events := s.pending
	s.pending = nil
	return events
}

func (s *Session) emit(events []Event) {
	if s.sink == nil {
		return
	}
	for _, ev := range events {
		s.sink(ev)
	}
}
