package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStartsInLobby(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.registry.Create(twoQuestionQuiz(), 0)
	require.NoError(t, err)

	assert.Equal(t, StateLobby, s.State())
	status := s.Status()
	assert.Equal(t, -1, status.QuestionIndex)
	assert.Equal(t, 2, status.TotalQuestions)
	assert.Empty(t, status.Players)
}

func TestJoinOnlyInLobby(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)

	alice, err := s.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)

	bob, err := s.Join("bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2), bob.ID)

	_, err = s.Join("alice")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = s.Join("")
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, s.Apply(ActionNextQuestion))
	_, err = s.Join("carol")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFullSessionFlow(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.registry.Create(twoQuestionQuiz(), 0)
	require.NoError(t, err)

	alice, _ := s.Join("alice")
	bob, _ := s.Join("bob")

	// Question 0: countdown elapses, both answer, window elapses.
	require.NoError(t, s.Apply(ActionNextQuestion))
	assert.Equal(t, StateCountdown, s.State())
	env.sched.fire(t)
	assert.Equal(t, StateQuestionOpen, s.State())

	env.clock.Advance(time.Second)
	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))
	env.clock.Advance(time.Second)
	require.NoError(t, s.Submit(bob.ID, 0, []int64{2}))

	env.sched.fire(t)
	assert.Equal(t, StateQuestionClosed, s.State())

	require.NoError(t, s.Apply(ActionGoToAnswer))
	assert.Equal(t, StateAnswerShow, s.State())

	result, err := s.QuestionResult(0)
	require.NoError(t, err)
	require.Len(t, result.Scores, 2)
	assert.Equal(t, alice.ID, result.Scores[0].PlayerID)
	assert.True(t, result.Scores[0].Correct)
	assert.Equal(t, 100, result.Scores[0].Points)
	assert.False(t, result.Scores[1].Correct)
	assert.Zero(t, result.Scores[1].Points)

	// Question 1: skip the countdown, only bob answers correctly.
	require.NoError(t, s.Apply(ActionNextQuestion))
	assert.Equal(t, StateCountdown, s.State())
	require.NoError(t, s.Apply(ActionSkipCountdown))
	assert.Equal(t, StateQuestionOpen, s.State())

	env.clock.Advance(time.Second)
	require.NoError(t, s.Submit(bob.ID, 1, []int64{4}))

	// Reveal straight from the open window.
	require.NoError(t, s.Apply(ActionGoToAnswer))
	assert.Equal(t, StateAnswerShow, s.State())

	require.NoError(t, s.Apply(ActionGoToFinalResults))
	assert.Equal(t, StateFinalResults, s.State())

	lb := s.Leaderboard()
	require.Len(t, lb, 2)
	assert.Equal(t, bob.ID, lb[0].PlayerID)
	assert.Equal(t, 200, lb[0].TotalScore)
	assert.Equal(t, 1, lb[0].Position)
	assert.Equal(t, alice.ID, lb[1].PlayerID)
	assert.Equal(t, 100, lb[1].TotalScore)

	require.NoError(t, s.Apply(ActionEnd))
	assert.Equal(t, StateEnded, s.State())
}

func TestSkipCountdownAbsorbsStaleTimer(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	s.Join("alice")

	require.NoError(t, s.Apply(ActionNextQuestion))
	countdown := env.sched.pending()
	require.NotNil(t, countdown)

	require.NoError(t, s.Apply(ActionSkipCountdown))
	require.Equal(t, StateQuestionOpen, s.State())

	// The countdown callback lost the race but runs anyway. Its epoch
	// no longer matches, so the session must not advance again.
	countdown.fn()
	assert.Equal(t, StateQuestionOpen, s.State())
	assert.Equal(t, 0, s.Status().QuestionIndex)
}

func TestGoToAnswerAbsorbsStaleDurationTimer(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)

	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))
	duration := env.sched.pending()
	require.NotNil(t, duration)

	require.NoError(t, s.Apply(ActionGoToAnswer))
	require.Equal(t, StateAnswerShow, s.State())

	duration.fn()
	assert.Equal(t, StateAnswerShow, s.State())
}

func TestResubmitReplacesEarlierAnswer(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)

	require.NoError(t, s.Submit(alice.ID, 0, []int64{2}))
	env.clock.Advance(2 * time.Second)
	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))

	assert.Equal(t, 1, s.Status().AnswerCount)

	require.NoError(t, s.Apply(ActionGoToAnswer))
	result, err := s.QuestionResult(0)
	require.NoError(t, err)
	require.Len(t, result.Scores, 1)
	assert.True(t, result.Scores[0].Correct)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	alice, _ := s.Join("alice")

	// Lobby: the window has never opened.
	err := s.Submit(alice.ID, 0, []int64{1})
	assert.ErrorIs(t, err, ErrAnswersClosed)

	require.NoError(t, s.Apply(ActionNextQuestion))
	err = s.Submit(alice.ID, 0, []int64{1})
	assert.ErrorIs(t, err, ErrAnswersClosed)

	env.sched.fire(t)
	require.Equal(t, StateQuestionOpen, s.State())

	err = s.Submit(alice.ID, 1, []int64{1})
	assert.ErrorIs(t, err, ErrValidation)

	err = s.Submit(999, 0, []int64{1})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	err = s.Submit(alice.ID, 0, nil)
	assert.ErrorIs(t, err, ErrValidation)

	err = s.Submit(alice.ID, 0, []int64{42})
	assert.ErrorIs(t, err, ErrValidation)

	// Close the window; late answers bounce.
	env.sched.fire(t)
	err = s.Submit(alice.ID, 0, []int64{1})
	assert.ErrorIs(t, err, ErrAnswersClosed)
}

func TestDuplicateOptionIDsCollapse(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)

	require.NoError(t, s.Submit(alice.ID, 0, []int64{1, 1, 1}))
	require.NoError(t, s.Apply(ActionGoToAnswer))

	result, err := s.QuestionResult(0)
	require.NoError(t, err)
	require.Len(t, result.Scores, 1)
	assert.True(t, result.Scores[0].Correct)
}

func TestEndIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	require.NoError(t, s.Apply(ActionEnd))

	for _, action := range []Action{ActionNextQuestion, ActionSkipCountdown, ActionGoToAnswer, ActionGoToFinalResults, ActionEnd} {
		assert.ErrorIs(t, s.Apply(action), ErrInvalidTransition, "action %s", action)
	}
	assert.Equal(t, StateEnded, s.State())
}

func TestEndFromEveryLiveState(t *testing.T) {
	env := newTestEnv(t)

	advance := map[State]func(*Session){
		StateLobby:     func(s *Session) {},
		StateCountdown: func(s *Session) { s.Apply(ActionNextQuestion) },
		StateQuestionOpen: func(s *Session) {
			s.Apply(ActionNextQuestion)
			s.Apply(ActionSkipCountdown)
		},
		StateQuestionClosed: func(s *Session) {
			s.Apply(ActionNextQuestion)
			s.Apply(ActionSkipCountdown)
			env.sched.fire(t)
		},
		StateAnswerShow: func(s *Session) {
			s.Apply(ActionNextQuestion)
			s.Apply(ActionSkipCountdown)
			s.Apply(ActionGoToAnswer)
		},
		StateFinalResults: func(s *Session) {
			s.Apply(ActionNextQuestion)
			s.Apply(ActionSkipCountdown)
			s.Apply(ActionGoToAnswer)
			s.Apply(ActionGoToFinalResults)
		},
	}

	for state, drive := range advance {
		s, err := env.registry.Create(twoQuestionQuiz(), 0)
		require.NoError(t, err)
		drive(s)
		require.Equal(t, state, s.State(), "setup for %s", state)
		assert.NoError(t, s.Apply(ActionEnd), "END from %s", state)
		assert.Equal(t, StateEnded, s.State())
	}
}

func TestNextQuestionAfterLastFails(t *testing.T) {
	env := newTestEnv(t)
	q := twoQuestionQuiz()
	q.Questions = q.Questions[:1]
	s, err := env.registry.Create(q, 0)
	require.NoError(t, err)

	env.openFirstQuestion(t, s)
	require.NoError(t, s.Apply(ActionGoToAnswer))

	err = s.Apply(ActionNextQuestion)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, StateAnswerShow, s.State())
	assert.Equal(t, 0, s.Status().QuestionIndex)
}

func TestAutoStartThreshold(t *testing.T) {
	env := newTestEnv(t)
	s, err := env.registry.Create(twoQuestionQuiz(), 2)
	require.NoError(t, err)

	_, err = s.Join("alice")
	require.NoError(t, err)
	assert.Equal(t, StateLobby, s.State())

	_, err = s.Join("bob")
	require.NoError(t, err)
	assert.Equal(t, StateCountdown, s.State())
	assert.Equal(t, 0, s.Status().QuestionIndex)
}

func TestScoringIsIdempotentAcrossTransitions(t *testing.T) {
	env := newTestEnv(t)
	q := twoQuestionQuiz()
	q.Questions = q.Questions[:1]
	s, _ := env.registry.Create(q, 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)

	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))
	env.sched.fire(t) // close
	require.NoError(t, s.Apply(ActionGoToAnswer))
	require.NoError(t, s.Apply(ActionGoToFinalResults))

	lb := s.Leaderboard()
	require.Len(t, lb, 1)
	assert.Equal(t, 100, lb[0].TotalScore, "question must be credited exactly once")
}

func TestApplyAsChecksOwnership(t *testing.T) {
	env := newTestEnv(t)
	q := twoQuestionQuiz()
	s, _ := env.registry.Create(q, 0)

	err := s.ApplyAs(uuid.New(), ActionNextQuestion)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, StateLobby, s.State())

	assert.NoError(t, s.ApplyAs(q.OwnerID, ActionNextQuestion))
}

func TestEventOrdering(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	s.Join("alice")
	require.NoError(t, s.Apply(ActionNextQuestion))
	env.sched.fire(t)

	types := env.recorder.types()
	assert.Equal(t, []EventType{
		EventPlayerJoined,
		EventStateChanged, EventCountdown,
		EventStateChanged, EventQuestionOpen,
	}, types)

	open, ok := env.recorder.last(EventQuestionOpen)
	require.True(t, ok)
	require.NotNil(t, open.Question)
	assert.Equal(t, "Capital of France?", open.Question.Prompt)
	assert.Equal(t, 10*time.Second, open.Question.Duration)
}

func TestFinalResultsEventCarriesLeaderboard(t *testing.T) {
	env := newTestEnv(t)
	q := twoQuestionQuiz()
	q.Questions = q.Questions[:1]
	s, _ := env.registry.Create(q, 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)
	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))
	require.NoError(t, s.Apply(ActionGoToAnswer))
	require.NoError(t, s.Apply(ActionGoToFinalResults))

	ev, ok := env.recorder.last(EventFinalResults)
	require.True(t, ok)
	require.Len(t, ev.Leaderboard, 1)
	assert.Equal(t, alice.ID, ev.Leaderboard[0].PlayerID)
	assert.Equal(t, 100, ev.Leaderboard[0].TotalScore)
}

func TestSessionsAreIndependent(t *testing.T) {
	env := newTestEnv(t)
	q := twoQuestionQuiz()
	a, _ := env.registry.Create(q, 0)
	b, _ := env.registry.Create(q, 0)

	a.Join("alice")
	require.NoError(t, a.Apply(ActionNextQuestion))

	assert.Equal(t, StateCountdown, a.State())
	assert.Equal(t, StateLobby, b.State())
	assert.Empty(t, b.Status().Players)
}

func TestResultsNotReadyBeforeScoring(t *testing.T) {
	env := newTestEnv(t)
	s, _ := env.registry.Create(twoQuestionQuiz(), 0)
	alice, _ := s.Join("alice")
	env.openFirstQuestion(t, s)
	require.NoError(t, s.Submit(alice.ID, 0, []int64{1}))

	_, err := s.QuestionResult(0)
	assert.ErrorIs(t, err, ErrResultsNotReady)

	_, err = s.QuestionResult(5)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestParseAction(t *testing.T) {
	for _, valid := range []string{"NEXT_QUESTION", "SKIP_COUNTDOWN", "GO_TO_ANSWER", "GO_TO_FINAL_RESULTS", "END"} {
		action, err := ParseAction(valid)
		assert.NoError(t, err)
		assert.Equal(t, Action(valid), action)
	}

	_, err := ParseAction("DANCE")
	assert.ErrorIs(t, err, ErrValidation)
}
