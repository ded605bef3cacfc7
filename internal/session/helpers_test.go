package session

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/quiz"
)

// fakeTimer is a scheduled callback held until the test fires it.
type fakeTimer struct {
	d       time.Duration
	fn      func()
	stopped bool
}

// fakeScheduler captures timers instead of arming real ones, so tests
// control exactly when and in what order callbacks run.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) func() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &fakeTimer{d: d, fn: fn}
	s.timers = append(s.timers, t)
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if t.stopped {
			return false
		}
		t.stopped = true
		return true
	}
}

// pending returns the most recently armed timer that has not been
// stopped, or nil.
func (s *fakeScheduler) pending() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.timers) - 1; i >= 0; i-- {
		if !s.timers[i].stopped {
			return s.timers[i]
		}
	}
	return nil
}

// fire runs the latest pending timer callback, simulating its elapse.
func (s *fakeScheduler) fire(t *testing.T) {
	t.Helper()
	timer := s.pending()
	if timer == nil {
		t.Fatal("no pending timer to fire")
	}
	timer.fn()
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// eventRecorder collects emitted events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) sink(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *eventRecorder) last(evType EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == evType {
			return r.events[i], true
		}
	}
	return Event{}, false
}

// twoQuestionQuiz builds a quiz where question 0 has correct option 1
// and question 1 has correct option 4.
func twoQuestionQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "Capitals",
		Questions: []quiz.Question{
			{
				ID:              10,
				Prompt:          "Capital of France?",
				DurationSeconds: 10,
				Points:          100,
				Options: []quiz.Option{
					{ID: 1, Text: "Paris", Correct: true},
					{ID: 2, Text: "Lyon"},
				},
			},
			{
				ID:              11,
				Prompt:          "Capital of Japan?",
				DurationSeconds: 15,
				Points:          200,
				Options: []quiz.Option{
					{ID: 3, Text: "Osaka"},
					{ID: 4, Text: "Tokyo", Correct: true},
				},
			},
		},
	}
}

type testEnv struct {
	registry *Registry
	sched    *fakeScheduler
	clock    *fakeClock
	recorder *eventRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sched := &fakeScheduler{}
	clock := newFakeClock()
	recorder := &eventRecorder{}
	registry := NewRegistry(Config{
		Countdown: 3 * time.Second,
		Sink:      recorder.sink,
		Scheduler: sched,
		Clock:     clock.Now,
	}, zerolog.Nop())
	return &testEnv{registry: registry, sched: sched, clock: clock, recorder: recorder}
}

// openFirstQuestion drives a lobby session to QUESTION_OPEN on
// question 0 by advancing and firing the countdown.
func (e *testEnv) openFirstQuestion(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Apply(ActionNextQuestion); err != nil {
		t.Fatalf("next question: %v", err)
	}
	e.sched.fire(t)
	if got := s.State(); got != StateQuestionOpen {
		t.Fatalf("state = %s, want %s", got, StateQuestionOpen)
	}
}
