package scoring

import (
	"sort"
	"time"
)

// DecayPolicy maps a correct answer's rank (1-based, by submission
// time) to the points it earns. rank is always <= correctTotal, and
// basePoints is the question's point value. Policies must be
// monotonically non-increasing in rank.
type DecayPolicy func(rank, correctTotal, basePoints int) int

// NoDecay awards full points to every correct answer. This is the
// default: the rank-based curve is deliberately a swappable policy.
func NoDecay(_, _, basePoints int) int {
	return basePoints
}

// LinearDecay scales points down by rank among correct respondents:
// first gets 100%, last gets close to the floor. The floor is 10% of
// the base so a late correct answer is never worthless.
func LinearDecay(rank, correctTotal, basePoints int) int {
	if correctTotal <= 1 {
		return basePoints
	}
	floor := basePoints / 10
	span := basePoints - floor
	points := basePoints - span*(rank-1)/(correctTotal-1)
	if points < floor {
		points = floor
	}
	return points
}

// Config holds the scoring engine's pluggable policy.
type Config struct {
	Decay DecayPolicy
}

// Engine computes per-question results. Score is a pure function of
// its inputs: the same ledger always yields the same result.
type Engine struct {
	decay DecayPolicy
}

// NewEngine creates a scoring engine. A nil decay policy means NoDecay.
func NewEngine(cfg Config) *Engine {
	decay := cfg.Decay
	if decay == nil {
		decay = NoDecay
	}
	return &Engine{decay: decay}
}

// Question is the slice of a question snapshot the engine needs.
// Duplicated from the session package to avoid an import cycle.
type Question struct {
	Index            int
	Points           int
	CorrectOptionIDs []int64
}

// Submission is one player's accepted answer for a question.
type Submission struct {
	PlayerID    int64
	OptionIDs   []int64
	SubmittedAt time.Time
}

// PlayerScore is the scored outcome for one player on one question.
// Rank is 1-based among correct respondents, 0 for incorrect.
type PlayerScore struct {
	PlayerID    int64     `json:"player_id"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
	Rank        int       `json:"rank,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Result is the ranked outcome of a single question: correct answers
// first in submission order, then incorrect answers in submission
// order.
type Result struct {
	QuestionIndex int           `json:"question_index"`
	Scores        []PlayerScore `json:"scores"`
}

// Score computes the ranked result for one question's ledger.
func (e *Engine) Score(q Question, subs []Submission) Result {
	ordered := make([]Submission, len(subs))
	copy(ordered, subs)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].SubmittedAt.Equal(ordered[j].SubmittedAt) {
			return ordered[i].SubmittedAt.Before(ordered[j].SubmittedAt)
		}
		return ordered[i].PlayerID < ordered[j].PlayerID
	})

	correctSet := toSet(q.CorrectOptionIDs)

	var correct, incorrect []PlayerScore
	for _, sub := range ordered {
		if setsEqual(toSet(sub.OptionIDs), correctSet) {
			correct = append(correct, PlayerScore{
				PlayerID:    sub.PlayerID,
				Correct:     true,
				SubmittedAt: sub.SubmittedAt,
			})
		} else {
			incorrect = append(incorrect, PlayerScore{
				PlayerID:    sub.PlayerID,
				SubmittedAt: sub.SubmittedAt,
			})
		}
	}

	for i := range correct {
		correct[i].Rank = i + 1
		correct[i].Points = e.decay(i+1, len(correct), q.Points)
	}

	return Result{
		QuestionIndex: q.Index,
		Scores:        append(correct, incorrect...),
	}
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func setsEqual(a, b map[int64]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			return false
		}
	}
	return true
}
