package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func q(points int, correct ...int64) Question {
	return Question{Index: 0, Points: points, CorrectOptionIDs: correct}
}

func sub(playerID int64, offset time.Duration, options ...int64) Submission {
	return Submission{PlayerID: playerID, OptionIDs: options, SubmittedAt: base.Add(offset)}
}

func TestScoreSetEquality(t *testing.T) {
	engine := NewEngine(Config{})
	question := q(100, 1, 2)

	result := engine.Score(question, []Submission{
		sub(1, 0, 1, 2),                // exact match
		sub(2, time.Second, 1),         // subset
		sub(3, 2*time.Second, 1, 2, 3), // superset
		sub(4, 3*time.Second, 2, 1),    // order independent
	})

	require.Len(t, result.Scores, 4)
	byPlayer := make(map[int64]PlayerScore)
	for _, ps := range result.Scores {
		byPlayer[ps.PlayerID] = ps
	}
	assert.True(t, byPlayer[1].Correct)
	assert.False(t, byPlayer[2].Correct)
	assert.False(t, byPlayer[3].Correct)
	assert.True(t, byPlayer[4].Correct)
}

func TestScoreOrdersCorrectFirstBySubmissionTime(t *testing.T) {
	engine := NewEngine(Config{})
	question := q(100, 1)

	result := engine.Score(question, []Submission{
		sub(3, 3*time.Second, 1),
		sub(1, time.Second, 2),
		sub(2, 2*time.Second, 1),
	})

	require.Len(t, result.Scores, 3)
	assert.Equal(t, int64(2), result.Scores[0].PlayerID)
	assert.Equal(t, 1, result.Scores[0].Rank)
	assert.Equal(t, int64(3), result.Scores[1].PlayerID)
	assert.Equal(t, 2, result.Scores[1].Rank)
	assert.Equal(t, int64(1), result.Scores[2].PlayerID)
	assert.Zero(t, result.Scores[2].Rank)
}

func TestScoreTieBreaksByPlayerID(t *testing.T) {
	engine := NewEngine(Config{})
	question := q(100, 1)

	result := engine.Score(question, []Submission{
		sub(7, time.Second, 1),
		sub(2, time.Second, 1),
	})

	assert.Equal(t, int64(2), result.Scores[0].PlayerID)
	assert.Equal(t, int64(7), result.Scores[1].PlayerID)
}

func TestNoDecayAwardsFullPoints(t *testing.T) {
	engine := NewEngine(Config{Decay: NoDecay})
	question := q(250, 1)

	result := engine.Score(question, []Submission{
		sub(1, 0, 1),
		sub(2, time.Second, 1),
		sub(3, 2*time.Second, 1),
	})

	for _, ps := range result.Scores {
		assert.Equal(t, 250, ps.Points)
	}
}

func TestLinearDecay(t *testing.T) {
	assert.Equal(t, 100, LinearDecay(1, 1, 100), "sole correct answer gets full points")
	assert.Equal(t, 100, LinearDecay(1, 3, 100))
	assert.Equal(t, 55, LinearDecay(2, 3, 100))
	assert.Equal(t, 10, LinearDecay(3, 3, 100), "last lands on the floor")

	// Monotonically non-increasing in rank.
	for total := 1; total <= 10; total++ {
		prev := LinearDecay(1, total, 500)
		for rank := 2; rank <= total; rank++ {
			points := LinearDecay(rank, total, 500)
			assert.LessOrEqual(t, points, prev, "rank %d of %d", rank, total)
			assert.GreaterOrEqual(t, points, 50, "never below the floor")
			prev = points
		}
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	engine := NewEngine(Config{Decay: LinearDecay})
	question := q(100, 1, 3)
	subs := []Submission{
		sub(1, time.Second, 1, 3),
		sub(2, 2*time.Second, 1),
		sub(3, 3*time.Second, 3, 1),
	}

	first := engine.Score(question, subs)
	second := engine.Score(question, subs)
	assert.Equal(t, first, second)
}

func TestScoreEmptyLedger(t *testing.T) {
	engine := NewEngine(Config{})
	result := engine.Score(q(100, 1), nil)
	assert.Empty(t, result.Scores)
	assert.Equal(t, 0, result.QuestionIndex)
}
