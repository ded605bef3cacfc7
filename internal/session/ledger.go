package session

import (
	"time"

	"github.com/quizlive/engine/internal/session/scoring"
)

// answerLedger collects the accepted submissions for one question.
// At most one submission per player: a later submission replaces the
// earlier one until the window closes. All access happens under the
// owning session's mutex.
type answerLedger struct {
	open bool
	subs map[int64]scoring.Submission
}

func newAnswerLedger() *answerLedger {
	return &answerLedger{subs: make(map[int64]scoring.Submission)}
}

func (l *answerLedger) openWindow() {
	l.open = true
}

func (l *answerLedger) closeWindow() {
	l.open = false
}

// record stores or replaces a player's submission.
func (l *answerLedger) record(playerID int64, optionIDs []int64, at time.Time) {
	l.subs[playerID] = scoring.Submission{
		PlayerID:    playerID,
		OptionIDs:   optionIDs,
		SubmittedAt: at,
	}
}

func (l *answerLedger) count() int {
	return len(l.subs)
}

func (l *answerLedger) submissions() []scoring.Submission {
	out := make([]scoring.Submission, 0, len(l.subs))
	for _, sub := range l.subs {
		out = append(out, sub)
	}
	return out
}
