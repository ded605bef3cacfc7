package session

import (
	"fmt"
	"sort"
	"time"
)

// Player is a session-scoped participant. IDs are assigned from a
// monotonic counter under the session's critical section, so join
// order and ID order always agree.
type Player struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	JoinedAt time.Time `json:"joined_at"`
}

// playerRegistry tracks joined players and their running scores. All
// access happens under the owning session's mutex.
type playerRegistry struct {
	nextID  int64
	byID    map[int64]*Player
	byName  map[string]*Player
	ordered []*Player
}

func newPlayerRegistry() *playerRegistry {
	return &playerRegistry{
		byID:   make(map[int64]*Player),
		byName: make(map[string]*Player),
	}
}

func (r *playerRegistry) join(name string, now time.Time) (*Player, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: display name must not be empty", ErrValidation)
	}
	if _, taken := r.byName[name]; taken {
		return nil, fmt.Errorf("%w: %q", ErrNameTaken, name)
	}

	r.nextID++
	p := &Player{ID: r.nextID, Name: name, JoinedAt: now}
	r.byID[p.ID] = p
	r.byName[name] = p
	r.ordered = append(r.ordered, p)
	return p, nil
}

func (r *playerRegistry) get(id int64) (*Player, bool) {
	p, ok := r.byID[id]
	return p, ok
}

func (r *playerRegistry) count() int {
	return len(r.ordered)
}

// addPoints increases a player's cumulative score. Scores never go
// down, so negative awards are dropped.
func (r *playerRegistry) addPoints(id int64, points int) {
	if points <= 0 {
		return
	}
	if p, ok := r.byID[id]; ok {
		p.Score += points
	}
}

// list returns players in join order.
func (r *playerRegistry) list() []Player {
	out := make([]Player, len(r.ordered))
	for i, p := range r.ordered {
		out[i] = *p
	}
	return out
}

// leaderboard returns players ranked by total score descending; ties
// break by ascending join order.
func (r *playerRegistry) leaderboard() []LeaderboardEntry {
	players := r.list()
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].ID < players[j].ID
	})

	entries := make([]LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = LeaderboardEntry{
			Position:   i + 1,
			PlayerID:   p.ID,
			Name:       p.Name,
			TotalScore: p.Score,
		}
	}
	return entries
}
