package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricSessionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_sessions_created_total",
		Help: "Number of quiz sessions created.",
	})
	metricTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizlive_session_transitions_total",
		Help: "State machine transitions applied, by resulting state.",
	}, []string{"state"})
	metricSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_submissions_accepted_total",
		Help: "Player submissions accepted into answer ledgers.",
	})
	metricPlayersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_players_joined_total",
		Help: "Players admitted to session lobbies.",
	})
	metricStaleTimers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizlive_stale_timer_fires_total",
		Help: "Timer callbacks absorbed because their epoch was superseded.",
	})
)
