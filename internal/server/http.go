package server

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/auth"
	"github.com/quizlive/engine/internal/config"
	"github.com/quizlive/engine/internal/logging"
	"github.com/quizlive/engine/internal/session"
)

// NewHTTPServer wires all API routes: health, metrics, auth, sessions
// and the session event WebSocket.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, rdb *redis.Client, authSvc *auth.Service, authHandlers *auth.HTTPHandlers, sessionHandlers *session.HTTPHandlers, wsHandler *session.WSHandler) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, rdb); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// Auth endpoints
	mux.HandleFunc("POST /v1/auth/login", authHandlers.Login)

	// Session lifecycle. Creation and admin actions are host-only;
	// joining, answering and reading results are open to players.
	mux.HandleFunc("POST /v1/sessions", authSvc.RequireHost(sessionHandlers.StartSession))
	mux.HandleFunc("GET /v1/sessions/{id}", sessionHandlers.GetStatus)
	mux.HandleFunc("POST /v1/sessions/{id}/actions", authSvc.RequireHost(sessionHandlers.SubmitAction))
	mux.HandleFunc("POST /v1/sessions/{id}/join", sessionHandlers.JoinSession)
	mux.HandleFunc("POST /v1/sessions/{id}/answers", sessionHandlers.SubmitAnswer)
	mux.HandleFunc("GET /v1/sessions/{id}/questions/{index}/results", sessionHandlers.GetQuestionResults)
	mux.HandleFunc("GET /v1/sessions/{id}/results", sessionHandlers.GetFinalResults)
	mux.HandleFunc("GET /v1/quizzes/{quizID}/sessions", sessionHandlers.ListActiveSessions)

	// WebSocket endpoint
	mux.HandleFunc("GET /ws/sessions", wsHandler.HandleWebSocket)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: withLogger(mux, logger),
	}
}

// withLogger makes the process logger reachable from request contexts.
func withLogger(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.IntoContext(r.Context(), logger)))
	})
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, rdb *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	return rdb.Ping(ctx).Err()
}
