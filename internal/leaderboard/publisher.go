package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quizlive/engine/internal/session"
)

// PublisherOptions configures final-results publication.
type PublisherOptions struct {
	KeyPrefix string        // default "quizlive:lb"
	EntryTTL  time.Duration // default 24h
	Timeout   time.Duration // default 2s per publish
}

// Publisher pushes final session leaderboards into Redis so the
// results-rendering side can read them without touching the engine.
// Publication is best effort: failures are logged, never surfaced,
// and never affect session state.
type Publisher struct {
	redis   *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
	logger  zerolog.Logger
}

// NewPublisher constructs a leaderboard publisher.
func NewPublisher(client *redis.Client, logger zerolog.Logger, opts PublisherOptions) *Publisher {
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = "quizlive:lb"
	}
	ttl := opts.EntryTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &Publisher{
		redis:   client,
		prefix:  prefix,
		ttl:     ttl,
		timeout: timeout,
		logger:  logger.With().Str("component", "leaderboard").Logger(),
	}
}

// HandleEvent is a session event sink: final results get published,
// everything else is ignored.
func (p *Publisher) HandleEvent(ev session.Event) {
	if ev.Type != session.EventFinalResults {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	if err := p.Publish(ctx, ev.SessionID, ev.Leaderboard); err != nil {
		p.logger.Warn().Err(err).Str("session_id", ev.SessionID.String()).Msg("leaderboard publish failed")
	}
}

// Publish writes the leaderboard under a sorted set plus a JSON blob.
func (p *Publisher) Publish(ctx context.Context, sessionID uuid.UUID, entries []session.LeaderboardEntry) error {
	zkey := fmt.Sprintf("%s:%s:scores", p.prefix, sessionID)
	jkey := fmt.Sprintf("%s:%s:entries", p.prefix, sessionID)

	members := make([]redis.Z, len(entries))
	for i, e := range entries {
		members[i] = redis.Z{Score: float64(e.TotalScore), Member: e.Name}
	}

	pipe := p.redis.TxPipeline()
	pipe.Del(ctx, zkey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, zkey, members...)
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	pipe.Set(ctx, jkey, data, p.ttl)
	pipe.Expire(ctx, zkey, p.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("write leaderboard: %w", err)
	}
	return nil
}

// Fetch reads back a published leaderboard (used by the results
// rendering collaborator and tests).
func (p *Publisher) Fetch(ctx context.Context, sessionID uuid.UUID) ([]session.LeaderboardEntry, error) {
	jkey := fmt.Sprintf("%s:%s:entries", p.prefix, sessionID)
	data, err := p.redis.Get(ctx, jkey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read leaderboard: %w", err)
	}

	var entries []session.LeaderboardEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard: %w", err)
	}
	return entries, nil
}
