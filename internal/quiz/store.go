package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store loads quiz definitions for the session engine. Implementations
// must return fully populated quizzes with questions in presentation
// order.
type Store interface {
	GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error)
}

// PGStore reads quiz definitions from Postgres. The CRUD side of the
// quiz tables is owned by the admin backend; this store is read-only.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed quiz store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// GetQuiz loads a quiz with its questions and options.
func (s *PGStore) GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	q := &Quiz{ID: id}
	err := s.pool.QueryRow(ctx,
		`SELECT owner_id, title FROM quizzes WHERE quiz_id = $1`, id,
	).Scan(&q.OwnerID, &q.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT question_id, prompt, duration_seconds, points
		 FROM questions WHERE quiz_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var question Question
		if err := rows.Scan(&question.ID, &question.Prompt, &question.DurationSeconds, &question.Points); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	for i := range q.Questions {
		opts, err := s.loadOptions(ctx, q.Questions[i].ID)
		if err != nil {
			return nil, err
		}
		q.Questions[i].Options = opts
	}

	return q, nil
}

func (s *PGStore) loadOptions(ctx context.Context, questionID int64) ([]Option, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT option_id, text, is_correct
		 FROM options WHERE question_id = $1 ORDER BY position`, questionID)
	if err != nil {
		return nil, fmt.Errorf("load options: %w", err)
	}
	defer rows.Close()

	var opts []Option
	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.Text, &o.Correct); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}
