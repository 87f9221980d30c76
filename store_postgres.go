package quizstream

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore is a ContentStore shared by every process pointed at the same
// database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresStore connects to dsn and creates the tables if needed.
func OpenPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres url is required")
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("new pool: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS seen_questions (
			text TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS pending_questions (
			id BIGSERIAL PRIMARY KEY,
			text TEXT NOT NULL,
			options TEXT[] NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	}
	for _, query := range queries {
		if _, err := s.pool.Exec(ctx, query); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Contains checks if the text is in seen_questions
func (s *PostgresStore) Contains(ctx context.Context, text string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM seen_questions WHERE text = $1)`, text).Scan(&exists)
	if err != nil {
		return false, &StoreError{Op: "contains", Err: err}
	}
	return exists, nil
}

// Add inserts the text unless it already exists
func (s *PostgresStore) Add(ctx context.Context, text string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `INSERT INTO seen_questions (text) VALUES ($1) ON CONFLICT DO NOTHING`, text)
	if err != nil {
		return false, &StoreError{Op: "add", Err: err}
	}
	return tag.RowsAffected() == 1, nil
}

// PushTail appends a question to pending_questions
func (s *PostgresStore) PushTail(ctx context.Context, q Question) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO pending_questions (text, options, answer) VALUES ($1, $2, $3)`,
		q.Text, q.Options, q.Answer,
	)
	if err != nil {
		return &StoreError{Op: "push", Err: err}
	}
	return nil
}

// PopHead skips rows locked by concurrent consumers so pops never block each other.
func (s *PostgresStore) PopHead(ctx context.Context) (Question, bool, error) {
	query := `
		DELETE FROM pending_questions
		WHERE id = (
			SELECT id FROM pending_questions
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING text, options, answer
	`

	var q Question
	err := s.pool.QueryRow(ctx, query).Scan(&q.Text, &q.Options, &q.Answer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Question{}, false, nil
		}
		return Question{}, false, &StoreError{Op: "pop", Err: err}
	}
	return q, true, nil
}

// Len counts pending questions
func (s *PostgresStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pending_questions`).Scan(&n); err != nil {
		return 0, &StoreError{Op: "len", Err: err}
	}
	return n, nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
