package quizstream

import (
	"context"
	"fmt"
)

// ContentStore is the shared state between the generator and the dispenser:
// a set of every question text ever accepted and a FIFO queue of questions
// waiting to be served. Each method is atomic with respect to the others.
type ContentStore interface {
	// Contains reports whether text is already in the dedup set.
	Contains(ctx context.Context, text string) (bool, error)

	// Add inserts text into the dedup set if it is absent and reports whether
	// it was inserted. Membership test and insert happen as one step.
	Add(ctx context.Context, text string) (bool, error)

	// PushTail appends a question to the queue.
	PushTail(ctx context.Context, q Question) error

	// PopHead removes and returns the oldest queued question. ok is false
	// when the queue is empty.
	PopHead(ctx context.Context) (q Question, ok bool, err error)

	// Len returns the number of queued questions.
	Len(ctx context.Context) (int, error)

	Close() error
}

// StoreConfig selects and configures a ContentStore backend.
type StoreConfig struct {
	Backend     string `mapstructure:"backend"` // memory, sqlite, redis, postgres
	SQLitePath  string `mapstructure:"sqlite_path"`
	RedisURL    string `mapstructure:"redis_url"`
	PostgresURL string `mapstructure:"postgres_url"`
}

// OpenStore opens the backend named in cfg.
func OpenStore(ctx context.Context, cfg StoreConfig) (ContentStore, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewQuestionPool(), nil
	case "sqlite":
		return OpenSQLiteStore(cfg.SQLitePath)
	case "redis":
		return OpenRedisStore(ctx, cfg.RedisURL)
	case "postgres":
		return OpenPostgresStore(ctx, cfg.PostgresURL)
	default:
		return nil, fmt.Errorf("unknown store backend: %q", cfg.Backend)
	}
}
