package quizstream

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a ContentStore persisted in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database and its tables
func OpenSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises every statement and keeps ":memory:"
	// databases from splitting across connections.
	db.SetMaxOpenConns(1)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS seen_questions (
			text TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS pending_questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			text TEXT NOT NULL,
			options TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// Contains checks if the text is in the dedup table
func (s *SQLiteStore) Contains(ctx context.Context, text string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM seen_questions WHERE text = ?)", text).Scan(&exists)
	if err != nil {
		return false, &StoreError{Op: "contains", Err: err}
	}
	return exists, nil
}

// Add inserts the text unless it already exists
func (s *SQLiteStore) Add(ctx context.Context, text string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "INSERT OR IGNORE INTO seen_questions (text) VALUES (?)", text)
	if err != nil {
		return false, &StoreError{Op: "add", Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, &StoreError{Op: "add", Err: err}
	}
	return n == 1, nil
}

// PushTail appends a question to the pending table
func (s *SQLiteStore) PushTail(ctx context.Context, q Question) error {
	optionsJSON, err := OptionsToJSON(q.Options)
	if err != nil {
		return &StoreError{Op: "push", Err: err}
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO pending_questions (text, options, answer) VALUES (?, ?, ?)",
		q.Text, optionsJSON, q.Answer,
	)
	if err != nil {
		return &StoreError{Op: "push", Err: err}
	}
	return nil
}

// PopHead deletes and returns the oldest pending question
func (s *SQLiteStore) PopHead(ctx context.Context) (Question, bool, error) {
	var (
		q           Question
		optionsJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`DELETE FROM pending_questions
		 WHERE id = (SELECT MIN(id) FROM pending_questions)
		 RETURNING text, options, answer`,
	).Scan(&q.Text, &optionsJSON, &q.Answer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, false, nil
		}
		return Question{}, false, &StoreError{Op: "pop", Err: err}
	}

	q.Options, err = JSONToOptions(optionsJSON)
	if err != nil {
		return Question{}, false, &StoreError{Op: "pop", Err: err}
	}
	return q, true, nil
}

// Len counts pending questions
func (s *SQLiteStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM pending_questions").Scan(&n); err != nil {
		return 0, &StoreError{Op: "len", Err: err}
	}
	return n, nil
}

// Helper function to convert options slice to JSON string
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// Helper function to convert JSON string to options slice
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}
