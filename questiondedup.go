package quizstream

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// QuestionDedup admits questions whose text has never been accepted before
// and queues them for serving.
type QuestionDedup struct {
	store  ContentStore
	logger *zap.Logger
}

// NewQuestionDedup creates a deduplicator over store
func NewQuestionDedup(store ContentStore, logger *zap.Logger) *QuestionDedup {
	return &QuestionDedup{store: store, logger: orNop(logger)}
}

// DedupResult represents the result of deduplication
type DedupResult struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Reason      string `json:"reason"`
}

// Enqueue records the question text and appends the question to the queue,
// unless the text was seen before. The text is recorded before the push so a
// queued question is always present in the dedup set.
func (qd *QuestionDedup) Enqueue(ctx context.Context, q Question) (*DedupResult, error) {
	added, err := qd.store.Add(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("record question text: %w", err)
	}
	if !added {
		qd.logger.Debug("skipped duplicate", zap.String("question", q.Text))
		return &DedupResult{IsDuplicate: true, Reason: "text already accepted"}, nil
	}

	if err := qd.store.PushTail(ctx, q); err != nil {
		return nil, fmt.Errorf("queue question: %w", err)
	}
	qd.logger.Debug("stored unique question", zap.String("question", q.Text))
	return &DedupResult{IsDuplicate: false, Reason: "new text"}, nil
}
