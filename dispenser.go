package quizstream

import (
	"context"

	"go.uber.org/zap"
)

// DefaultDispenseCount is how many questions one request receives.
const DefaultDispenseCount = 5

// Dispenser drains batches of questions from the queue.
type Dispenser struct {
	store  ContentStore
	logger *zap.Logger
}

// NewDispenser creates a dispenser over store
func NewDispenser(store ContentStore, logger *zap.Logger) *Dispenser {
	return &Dispenser{store: store, logger: orNop(logger)}
}

// Dispense pops up to count questions in FIFO order without waiting for more to
// arrive. The returned slice is never nil. If the store fails part way, the
// questions already popped are returned along with the error.
func (d *Dispenser) Dispense(ctx context.Context, count int) ([]Question, error) {
	questions := make([]Question, 0, min(max(count, 0), DefaultDispenseCount))

	for len(questions) < count {
		q, ok, err := d.store.PopHead(ctx)
		if err != nil {
			d.logger.Error("pop failed", zap.Int("popped", len(questions)), zap.Error(err))
			return questions, err
		}
		if !ok {
			break
		}
		questions = append(questions, q)
	}

	d.logger.Debug("dispensed questions", zap.Int("count", len(questions)), zap.Int("requested", count))
	return questions, nil
}
