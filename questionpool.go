package quizstream

import (
	"context"
	"sync"
)

// QuestionPool is the in-memory ContentStore. Its dedup set lives for the
// lifetime of the process and is never evicted.
type QuestionPool struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	queue []Question // FIFO; head at index 0
}

// NewQuestionPool creates an empty question pool
func NewQuestionPool() *QuestionPool {
	return &QuestionPool{
		seen:  make(map[string]struct{}),
		queue: make([]Question, 0),
	}
}

// Contains reports whether the text was accepted before
func (qp *QuestionPool) Contains(_ context.Context, text string) (bool, error) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	_, ok := qp.seen[text]
	return ok, nil
}

// Add records the text unless it is already known
func (qp *QuestionPool) Add(_ context.Context, text string) (bool, error) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if _, ok := qp.seen[text]; ok {
		return false, nil
	}
	qp.seen[text] = struct{}{}
	return true, nil
}

// PushTail adds a question to the end of the queue
func (qp *QuestionPool) PushTail(_ context.Context, q Question) error {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	qp.queue = append(qp.queue, q)
	return nil
}

// PopHead retrieves the next question from the pool
func (qp *QuestionPool) PopHead(_ context.Context) (Question, bool, error) {
	qp.mu.Lock()
	defer qp.mu.Unlock()

	if len(qp.queue) == 0 {
		return Question{}, false, nil
	}

	q := qp.queue[0]
	qp.queue[0] = Question{}
	qp.queue = qp.queue[1:]
	return q, true, nil
}

// Len returns the number of questions waiting in the pool
func (qp *QuestionPool) Len(_ context.Context) (int, error) {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	return len(qp.queue), nil
}

// SeenCount returns the size of the dedup set.
func (qp *QuestionPool) SeenCount() int {
	qp.mu.Lock()
	defer qp.mu.Unlock()
	return len(qp.seen)
}

func (qp *QuestionPool) Close() error { return nil }
