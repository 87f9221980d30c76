package quizstream

import (
	"context"
	"sync"
)

// SampleResponse is what the mock provider answers when run from the CLI.
const SampleResponse = "```json\n" + `[
  {"question": "What is the chemical symbol for gold?", "options": ["Ag", "Au", "Gd", "Go"], "answer": "Au"},
  {"question": "Who wrote 'Pride and Prejudice'?", "options": ["Jane Austen", "Charlotte Bronte", "Mary Shelley", "George Eliot"], "answer": "Jane Austen"},
  {"question": "What is 7 x 8?", "options": ["54", "56", "58", "64"], "answer": "56"},
  {"question": "Which river flows through Cairo?", "options": ["Niger", "Congo", "Nile", "Zambezi"], "answer": "Nile"},
  {"question": "In which year did the Berlin Wall fall?", "options": ["1987", "1989", "1991", "1993"], "answer": "1989"}
]` + "\n```"

// MockResponse is a canned reply for MockGenerator.
type MockResponse struct {
	Text string
	Err  error
}

// MockGenerator is a deterministic TextGenerator. It returns canned responses
// in FIFO order and keeps repeating the last one once the queue is drained.
type MockGenerator struct {
	mu        sync.Mutex
	responses []MockResponse
	last      MockResponse
	Prompts   []string
}

// NewMockGenerator creates a MockGenerator with the given canned responses.
func NewMockGenerator(responses ...MockResponse) *MockGenerator {
	return &MockGenerator{responses: responses, last: MockResponse{Err: ErrEmptyResponse}}
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(m.responses) > 0 {
		m.last = m.responses[0]
		m.responses = m.responses[1:]
	}
	return m.last.Text, m.last.Err
}

// AddResponse appends a canned response to the queue.
func (m *MockGenerator) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp)
}

// CallCount returns the number of Generate calls made.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

func (m *MockGenerator) Name() string { return "mock" }
