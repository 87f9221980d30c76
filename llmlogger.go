package quizstream

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LLMLogger writes a plain-text transcript of every model interaction:
// prompts, raw responses and what happened to each question.
type LLMLogger struct {
	file *os.File
	path string
	mu   sync.Mutex
}

// NewLLMLogger creates a transcript file in dir named after the start time
func NewLLMLogger(dir string) (*LLMLogger, error) {
	// Ensure log directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("llm-%s.log", time.Now().Format("20060102-150405")))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := &LLMLogger{file: file, path: filename}

	logger.Logf("=== Question Generation Log ===\n")
	logger.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	logger.Logf("===============================\n\n")

	return logger, nil
}

// Path returns the transcript file name.
func (ll *LLMLogger) Path() string {
	return ll.path
}

// Logf writes a formatted log entry with timestamp
func (ll *LLMLogger) Logf(format string, args ...interface{}) {
	ll.mu.Lock()
	defer ll.mu.Unlock()
	ll.logf(format, args...)
}

func (ll *LLMLogger) logf(format string, args ...interface{}) {
	if ll.file == nil {
		return
	}
	timestamp := time.Now().Format("15:04:05.000")
	fmt.Fprintf(ll.file, "[%s] %s", timestamp, fmt.Sprintf(format, args...))
	ll.file.Sync()
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(runID uuid.UUID, provider string, req GenerationRequest, prompt string) {
	ll.Logf("=== LLM REQUEST %s (%s) ===\n", runID, provider)
	ll.Logf("Topic: %s, Difficulty: %s\n", req.Topic, req.Difficulty)
	ll.Logf("Prompt:\n%s\n", prompt)
	ll.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response, or the error that replaced it
func (ll *LLMLogger) LogLLMResponse(runID uuid.UUID, response string, err error) {
	ll.Logf("=== LLM RESPONSE %s ===\n", runID)
	if err != nil {
		ll.Logf("Error: %v\n", err)
	} else {
		ll.Logf("Response:\n%s\n", response)
	}
	ll.Logf("======================\n\n")
}

// LogRejected logs a record the checker dropped
func (ll *LLMLogger) LogRejected(runID uuid.UUID, verr *ValidationError) {
	ll.Logf("Run %s: REJECTED - %v\n", runID, verr)
}

// LogDedupResult logs the result of deduplication
func (ll *LLMLogger) LogDedupResult(runID uuid.UUID, text string, result *DedupResult) {
	if result.IsDuplicate {
		ll.Logf("Run %s: DUPLICATE %q - %s\n", runID, text, result.Reason)
	} else {
		ll.Logf("Run %s: UNIQUE %q - %s\n", runID, text, result.Reason)
	}
}

// Close closes the log file
func (ll *LLMLogger) Close() error {
	ll.mu.Lock()
	defer ll.mu.Unlock()

	if ll.file != nil {
		ll.logf("=== Question Generation Stopped ===\n")
		ll.logf("Stopped: %s\n", time.Now().Format(time.RFC3339))
		err := ll.file.Close()
		ll.file = nil
		return err
	}
	return nil
}
