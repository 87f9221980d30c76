package quizstream

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned by providers when the model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// GenerationError indicates the call to the text generation model failed.
// It is retryable: the next tick simply tries again.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ValidationKind classifies why a model response or record was rejected.
type ValidationKind string

const (
	MalformedPayload   ValidationKind = "malformed_payload"
	MissingField       ValidationKind = "missing_field"
	AnswerNotInOptions ValidationKind = "answer_not_in_options"
)

// ValidationError describes a rejected payload (Index == -1) or a rejected record.
type ValidationError struct {
	Kind    ValidationKind
	Index   int
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (record %d): %s", e.Kind, e.Index, e.Message)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StoreError wraps a failure of the backing content store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsMalformed reports whether err is a payload-level validation failure.
func IsMalformed(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr) && verr.Kind == MalformedPayload
}
