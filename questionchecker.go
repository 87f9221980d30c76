package quizstream

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.uber.org/zap"
)

// questionSchema is the shape every record in a model response must have.
var questionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"options": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type":      "string",
				"minLength": 1,
			},
		},
		"answer": map[string]any{
			"type": "string",
		},
	},
	"required": []string{"question", "options", "answer"},
}

var fenceRe = regexp.MustCompile("(?i)```(json)?")

// QuestionChecker turns raw model output into well-formed questions. Model
// output is untrusted: anything that does not parse is rejected, not repaired.
type QuestionChecker struct {
	schema *jsonschema.Schema
	logger *zap.Logger
}

// NewQuestionChecker compiles the record schema.
func NewQuestionChecker(logger *zap.Logger) (*QuestionChecker, error) {
	schema, err := compileSchema("question", questionSchema)
	if err != nil {
		return nil, err
	}
	return &QuestionChecker{schema: schema, logger: orNop(logger)}, nil
}

func compileSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	// The compiler wants a decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", name, err)
	}
	return compiled, nil
}

// StripFences removes markdown code fences and stray backticks around a payload.
func StripFences(raw string) string {
	s := fenceRe.ReplaceAllString(raw, "")
	return strings.Trim(s, "` \t\r\n")
}

// Validate parses raw and returns every well-formed question in input order.
// A payload that is not a JSON array fails with a MalformedPayload error;
// individual bad records are skipped and reported in Rejected.
func (qc *QuestionChecker) Validate(raw string) (*ValidationResult, error) {
	payload := []byte(StripFences(raw))

	if !bytes.HasPrefix(payload, []byte("[")) {
		return nil, &ValidationError{
			Kind:    MalformedPayload,
			Index:   -1,
			Message: "top-level value is not an array",
		}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, &ValidationError{
			Kind:    MalformedPayload,
			Index:   -1,
			Message: "response is not a parseable JSON array",
			Err:     err,
		}
	}

	result := &ValidationResult{Questions: make([]Question, 0, len(records))}
	for i, record := range records {
		q, verr := qc.checkRecord(i, record)
		if verr != nil {
			qc.logger.Debug("record rejected", zap.Int("index", i), zap.Error(verr))
			result.Rejected = append(result.Rejected, verr)
			continue
		}
		result.Questions = append(result.Questions, q)
	}

	return result, nil
}

func (qc *QuestionChecker) checkRecord(i int, record json.RawMessage) (Question, *ValidationError) {
	var doc any
	if err := json.Unmarshal(record, &doc); err != nil {
		return Question{}, &ValidationError{Kind: MissingField, Index: i, Message: "record is not valid JSON", Err: err}
	}
	if err := qc.schema.Validate(doc); err != nil {
		return Question{}, &ValidationError{Kind: MissingField, Index: i, Message: "record does not match question schema", Err: err}
	}

	var q Question
	if err := json.Unmarshal(record, &q); err != nil {
		return Question{}, &ValidationError{Kind: MissingField, Index: i, Message: "decode record", Err: err}
	}
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return Question{}, &ValidationError{Kind: MissingField, Index: i, Message: "question text is blank"}
	}

	if !slices.Contains(q.Options, q.Answer) {
		return Question{}, &ValidationError{
			Kind:    AnswerNotInOptions,
			Index:   i,
			Message: fmt.Sprintf("answer %q is not one of the options", q.Answer),
		}
	}

	// Degenerate option lists are served anyway; only note them.
	if len(q.Options) != 4 {
		qc.logger.Warn("question does not have 4 options",
			zap.String("question", q.Text), zap.Int("options", len(q.Options)))
	}
	if hasRepeats(q.Options) {
		qc.logger.Warn("question has repeated options", zap.String("question", q.Text))
	}

	return q, nil
}

func hasRepeats(options []string) bool {
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, ok := seen[o]; ok {
			return true
		}
		seen[o] = struct{}{}
	}
	return false
}
