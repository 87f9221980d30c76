package quizstream

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultGenerationTimeout bounds a single model call.
const DefaultGenerationTimeout = 30 * time.Second

// GeneratorOptions tunes a QuizGenerator. Zero values select defaults.
type GeneratorOptions struct {
	BatchSize  int
	Timeout    time.Duration
	Rand       *rand.Rand // may be shared by overlapping RunOnce calls
	Transcript *LLMLogger
}

// QuizGenerator asks the model for a batch of questions, validates them and
// queues the ones that were never seen before.
type QuizGenerator struct {
	model      TextGenerator
	maker      *QuestionMaker
	checker    *QuestionChecker
	dedup      *QuestionDedup
	timeout    time.Duration
	transcript *LLMLogger
	logger     *zap.Logger
}

// NewQuizGenerator creates a new quiz generator
func NewQuizGenerator(model TextGenerator, store ContentStore, opts GeneratorOptions, logger *zap.Logger) (*QuizGenerator, error) {
	logger = orNop(logger)

	checker, err := NewQuestionChecker(logger)
	if err != nil {
		return nil, fmt.Errorf("create question checker: %w", err)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}

	return &QuizGenerator{
		model:      model,
		maker:      NewQuestionMaker(opts.BatchSize, opts.Rand),
		checker:    checker,
		dedup:      NewQuestionDedup(store, logger),
		timeout:    timeout,
		transcript: opts.Transcript,
		logger:     logger,
	}, nil
}

// RunOnce performs one generation round. Nothing is stored when the model
// call fails or its response is not a JSON array. A store failure stops the
// round; questions queued before it stay queued.
func (qg *QuizGenerator) RunOnce(ctx context.Context) (TickResult, error) {
	req := qg.maker.NextRequest()
	result := TickResult{
		RunID:      uuid.New(),
		Topic:      req.Topic,
		Difficulty: req.Difficulty,
	}
	log := qg.logger.With(zap.String("run_id", result.RunID.String()))

	prompt := qg.maker.BuildPrompt(req)
	if qg.transcript != nil {
		qg.transcript.LogLLMRequest(result.RunID, qg.model.Name(), req, prompt)
	}

	log.Debug("generating questions",
		zap.String("topic", req.Topic),
		zap.String("difficulty", req.Difficulty),
		zap.String("provider", qg.model.Name()))

	// No lock is held here; the store is only touched after the call returns.
	callCtx, cancel := context.WithTimeout(ctx, qg.timeout)
	raw, err := qg.model.Generate(callCtx, prompt)
	cancel()

	if qg.transcript != nil {
		qg.transcript.LogLLMResponse(result.RunID, raw, err)
	}
	if err != nil {
		return result, &GenerationError{Provider: qg.model.Name(), Err: err}
	}

	validated, err := qg.checker.Validate(raw)
	if err != nil {
		return result, err
	}

	result.Invalid = len(validated.Rejected)
	if qg.transcript != nil {
		for _, verr := range validated.Rejected {
			qg.transcript.LogRejected(result.RunID, verr)
		}
	}

	for _, q := range validated.Questions {
		dr, err := qg.dedup.Enqueue(ctx, q)
		if err != nil {
			return result, err
		}
		if qg.transcript != nil {
			qg.transcript.LogDedupResult(result.RunID, q.Text, dr)
		}

		if dr.IsDuplicate {
			result.Skipped++
			log.Info("skipped duplicate", zap.String("question", q.Text))
			continue
		}
		result.Accepted++
		log.Info("stored unique question",
			zap.String("topic", req.Topic),
			zap.String("difficulty", req.Difficulty),
			zap.String("question", q.Text))
	}

	return result, nil
}
