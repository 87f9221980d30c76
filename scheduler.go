package quizstream

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultInterval is the generation cadence.
const DefaultInterval = 2 * time.Second

// Runner performs one generation round.
type Runner interface {
	RunOnce(ctx context.Context) (TickResult, error)
}

// Scheduler fires a Runner on a fixed interval until its context is cancelled.
// Rounds may overlap unless SingleFlight is set.
type Scheduler struct {
	runner       Runner
	interval     time.Duration
	singleFlight bool
	logger       *zap.Logger
}

// NewScheduler creates a scheduler. Intervals are rounded to whole seconds,
// with a minimum of one second.
func NewScheduler(runner Runner, interval time.Duration, singleFlight bool, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:       runner,
		interval:     interval,
		singleFlight: singleFlight,
		logger:       orNop(logger),
	}
}

// Run blocks until ctx is done, then waits for in-flight rounds to finish.
func (s *Scheduler) Run(ctx context.Context) {
	cl := cronLogger{s.logger.Sugar()}

	wrappers := []cron.JobWrapper{cron.Recover(cl)}
	if s.singleFlight {
		wrappers = append(wrappers, cron.SkipIfStillRunning(cl))
	}

	c := cron.New(cron.WithLogger(cl), cron.WithChain(wrappers...))
	c.Schedule(cron.Every(s.interval), cron.FuncJob(func() {
		s.Tick(ctx)
	}))

	c.Start()
	s.logger.Info("scheduler started", zap.Duration("interval", s.interval), zap.Bool("single_flight", s.singleFlight))

	<-ctx.Done()

	<-c.Stop().Done()
	s.logger.Info("scheduler stopped")
}

// Tick runs exactly one round and logs its outcome. Errors never escape:
// the next tick simply tries again.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	start := time.Now()
	result, err := s.runner.RunOnce(ctx)

	fields := []zap.Field{
		zap.String("run_id", result.RunID.String()),
		zap.String("topic", result.Topic),
		zap.String("difficulty", result.Difficulty),
		zap.Duration("elapsed", time.Since(start)),
	}

	if err != nil {
		var (
			genErr   *GenerationError
			storeErr *StoreError
		)
		switch {
		case errors.As(err, &genErr):
			s.logger.Warn("generation failed, skipping tick", append(fields, zap.Error(err))...)
		case IsMalformed(err):
			s.logger.Warn("discarded malformed batch", append(fields, zap.Error(err))...)
		case errors.As(err, &storeErr):
			s.logger.Error("store failure during tick", append(fields, zap.Int("accepted", result.Accepted), zap.Error(err))...)
		default:
			s.logger.Error("tick failed", append(fields, zap.Error(err))...)
		}
		return result
	}

	s.logger.Info("tick complete", append(fields,
		zap.Int("accepted", result.Accepted),
		zap.Int("skipped", result.Skipped),
		zap.Int("invalid", result.Invalid))...)
	return result
}

// cronLogger adapts zap to the logger interface cron expects.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
