package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizstream"
)

// app holds the pieces every command shares.
type app struct {
	cfg        *quizstream.Config
	logger     *zap.Logger
	store      quizstream.ContentStore
	transcript *quizstream.LLMLogger
}

// loadApp reads the configuration, builds the logger and opens the store.
func loadApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := quizstream.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := quizstream.NewLogger(cfg.Env, cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := quizstream.OpenStore(ctx, cfg.Store)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Backend, err)
	}
	logger.Info("store opened", zap.String("backend", cfg.Store.Backend))

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

// generator builds the model provider and the quiz generator.
func (a *app) generator(ctx context.Context) (*quizstream.QuizGenerator, error) {
	if err := a.cfg.ValidateProvider(); err != nil {
		return nil, err
	}

	model, err := quizstream.NewTextGenerator(ctx, a.cfg.Generator.ProviderConfig)
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", a.cfg.Generator.Provider, err)
	}

	if dir := a.cfg.Generator.TranscriptDir; dir != "" {
		a.transcript, err = quizstream.NewLLMLogger(dir)
		if err != nil {
			// Continue without a transcript rather than failing
			a.logger.Warn("failed to create LLM transcript", zap.Error(err))
		} else {
			a.logger.Info("writing LLM transcript", zap.String("path", a.transcript.Path()))
		}
	}

	return quizstream.NewQuizGenerator(model, a.store, quizstream.GeneratorOptions{
		BatchSize:  a.cfg.Generator.BatchSize,
		Timeout:    a.cfg.Generator.Timeout,
		Transcript: a.transcript,
	}, a.logger)
}

func (a *app) Close() {
	if a.transcript != nil {
		a.transcript.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close store", zap.Error(err))
	}
	a.logger.Sync()
}
