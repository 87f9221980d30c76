package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"quizstream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the generation loop and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx, cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		gen, err := a.generator(ctx)
		if err != nil {
			return err
		}

		if a.cfg.Server.SessionSecret == quizstream.DefaultSessionSecret {
			a.logger.Warn("using the default session secret; set SESSION_SECRET")
		}

		scheduler := quizstream.NewScheduler(gen, a.cfg.Generator.Interval, a.cfg.Generator.SingleFlight, a.logger)
		schedulerDone := make(chan struct{})
		go func() {
			defer close(schedulerDone)
			scheduler.Run(ctx)
		}()

		server := NewServer(a.store, a.cfg.Dispense.BatchSize, a.cfg.Server.SessionSecret, a.cfg.Server.SecureCookies, a.logger)
		httpServer := &http.Server{
			Addr:              ":" + a.cfg.Server.Port,
			Handler:           server.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			a.logger.Info("server running", zap.String("addr", httpServer.Addr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		select {
		case <-ctx.Done():
			a.logger.Info("shutdown signal received")
		case err := <-serveErr:
			stop()
			<-schedulerDone
			return fmt.Errorf("http server: %w", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn("http shutdown", zap.Error(err))
		}
		<-schedulerDone
		return nil
	},
}
