// Package main provides entry point for the lead form application.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"leadform-embed/internal/config"
	"leadform-embed/internal/formconfig"
	"leadform-embed/internal/handler"
	"leadform-embed/internal/logger"
	"leadform-embed/internal/model"
	"leadform-embed/internal/prompt"
	"leadform-embed/internal/spam"
	"leadform-embed/internal/submit"
	"leadform-embed/internal/widget"
)

// Run is the testable entrypoint for the application.
func Run(ctx context.Context) error {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()
	log.Info("Starting lead form", zap.String("mode", cfg.Mode), zap.String("source", string(cfg.Source)))

	form, err := formconfig.LoadFile(cfg.FormConfigPath)
	if err != nil {
		log.Error("failed to load form config", zap.String("path", cfg.FormConfigPath), zap.Error(err))
		return err
	}
	if cfg.APIEndpoint != "" {
		form.APIEndpoint = cfg.APIEndpoint
	}
	if _, err := formconfig.Normalize(form, cfg.Source); err != nil {
		log.Error("invalid form config", zap.Error(err))
		return err
	}

	client := submit.New(log, submit.WithTimeout(cfg.HTTPTimeout), submit.WithMock(cfg.MockSubmit))
	opts := []widget.Option{
		widget.WithLogger(log),
		widget.WithSubmitter(client),
		widget.WithSpamGuard(spam.New(cfg.MinDwell)),
	}
	if cfg.ResolveClientIP {
		opts = append(opts, widget.WithIPResolver(submit.NewPublicIPResolver(log, &http.Client{Timeout: cfg.HTTPTimeout})))
	}
	factory := func(env model.Environment) (*widget.Widget, error) {
		return widget.New(form, cfg.Source, append(opts[:len(opts):len(opts)], widget.WithEnvironment(env))...)
	}

	if cfg.Mode == "prompt" {
		return runPrompt(ctx, log, factory)
	}
	return serve(ctx, cfg, log, factory)
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger, factory handler.Factory) error {
	h := handler.New(log, factory, cfg.SessionTTL)
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	log.Info("Listening", zap.String("addr", cfg.ListenAddr))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
		return err
	}

	log.Info("Shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}

func runPrompt(ctx context.Context, log *zap.Logger, factory handler.Factory) error {
	w, err := factory(model.Environment{UserAgent: "leadform-cli"})
	if err != nil {
		return err
	}
	defer w.Destroy()

	result, err := prompt.New(log, prompt.NewSurveyDriver(os.Stdout)).Run(ctx, w)
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			log.Info("Prompt aborted")
			return nil
		}
		return err
	}
	log.Debug("lead submitted", zap.Any("result", result))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
