package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/analysis"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/api"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/app"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/config"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger := logging.Configure(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	auditLog, err := app.OpenAuditLog(cfg, logger)
	if err != nil {
		logger.Fatalf("open audit log: %v", err)
	}
	defer func() {
		if cerr := auditLog.Close(); cerr != nil {
			logger.WithError(cerr).Warn("close audit log")
		}
	}()

	recognizer, closeRecognizer, err := app.NewRecognizer(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("create recognizer: %v", err)
	}
	defer func() {
		if cerr := closeRecognizer(); cerr != nil {
			logger.WithError(cerr).Warn("close recognizer")
		}
	}()

	service := analysis.NewService(
		app.NewCompleter(cfg, logger),
		auditLog,
		analysis.Options{Emphasize: cfg.EmphasizeKeywords},
		logger,
	)

	server, err := api.NewServer(api.Config{
		Analyzer:       service,
		Recognizer:     recognizer,
		AllowedOrigins: cfg.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logger.Fatalf("configure router: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting food label copilot backend on :%s", cfg.Port)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server exited")
		}
	case <-ctx.Done():
		logger.Info("shutdown requested")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("graceful shutdown")
		}
		cancel()
	}

	service.Wait()
	logger.Info("audit writes flushed")
}
