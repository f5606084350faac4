// Package app builds the runtime collaborators shared by the server and CLI
// from a loaded configuration.
package app

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/ai"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/config"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/memory"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/ocr"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/store"
)

// AuditLog is a memory.Log that can also be closed.
type AuditLog interface {
	memory.Log
	Close() error
}

type fileAuditLog struct{ *memory.FileLog }

func (fileAuditLog) Close() error { return nil }

type nopAuditLog struct{ memory.Nop }

func (nopAuditLog) Close() error { return nil }

// NewCompleter returns the chat-completion client. A missing credential is
// logged loudly but does not prevent startup.
func NewCompleter(cfg *config.Config, logger logrus.FieldLogger) *ai.Client {
	client := ai.NewClient(ai.Config{
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
		Timeout:     cfg.LLMTimeout,
	})
	if !client.Configured() {
		logger.Error("LLM_API_KEY is not set; every analysis that reaches the model will fail")
	} else {
		logger.WithFields(logrus.Fields{
			"model":    client.Model(),
			"base_url": cfg.LLMBaseURL,
		}).Info("completion client configured")
	}
	return client
}

// OpenAuditLog opens the configured audit backend. Records implements
// memory.History for the file and sqlite backends.
func OpenAuditLog(cfg *config.Config, logger logrus.FieldLogger) (AuditLog, error) {
	switch cfg.MemoryBackend {
	case config.MemoryNone:
		logger.Info("audit log disabled")
		return nopAuditLog{}, nil
	case config.MemorySQLite:
		db, err := store.Open(cfg.MemoryDBPath, cfg.LogLevel != "debug")
		if err != nil {
			return nil, fmt.Errorf("open audit database: %w", err)
		}
		logger.WithField("path", cfg.MemoryDBPath).Info("audit log backed by sqlite")
		return db, nil
	case config.MemoryFile, "":
		logger.WithField("path", cfg.MemoryPath).Info("audit log backed by json file")
		return fileAuditLog{memory.NewFileLog(cfg.MemoryPath)}, nil
	default:
		return nil, fmt.Errorf("unknown memory backend %q", cfg.MemoryBackend)
	}
}

// NewRecognizer builds the configured OCR backend and a matching close func.
func NewRecognizer(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (ocr.Recognizer, func() error, error) {
	noop := func() error { return nil }
	switch cfg.OCRBackend {
	case config.OCRNone, "":
		logger.Info("label photo recognition disabled")
		return ocr.Disabled{}, noop, nil
	case config.OCRMistral:
		if cfg.MistralAPIKey == "" {
			logger.Error("OCR_BACKEND=mistral but MISTRAL_API_KEY is not set")
		}
		return ocr.NewMistralClient(ocr.MistralConfig{
			APIKey:  cfg.MistralAPIKey,
			BaseURL: cfg.MistralBaseURL,
			Model:   cfg.MistralOCRModel,
		}), noop, nil
	case config.OCRGoogle:
		vision, err := ocr.NewGoogleVision(ctx)
		if err != nil {
			return nil, nil, err
		}
		return vision, vision.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown ocr backend %q", cfg.OCRBackend)
	}
}
