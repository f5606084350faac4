package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/analysis"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/app"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/config"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/logging"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/memory"
)

func main() {
	var (
		filePath = flag.String("file", "", "Path to a file holding label text (defaults to stdin)")
		intent   = flag.String("intent", "", "Follow-up intent: mainConcern, dailyUse or watchOut")
		question = flag.String("question", "", "Custom follow-up question (overrides -intent)")
		noMemory = flag.Bool("no-memory", false, "Do not append the decision to the audit log")
		history  = flag.Int("history", 0, "Print the N most recent audit records and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if *noMemory {
		cfg.MemoryBackend = config.MemoryNone
	}
	logger := logging.Configure(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	ctx := context.Background()

	auditLog, err := app.OpenAuditLog(cfg, logger)
	if err != nil {
		logger.Fatalf("open audit log: %v", err)
	}
	defer auditLog.Close()

	if *history > 0 {
		if err := printHistory(ctx, auditLog, *history); err != nil {
			logger.Fatalf("list history: %v", err)
		}
		return
	}

	text, err := readInput(*filePath)
	if err != nil {
		logger.Fatalf("read input: %v", err)
	}

	service := analysis.NewService(
		app.NewCompleter(cfg, logger),
		auditLog,
		analysis.Options{Emphasize: cfg.EmphasizeKeywords},
		logger,
	)
	result, runErr := service.Analyze(ctx, analysis.Request{
		Ingredients: text,
		Intent:      analysis.Intent(strings.TrimSpace(*intent)),
		Question:    *question,
	})
	service.Wait()

	if err := writeJSON(os.Stdout, result); err != nil {
		logger.Fatalf("write result: %v", err)
	}
	if runErr != nil {
		auditLog.Close()
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func printHistory(ctx context.Context, log memory.Log, limit int) error {
	lister, ok := log.(memory.History)
	if !ok {
		return errors.New("audit backend does not keep history")
	}
	records, err := lister.Records(ctx, limit)
	if err != nil {
		return err
	}
	return writeJSON(os.Stdout, records)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
