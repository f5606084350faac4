package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/ai"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/memory"
	"github.com/5umitpandey/IIT-Guwahati-Encode/internal/util"
)

const (
	// MinInputLength is the shortest trimmed raw input that is processed at all.
	MinInputLength = 5
	auditTimeout   = 5 * time.Second
)

// Options toggles optional result post-processing.
type Options struct {
	// Emphasize wraps ingredient keywords found in insight text in <strong> tags.
	Emphasize bool
}

// Service runs the prompt, completion and parse pipeline for one request.
type Service struct {
	completer ai.Completer
	log       memory.Log
	opts      Options
	logger    logrus.FieldLogger
	now       func() time.Time

	audits sync.WaitGroup
}

// NewService wires a completer and an audit log. A nil log disables auditing
// and a nil logger falls back to the standard logrus logger.
func NewService(completer ai.Completer, log memory.Log, opts Options, logger logrus.FieldLogger) *Service {
	if log == nil {
		log = memory.Nop{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		completer: completer,
		log:       log,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// Analyze always returns a displayable Result. The error is non-nil only when
// the pipeline failed, in which case the Result is FailureResult.
func (s *Service) Analyze(ctx context.Context, req Request) (Result, error) {
	if utf8.RuneCountInString(strings.TrimSpace(req.Ingredients)) < MinInputLength {
		return TooShortResult(), nil
	}

	prompt, err := BuildPrompt(req)
	if errors.Is(err, ErrInsufficientText) {
		return UnclearResult(), nil
	}
	if err != nil {
		return s.fail(fmt.Errorf("build prompt: %w", err))
	}

	timer := util.StartTimer()
	s.logger.WithField("prompt_chars", len(prompt.Text)).Debug("completion requested")
	raw, err := s.completer.Complete(ctx, prompt.Text)
	if err != nil {
		return s.fail(fmt.Errorf("completion: %w", err))
	}

	parsed := ParseCompletion(raw)
	s.logger.WithFields(logrus.Fields{
		"latency_ms": timer.ElapsedMs(),
		"insights":   len(parsed.Insights),
		"outcome":    parsed.Outcome.String(),
		"intent":     string(req.Intent),
	}).Info("analysis completed")

	result := Result{
		DecisionSummary: parsed.Summary,
		KeyInsights:     parsed.Insights,
		UncertaintyNote: noteDisclaimer,
		ConfidenceLevel: parsed.Confidence(),
	}
	if s.opts.Emphasize {
		for i := range result.KeyInsights {
			result.KeyInsights[i].Text = Emphasize(result.KeyInsights[i].Text, prompt.Keywords)
		}
	}

	s.recallSimilar(ctx, req.Ingredients)
	s.audit(ctx, memory.NewRecord(req.Ingredients, result.DecisionSummary, s.now()))
	return result, nil
}

// Wait blocks until every pending audit append has finished.
func (s *Service) Wait() {
	s.audits.Wait()
}

func (s *Service) fail(err error) (Result, error) {
	entry := s.logger.WithError(err)
	var upstream *ai.UpstreamError
	if errors.As(err, &upstream) {
		entry = entry.WithFields(logrus.Fields{
			"upstream_status": upstream.StatusCode,
			"upstream_body":   upstream.Body,
		})
	}
	if errors.Is(err, ai.ErrMissingAPIKey) {
		entry.Error("analysis failed: completion credential is not configured")
	} else {
		entry.Error("analysis failed")
	}
	return FailureResult(), err
}

// audit appends rec in the background. The write outlives the request
// context and never affects the response.
func (s *Service) audit(ctx context.Context, rec memory.Record) {
	s.audits.Add(1)
	go func() {
		defer s.audits.Done()
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
		defer cancel()
		if err := s.log.Append(writeCtx, rec); err != nil {
			s.logger.WithError(err).Warn("append audit record")
		}
	}()
}

// recallSimilar reports earlier decisions for inputs sharing a prefix with
// this one. The lookup is diagnostic only.
func (s *Service) recallSimilar(ctx context.Context, input string) {
	if l, ok := s.logger.(*logrus.Logger); ok && !l.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	if e, ok := s.logger.(*logrus.Entry); ok && !e.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	decisions, err := s.log.FindByPrefix(ctx, input)
	if err != nil {
		s.logger.WithError(err).Debug("similar decision lookup")
		return
	}
	if len(decisions) > 0 {
		s.logger.WithFields(logrus.Fields{
			"matches":   len(decisions),
			"decisions": decisions,
		}).Debug("similar past decisions found")
	}
}
