package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidbz/troubleshooter/internal/observability"
)

const stageEvent = "troubleshoot.stage"

// ServiceConfig tunes the troubleshooting pipeline.
type ServiceConfig struct {
	Validation ValidationMode
	LLMTimeout time.Duration
}

// TroubleshootService orchestrates validate → prompt → LLM → parse → render.
type TroubleshootService struct {
	llm       LLMClient
	renderers RendererRegistry
	events    EventPublisher
	config    ServiceConfig
}

// NewTroubleshootService creates a new troubleshooting service (DI constructor).
func NewTroubleshootService(
	llm LLMClient,
	renderers RendererRegistry,
	events EventPublisher,
	config ServiceConfig,
) *TroubleshootService {
	if config.Validation == "" {
		config.Validation = ValidationStrict
	}

	return &TroubleshootService{
		llm:       llm,
		renderers: renderers,
		events:    events,
		config:    config,
	}
}

// Troubleshoot runs the full pipeline and renders the result in the requested format.
func (s *TroubleshootService) Troubleshoot(
	ctx context.Context,
	report *ErrorReport,
	format Format,
) (*RenderedResponse, error) {
	ctx = observability.WithFormat(ctx, string(format))

	renderer, err := s.renderers.Get(format)
	if err != nil {
		if !errors.Is(err, ErrUnsupportedFormat) {
			err = fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
		}
		s.fail(ctx, format, StageReceived, err)
		return nil, err
	}

	parsed, err := s.diagnose(ctx, report)
	if err != nil {
		observability.ObserveRequest(string(format), outcomeOf(err))
		return nil, err
	}

	rendered, err := renderer.Render(parsed)
	if err != nil {
		s.fail(ctx, format, StageParsed, err)
		return nil, fmt.Errorf("render %s response: %w", format, err)
	}

	s.publish(ctx, StageRendered, map[string]interface{}{
		"content_type": rendered.ContentType,
		"bytes":        len(rendered.Body),
	})
	observability.ObserveRequest(string(format), outcomeOf(nil))

	return rendered, nil
}

// Diagnose validates the report, queries the LLM and parses its completion.
func (s *TroubleshootService) Diagnose(ctx context.Context, report *ErrorReport) (*ParsedTroubleshooting, error) {
	return s.diagnose(ctx, report)
}

// Validate checks the report against the configured required-field policy.
func (s *TroubleshootService) Validate(report *ErrorReport) error {
	if report == nil {
		report = &ErrorReport{}
	}

	hasPlatform := strings.TrimSpace(report.Platform) != ""
	hasServices := len(cleanServices(report.Services)) > 0
	hasDescription := strings.TrimSpace(report.Description) != ""

	var missing []string
	switch s.config.Validation {
	case ValidationLoose:
		if hasDescription || (hasPlatform && hasServices) {
			return nil
		}
		missing = appendMissing(missing, hasPlatform, "platform")
		missing = appendMissing(missing, hasServices, "services")
		missing = appendMissing(missing, false, "description")
	default:
		missing = appendMissing(missing, hasPlatform, "platform")
		missing = appendMissing(missing, hasServices, "services")
		missing = appendMissing(missing, hasDescription, "description")
	}

	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}

	return nil
}

func (s *TroubleshootService) diagnose(ctx context.Context, report *ErrorReport) (*ParsedTroubleshooting, error) {
	logger := observability.FromContext(ctx)
	s.publish(ctx, StageReceived, nil)

	// Reject before any network call.
	if err := s.Validate(report); err != nil {
		logger.Info("error report rejected", observability.Error(err))
		s.publish(ctx, StageFailed, map[string]interface{}{"from": string(StageReceived), "error": err.Error()})
		return nil, err
	}
	s.publish(ctx, StageValidated, nil)

	prompt := BuildPrompt(report)
	s.publish(ctx, StagePromptBuilt, map[string]interface{}{"prompt_length": len(prompt)})

	text, err := s.complete(ctx, prompt)
	if err != nil {
		logger.Error("llm completion failed", observability.Error(err))
		s.publish(ctx, StageFailed, map[string]interface{}{"from": string(StageAwaitingLLM), "error": err.Error()})
		return nil, err
	}

	parsed := ParseCompletion(text)
	observability.ObserveRecommendations(len(parsed.Recommendations))
	if len(parsed.Recommendations) == 0 {
		logger.Warn("completion contained no numbered recommendations")
	}
	s.publish(ctx, StageParsed, map[string]interface{}{"recommendations": len(parsed.Recommendations)})

	return parsed, nil
}

// complete is the single blocking call of the pipeline.
func (s *TroubleshootService) complete(ctx context.Context, prompt Prompt) (string, error) {
	llmCtx := ctx
	if s.config.LLMTimeout > 0 {
		var cancel context.CancelFunc
		llmCtx, cancel = context.WithTimeout(ctx, s.config.LLMTimeout)
		defer cancel()
	}

	s.publish(ctx, StageAwaitingLLM, nil)

	start := time.Now()
	text, err := s.llm.Complete(llmCtx, prompt)
	if err != nil && !errors.Is(err, ErrTimeout) && errors.Is(llmCtx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("%w after %s: %w", ErrTimeout, s.config.LLMTimeout, err)
	}
	observability.ObserveLLM(outcomeOf(err), time.Since(start))

	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	return text, nil
}

func (s *TroubleshootService) fail(ctx context.Context, format Format, from Stage, err error) {
	observability.FromContext(ctx).Error("troubleshooting failed",
		observability.String("stage", string(from)),
		observability.Error(err))
	s.publish(ctx, StageFailed, map[string]interface{}{"from": string(from), "error": err.Error()})
	observability.ObserveRequest(string(format), outcomeOf(err))
}

func (s *TroubleshootService) publish(ctx context.Context, stage Stage, data map[string]interface{}) {
	if s.events == nil {
		return
	}

	fields := map[string]interface{}{"stage": string(stage)}
	for k, v := range data {
		fields[k] = v
	}

	s.events.Publish(ctx, stageEvent, fields)
}

func appendMissing(missing []string, present bool, field string) []string {
	if present {
		return missing
	}
	return append(missing, field)
}

// outcomeOf maps an error to a metrics label.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUpstream), errors.Is(err, ErrMalformedCompletion):
		return "upstream_error"
	case errors.Is(err, ErrTransport):
		return "transport_error"
	default:
		return "internal_error"
	}
}
