// Package ai orchestrates AI operations: prompt formatting, cache lookup,
// retry-wrapped generation, token accounting, and metrics recording.
package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/codementor-ai/codementor/internal/ai/cache"
	"github.com/codementor-ai/codementor/internal/ai/gateway"
	"github.com/codementor-ai/codementor/internal/ai/monitor"
	"github.com/codementor-ai/codementor/internal/ai/prompt"
	"github.com/codementor-ai/codementor/internal/ai/retry"
	"github.com/codementor-ai/codementor/internal/ai/tokens"
)

// ServiceName identifies the upstream provider in health reports.
const ServiceName = "OpenAI"

// TextGenerator is the model gateway the orchestrator drives.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt, systemMessage string, params gateway.GenerateParams) (string, error)
	HealthCheck(ctx context.Context) error
}

// Config mirrors the gateway's generation settings for reporting endpoints.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Service composes the prompt formatter, response cache, retry policy, model
// gateway, token accountant, and operation monitor for every public
// operation.
type Service struct {
	gen     TextGenerator
	cache   *cache.Cache
	counter *tokens.Accountant
	monitor *monitor.Monitor
	retry   retry.Config
	cfg     Config
}

// NewService wires the orchestrator. cache may be nil; the service then runs
// fully uncached.
func NewService(gen TextGenerator, respCache *cache.Cache, counter *tokens.Accountant, metrics *monitor.Metrics, cfg Config) *Service {
	return &Service{
		gen:     gen,
		cache:   respCache,
		counter: counter,
		monitor: monitor.New(metrics, counter),
		retry:   retry.DefaultConfig(),
		cfg:     cfg,
	}
}

// Metadata is the token/model accounting attached to every operation result.
type Metadata struct {
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
	TotalTokens  int    `json:"total_tokens"`
	Model        string `json:"model"`
}

// GenerateCodeRequest is a code-generation task.
type GenerateCodeRequest struct {
	Description            string
	Language               string
	Framework              string
	AdditionalRequirements string
	UserID                 string
}

// GenerateCodeResult is the externally visible code-generation payload.
type GenerateCodeResult struct {
	GeneratedCode string   `json:"generated_code"`
	Language      string   `json:"language,omitempty"`
	Framework     string   `json:"framework,omitempty"`
	Description   string   `json:"description"`
	Metadata      Metadata `json:"metadata"`
}

// GenerateCode produces code from a natural-language description.
// Generation results are never cached: they are treated as unique creative
// outputs, not idempotent lookups.
func (s *Service) GenerateCode(ctx context.Context, req GenerateCodeRequest) (*GenerateCodeResult, error) {
	op := s.monitor.Begin("generate_code", req.UserID, s.cfg.Model)
	defer op.End()

	p := prompt.CodeGeneration(req.Description, req.Language, req.Framework, req.AdditionalRequirements)

	response, err := s.generate(ctx, p, gateway.GenerateParams{})
	if err != nil {
		op.Fail(err)
		return nil, s.operationError("generate code", err)
	}

	inputTokens := s.counter.CountTokens(p.System + p.User)
	outputTokens := s.counter.CountTokens(response)
	op.SetTokens(inputTokens, outputTokens)

	return &GenerateCodeResult{
		GeneratedCode: response,
		Language:      req.Language,
		Framework:     req.Framework,
		Description:   req.Description,
		Metadata:      s.metadata(inputTokens, outputTokens),
	}, nil
}

// ExplainCodeRequest is a code-explanation task.
type ExplainCodeRequest struct {
	Code           string
	FocusAreas     string
	TargetAudience string
	UserID         string
}

// ExplainCodeResult is the externally visible explanation payload.
type ExplainCodeResult struct {
	Explanation    string   `json:"explanation"`
	OriginalCode   string   `json:"original_code"`
	FocusAreas     string   `json:"focus_areas,omitempty"`
	TargetAudience string   `json:"target_audience,omitempty"`
	Metadata       Metadata `json:"metadata"`
}

// ExplainCode explains the provided code. Results are cached for an hour,
// keyed by a digest of the code and the modifiers.
func (s *Service) ExplainCode(ctx context.Context, req ExplainCodeRequest) (*ExplainCodeResult, error) {
	op := s.monitor.Begin("explain_code", req.UserID, s.cfg.Model)
	defer op.End()

	key := cache.Key("code_explanation", req.Code, req.FocusAreas, req.TargetAudience)
	var cached ExplainCodeResult
	if s.cache.Get(ctx, key, &cached) {
		op.MarkCacheHit()
		return &cached, nil
	}

	p := prompt.CodeExplanation(req.Code, req.FocusAreas, req.TargetAudience)

	response, err := s.generate(ctx, p, gateway.GenerateParams{})
	if err != nil {
		op.Fail(err)
		return nil, s.operationError("explain code", err)
	}

	inputTokens := s.counter.CountTokens(p.System + p.User)
	outputTokens := s.counter.CountTokens(response)
	op.SetTokens(inputTokens, outputTokens)

	result := &ExplainCodeResult{
		Explanation:    response,
		OriginalCode:   req.Code,
		FocusAreas:     req.FocusAreas,
		TargetAudience: req.TargetAudience,
		Metadata:       s.metadata(inputTokens, outputTokens),
	}
	s.cache.Set(ctx, key, result, cache.ExplanationTTL)

	return result, nil
}

// ReviewCodeRequest is a code-review task.
type ReviewCodeRequest struct {
	Code             string
	ReviewType       string
	SpecificConcerns string
	UserID           string
}

// ReviewCodeResult is the externally visible review payload.
type ReviewCodeResult struct {
	Review           string   `json:"review"`
	OriginalCode     string   `json:"original_code"`
	ReviewType       string   `json:"review_type,omitempty"`
	SpecificConcerns string   `json:"specific_concerns,omitempty"`
	Metadata         Metadata `json:"metadata"`
}

// ReviewCode reviews the provided code. Results are cached for 30 minutes.
func (s *Service) ReviewCode(ctx context.Context, req ReviewCodeRequest) (*ReviewCodeResult, error) {
	op := s.monitor.Begin("review_code", req.UserID, s.cfg.Model)
	defer op.End()

	key := cache.Key("code_review", req.Code, req.ReviewType, req.SpecificConcerns)
	var cached ReviewCodeResult
	if s.cache.Get(ctx, key, &cached) {
		op.MarkCacheHit()
		return &cached, nil
	}

	p := prompt.CodeReview(req.Code, req.ReviewType, req.SpecificConcerns)

	response, err := s.generate(ctx, p, gateway.GenerateParams{})
	if err != nil {
		op.Fail(err)
		return nil, s.operationError("review code", err)
	}

	inputTokens := s.counter.CountTokens(p.System + p.User)
	outputTokens := s.counter.CountTokens(response)
	op.SetTokens(inputTokens, outputTokens)

	result := &ReviewCodeResult{
		Review:           response,
		OriginalCode:     req.Code,
		ReviewType:       req.ReviewType,
		SpecificConcerns: req.SpecificConcerns,
		Metadata:         s.metadata(inputTokens, outputTokens),
	}
	s.cache.Set(ctx, key, result, cache.ReviewTTL)

	return result, nil
}

// HealthStatus is the health-check report. Error is populated instead of
// failing the call.
type HealthStatus struct {
	Status      string   `json:"status"`
	Service     string   `json:"service"`
	Model       string   `json:"model"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
	Timeout     *float64 `json:"timeout,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// HealthCheck probes the provider with a minimal generation call. It never
// returns an error; failures become an unhealthy status.
func (s *Service) HealthCheck(ctx context.Context) HealthStatus {
	key := cache.Key("health_check", "health_check", "", "")
	var cached HealthStatus
	if s.cache.Get(ctx, key, &cached) {
		return cached
	}

	status := HealthStatus{
		Service: ServiceName,
		Model:   s.cfg.Model,
	}
	if err := s.gen.HealthCheck(ctx); err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
	} else {
		status.Status = "healthy"
		maxTokens := s.cfg.MaxTokens
		temperature := s.cfg.Temperature
		timeout := s.cfg.Timeout.Seconds()
		status.MaxTokens = &maxTokens
		status.Temperature = &temperature
		status.Timeout = &timeout
	}

	s.cache.Set(ctx, key, status, cache.HealthTTL)
	return status
}

// ContextInfo describes the current AI configuration.
type ContextInfo struct {
	Model               string   `json:"model"`
	MaxTokens           int      `json:"max_tokens"`
	Temperature         float32  `json:"temperature"`
	Timeout             float64  `json:"timeout"`
	AvailableOperations []string `json:"available_operations"`
}

// ContextInfo reports the service configuration and operation catalog.
func (s *Service) ContextInfo(ctx context.Context) ContextInfo {
	key := cache.Key("context_info", "context_info", "", "")
	var cached ContextInfo
	if s.cache.Get(ctx, key, &cached) {
		return cached
	}

	info := ContextInfo{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Timeout:     s.cfg.Timeout.Seconds(),
		AvailableOperations: []string{
			"generate_code",
			"explain_code",
			"review_code",
			"generate_questions",
			"generate_answer_explanation",
		},
	}

	s.cache.Set(ctx, key, info, cache.ContextTTL)
	return info
}

// Metrics returns the process-wide metrics snapshot.
func (s *Service) Metrics() monitor.Stats {
	return s.monitor.Metrics().Snapshot()
}

func (s *Service) metadata(inputTokens, outputTokens int) Metadata {
	return Metadata{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		Model:        s.cfg.Model,
	}
}

// generate runs one gateway call under the retry policy.
func (s *Service) generate(ctx context.Context, p prompt.Pair, params gateway.GenerateParams) (string, error) {
	var response string
	err := retry.Do(ctx, s.retry, func() error {
		var genErr error
		response, genErr = s.gen.GenerateText(ctx, p.User, p.System, params)
		return genErr
	})
	return response, err
}

// operationError translates a classified internal failure into the single
// caller-facing message for it, preserving the kind for status mapping.
func (s *Service) operationError(action string, err error) error {
	kind := gateway.KindOf(err)

	var message string
	switch kind {
	case gateway.KindRateLimit:
		message = "AI service rate limit exceeded. Please try again later."
	case gateway.KindTimeout:
		message = "AI service request timed out. Please try again."
	case gateway.KindAuthentication:
		message = "AI service authentication failed. Please check configuration."
	default:
		message = fmt.Sprintf("Failed to %s: %v", action, err)
	}

	return &gateway.Error{Kind: kind, Message: message, Err: err}
}
