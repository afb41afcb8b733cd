package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/markl/internal/observability"
)

// EnhancementConfig holds orchestrator policy.
type EnhancementConfig struct {
	RequestTimeout time.Duration `env:"ENHANCE_REQUEST_TIMEOUT" envDefault:"90s"`
	MaxRetries     int           `env:"ENHANCE_MAX_RETRIES"     envDefault:"1"`
	RetryBackoff   time.Duration `env:"ENHANCE_RETRY_BACKOFF"   envDefault:"1s"`
	MaxTokens      int           `env:"ENHANCE_MAX_TOKENS"      envDefault:"4000"`
}

// EnhanceRequest is the input of one enhancement call.
type EnhanceRequest struct {
	Options      EnhancementOptions `json:"options"      validate:"required"`
	OriginalText string             `json:"originalText" validate:"required"`
	ParsedData   json.RawMessage    `json:"parsedData,omitempty"`
	APIKey       string             `json:"apiKey"       validate:"required"`
}

// RefineRequest re-runs an enhancement with the previous suggestions and new instructions.
type RefineRequest struct {
	EnhanceRequest

	Previous     *AIEnhancementResult `json:"previous"     validate:"required"`
	Instructions string               `json:"instructions" validate:"required"`
}

// EnhancementService orchestrates enhancement requests to providers.
type EnhancementService struct {
	router    Router
	estimator *CostEstimator
	parser    *SuggestionParser
	recorder  UsageRecorder
	config    EnhancementConfig
	now       func() time.Time
}

// NewEnhancementService creates a new enhancement service (DI constructor).
func NewEnhancementService(
	router Router,
	estimator *CostEstimator,
	parser *SuggestionParser,
	recorder UsageRecorder,
	config *EnhancementConfig,
) *EnhancementService {
	cfg := EnhancementConfig{}
	if config != nil {
		cfg = *config
	}

	return &EnhancementService{
		router:    router,
		estimator: estimator,
		parser:    parser,
		recorder:  recorder,
		config:    cfg,
		now:       time.Now,
	}
}

// Enhance runs one enhancement. It never returns an error: failures are reported in-band
// through the envelope's Success and Error fields.
func (s *EnhancementService) Enhance(ctx context.Context, req *EnhanceRequest) *AIEnhancementResult {
	if req == nil {
		return s.reject(&ValidationError{Field: "request", Message: "request cannot be nil"})
	}

	messages := BuildEnhancementMessages(req.Options, req.OriginalText, req.ParsedData)
	return s.run(ctx, req, messages)
}

// Refine re-invokes the pipeline with the previous suggestions and sanitized instructions.
func (s *EnhancementService) Refine(ctx context.Context, req *RefineRequest) *AIEnhancementResult {
	if req == nil {
		return s.reject(&ValidationError{Field: "request", Message: "request cannot be nil"})
	}
	if req.Previous == nil {
		return s.reject(&ValidationError{Field: "previous", Message: "previous result is required"})
	}
	if SanitizeInstructions(req.Instructions) == "" {
		return s.reject(&ValidationError{Field: "instructions", Message: "refinement instructions are required"})
	}

	messages, err := BuildRefinementMessages(
		req.Options,
		req.OriginalText,
		req.ParsedData,
		req.Previous.Suggestions,
		req.Instructions,
	)
	if err != nil {
		return s.reject(err)
	}

	return s.run(ctx, &req.EnhanceRequest, messages)
}

func (s *EnhancementService) run(ctx context.Context, req *EnhanceRequest, messages []Message) *AIEnhancementResult {
	start := s.now()
	opts := req.Options
	if opts.EnhancementLevel == "" {
		opts.EnhancementLevel = LevelModerate
	}

	ctx = observability.WithOperation(ctx, string(OperationEnhancement))
	ctx = observability.WithProvider(ctx, string(opts.Provider))

	result := &AIEnhancementResult{
		ID:          uuid.New().String(),
		Success:     false,
		Suggestions: []AISuggestion{},
		Confidence:  0,
		Provider:    opts.Provider,
		Model:       opts.Model,
		Metadata:    ResultMetadata{},
		Error:       nil,
	}

	if err := validateEnhanceRequest(req); err != nil {
		return s.finish(ctx, result, opts, start, err)
	}

	route, err := s.router.Route(ctx, &RouteRequest{Provider: opts.Provider, Model: opts.Model})
	if err != nil {
		return s.finish(ctx, result, opts, start, err)
	}
	result.Model = route.Model
	ctx = observability.WithModel(ctx, route.Model)
	logger := observability.FromContext(ctx)

	// Pre-flight estimate is informational and sizes the output budget.
	maxTokens := s.config.MaxTokens
	estimate, ok := s.estimator.EstimateEnhancementCost(ctx, EstimateRequest{
		Provider:         opts.Provider,
		Model:            route.Model,
		OriginalText:     req.OriginalText,
		JobDescription:   opts.JobDescription,
		UserInstructions: opts.UserInstructions,
		Level:            opts.EnhancementLevel,
	})
	if ok {
		maxTokens = estimate.TokenEstimate.OutputTokens
		logger.Info("pre-flight cost estimate",
			observability.Float64("estimated_cost", estimate.TotalCost),
			observability.Int("estimated_tokens", estimate.TokenEstimate.TotalTokens),
			observability.Bool("exceeds_context", estimate.WarningsExceededContext))
	}

	reply, err := s.invoke(ctx, route, req.APIKey, messages, maxTokens)
	if err != nil {
		return s.finish(ctx, result, opts, start, err)
	}

	result.Suggestions = s.parser.Parse(ctx, reply, req.OriginalText, req.ParsedData)
	result.Confidence = MeanConfidence(result.Suggestions)
	result.Success = true

	inputTokens := EstimateTokens(PromptText(messages))
	outputTokens := EstimateTokens(reply)
	result.Metadata.TokensUsed = inputTokens + outputTokens
	if cost, priced := s.estimator.CostForTokens(ctx, opts.Provider, route.Model, inputTokens, outputTokens); priced {
		result.Metadata.Cost = cost
	}

	logger.Info("enhancement succeeded",
		observability.Int("suggestions", len(result.Suggestions)),
		observability.Float64("confidence", result.Confidence),
		observability.Int("tokens", result.Metadata.TokensUsed))

	return s.finish(ctx, result, opts, start, nil)
}

// invoke calls the adapter under the request timeout, retrying retryable upstream failures.
func (s *EnhancementService) invoke(
	ctx context.Context,
	route *Route,
	apiKey string,
	messages []Message,
	maxTokens int,
) (string, error) {
	if s.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RequestTimeout)
		defer cancel()
	}

	logger := observability.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= s.config.MaxRetries; attempt++ {
		reply, err := route.Adapter.Invoke(ctx, apiKey, route.Model, messages, maxTokens)
		if err == nil {
			return reply, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("provider call interrupted: %w", ctxErr)
		}
		lastErr = err

		var httpErr *ProviderHTTPError
		if !errors.As(err, &httpErr) || !httpErr.Retryable() || attempt == s.config.MaxRetries {
			break
		}

		backoff := s.config.RetryBackoff * time.Duration(1<<uint(attempt))
		logger.Warn("provider call failed, retrying",
			observability.Int("attempt", attempt+1),
			observability.Duration("backoff", backoff),
			observability.Error(err))

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("enhancement aborted while backing off: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return "", lastErr
}

// finish completes the envelope and records the usage event. The event is recorded on a
// context detached from cancellation so canceled calls are still tracked as failures.
func (s *EnhancementService) finish(
	ctx context.Context,
	result *AIEnhancementResult,
	opts EnhancementOptions,
	start time.Time,
	err error,
) *AIEnhancementResult {
	result.Metadata.ProcessingTimeMs = s.now().Sub(start).Milliseconds()

	if err != nil {
		observability.FromContext(ctx).Error("enhancement failed", observability.Error(err))
		result.Success = false
		result.Suggestions = []AISuggestion{}
		result.Confidence = 0
		result.Error = &ResultError{Type: ClassifyError(err), Message: err.Error()}
	}

	event := UsageEvent{
		Provider:         result.Provider,
		Model:            result.Model,
		Operation:        OperationEnhancement,
		TokensUsed:       result.Metadata.TokensUsed,
		EstimatedCost:    result.Metadata.Cost,
		ProcessingTimeMs: result.Metadata.ProcessingTimeMs,
		Success:          result.Success,
		EnhancementLevel: opts.EnhancementLevel,
		SuggestionsCount: len(result.Suggestions),
		Confidence:       result.Confidence,
	}
	if result.Error != nil {
		event.ErrorType = result.Error.Type
	}
	s.recorder.Record(context.WithoutCancel(ctx), event)

	return result
}

func (s *EnhancementService) reject(err error) *AIEnhancementResult {
	return &AIEnhancementResult{
		ID:          uuid.New().String(),
		Success:     false,
		Suggestions: []AISuggestion{},
		Error:       &ResultError{Type: ClassifyError(err), Message: err.Error()},
	}
}

func validateEnhanceRequest(req *EnhanceRequest) error {
	switch {
	case req.Options.Provider == "":
		return &ValidationError{Field: "options.provider", Message: "provider is required"}
	case req.APIKey == "":
		return &ValidationError{Field: "apiKey", Message: "API key is required"}
	case req.OriginalText == "":
		return &ValidationError{Field: "originalText", Message: "original text is required"}
	}

	switch req.Options.EnhancementLevel {
	case "", LevelLight, LevelModerate, LevelComprehensive:
		return nil
	default:
		return &ValidationError{
			Field:   "options.enhancementLevel",
			Message: fmt.Sprintf("unknown enhancement level %q", req.Options.EnhancementLevel),
		}
	}
}
