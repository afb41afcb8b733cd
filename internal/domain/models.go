package domain

import "time"

// ProviderID identifies an LLM vendor.
type ProviderID string

// Known providers.
const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"
)

// Role is the author of a chat message.
type Role string

// Message roles accepted by the adapters.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a chat message. Sequence order is conversation order.
type Message struct {
	Role    Role   `json:"role"    validate:"required"`
	Content string `json:"content"`
}

// EnhancementLevel controls how aggressive the rewrite is.
type EnhancementLevel string

// Enhancement levels.
const (
	LevelLight         EnhancementLevel = "light"
	LevelModerate      EnhancementLevel = "moderate"
	LevelComprehensive EnhancementLevel = "comprehensive"
)

// EnhancementOptions selects provider, model and the shape of an enhancement.
type EnhancementOptions struct {
	Provider         ProviderID       `json:"provider"                   validate:"required"`
	Model            string           `json:"model"`
	EnhancementLevel EnhancementLevel `json:"enhancementLevel"           validate:"omitempty,oneof=light moderate comprehensive"`
	JobDescription   string           `json:"jobDescription,omitempty"`
	UserInstructions string           `json:"userInstructions,omitempty"`
	FocusAreas       []string         `json:"focusAreas,omitempty"`
}

// TokenEstimate is an approximate token count. TotalTokens = InputTokens + OutputTokens.
type TokenEstimate struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// CostEstimate is the USD cost of a request. TotalCost = InputCost + OutputCost.
type CostEstimate struct {
	InputCost               float64       `json:"inputCost"`
	OutputCost              float64       `json:"outputCost"`
	TotalCost               float64       `json:"totalCost"`
	Model                   string        `json:"model"`
	Provider                ProviderID    `json:"provider"`
	TokenEstimate           TokenEstimate `json:"tokenEstimate"`
	WarningsExceededContext bool          `json:"warningsExceededContext"`
	Recommended             bool          `json:"recommended,omitempty"`
}

// SuggestionType classifies a suggestion.
type SuggestionType string

// Suggestion types.
const (
	SuggestionImprovement SuggestionType = "improvement"
	SuggestionCorrection  SuggestionType = "correction"
	SuggestionEnhancement SuggestionType = "enhancement"
	SuggestionAddition    SuggestionType = "addition"
)

// SuggestionStatus is the review state of a suggestion.
type SuggestionStatus string

// Suggestion statuses. Accepted and Rejected are terminal.
const (
	StatusPending  SuggestionStatus = "pending"
	StatusAccepted SuggestionStatus = "accepted"
	StatusRejected SuggestionStatus = "rejected"
)

// AISuggestion is one discrete proposed change to a resume field.
type AISuggestion struct {
	ID             string           `json:"id"`
	Type           SuggestionType   `json:"type"`
	Field          string           `json:"field"`
	OriginalValue  string           `json:"originalValue"`
	SuggestedValue string           `json:"suggestedValue"`
	Confidence     float64          `json:"confidence"`
	Reasoning      string           `json:"reasoning"`
	Status         SuggestionStatus `json:"status"`
}

// ResultMetadata describes the cost of producing a result.
type ResultMetadata struct {
	TokensUsed       int     `json:"tokensUsed"`
	Cost             float64 `json:"cost"`
	ProcessingTimeMs int64   `json:"processingTimeMs"`
}

// ResultError is the in-band failure description of a result envelope.
type ResultError struct {
	Type    ErrorType `json:"type"`
	Message string    `json:"message"`
}

// AIEnhancementResult is the envelope returned by every enhancement call.
type AIEnhancementResult struct {
	ID          string         `json:"id"`
	Success     bool           `json:"success"`
	Suggestions []AISuggestion `json:"suggestions"`
	Confidence  float64        `json:"confidence"`
	Provider    ProviderID     `json:"provider"`
	Model       string         `json:"model"`
	Metadata    ResultMetadata `json:"metadata"`
	Error       *ResultError   `json:"error,omitempty"`
}

// Operation is the kind of tracked usage event.
type Operation string

// Tracked operations.
const (
	OperationEnhancement    Operation = "enhancement"
	OperationTestConnection Operation = "test_connection"
	OperationCostEstimation Operation = "cost_estimation"
)

// UsageEvent is one append-only usage record.
type UsageEvent struct {
	ID               string           `json:"id"`
	Timestamp        time.Time        `json:"timestamp"`
	Provider         ProviderID       `json:"provider"`
	Model            string           `json:"model"`
	Operation        Operation        `json:"operation"`
	TokensUsed       int              `json:"tokensUsed"`
	EstimatedCost    float64          `json:"estimatedCost"`
	ProcessingTimeMs int64            `json:"processingTime"`
	Success          bool             `json:"success"`
	ErrorType        ErrorType        `json:"errorType,omitempty"`
	EnhancementLevel EnhancementLevel `json:"enhancementLevel,omitempty"`
	SuggestionsCount int              `json:"suggestionsCount,omitempty"`
	AcceptedCount    int              `json:"acceptedCount,omitempty"`
	Confidence       float64          `json:"confidence,omitempty"`
}

// FieldChange is an accepted suggestion ready to merge into a resume snapshot.
type FieldChange struct {
	SuggestionID string `json:"suggestionId"`
	Field        string `json:"field"`
	From         string `json:"from"`
	To           string `json:"to"`
}
