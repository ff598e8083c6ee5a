package magisterium

import (
	"fmt"
	"strings"
)

// Role constants for the messages array of a chat completion request.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Accepted values for the non-Catholic content filter threshold.
const (
	ThresholdBlockAll = "BLOCK_ALL"
	ThresholdOff      = "OFF"
)

const (
	DefaultModel   = "magisterium-1"
	DefaultMessage = "What is the Magisterium?"
)

// Message is one entry of the messages array, and doubles as the shape of
// the assistant message returned on success.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SafetySetting configures one content-filter category. Response controls
// whether the API substitutes a fallback answer when content is blocked.
type SafetySetting struct {
	Threshold string `json:"threshold"`
	Response  bool   `json:"response"`
}

// SafetySettings carries the per-category filter configuration. The API
// currently defines a single category.
type SafetySettings struct {
	NonCatholic SafetySetting `json:"CATEGORY_NON_CATHOLIC"`
}

// ChatRequest is the JSON body of a chat completion request.
type ChatRequest struct {
	Model                  string          `json:"model"`
	Messages               []Message       `json:"messages"`
	Stream                 bool            `json:"stream"`
	ReturnRelatedQuestions bool            `json:"return_related_questions,omitempty"`
	SafetySettings         *SafetySettings `json:"safety_settings,omitempty"`
}

// CompletionOption customizes a ChatRequest before it is sent.
type CompletionOption func(*ChatRequest) *ChatRequest

// WithModel selects the model used for the completion.
func WithModel(model string) CompletionOption {
	return func(req *ChatRequest) *ChatRequest {
		req.Model = model
		return req
	}
}

// WithRelatedQuestions asks the API to return follow-up questions
// alongside the answer.
func WithRelatedQuestions() CompletionOption {
	return func(req *ChatRequest) *ChatRequest {
		req.ReturnRelatedQuestions = true
		return req
	}
}

// WithSafetySettings attaches content-filter configuration to the request.
func WithSafetySettings(settings *SafetySettings) CompletionOption {
	return func(req *ChatRequest) *ChatRequest {
		req.SafetySettings = settings
		return req
	}
}

// NewSafetySettings validates the threshold and builds the settings object.
// fallbackResponse selects a substitute answer over a blank one when the
// filter blocks the reply.
func NewSafetySettings(threshold string, fallbackResponse bool) (*SafetySettings, error) {
	if threshold != ThresholdBlockAll && threshold != ThresholdOff {
		return nil, &APIError{
			Kind:    InvalidConfiguration,
			Message: fmt.Sprintf("Invalid threshold %q. Must be one of: %s, %s", threshold, ThresholdBlockAll, ThresholdOff),
		}
	}
	return &SafetySettings{
		NonCatholic: SafetySetting{Threshold: threshold, Response: fallbackResponse},
	}, nil
}

// NewChatRequest builds the request body for a single user message.
// Identical inputs always produce an identical request.
func NewChatRequest(message string, opts ...CompletionOption) (ChatRequest, error) {
	if strings.TrimSpace(message) == "" {
		return ChatRequest{}, &APIError{
			Kind:    InvalidConfiguration,
			Message: "Message must not be empty.",
		}
	}
	req := &ChatRequest{
		Model:    DefaultModel,
		Messages: []Message{{Role: RoleUser, Content: message}},
		Stream:   false,
	}
	for _, opt := range opts {
		req = opt(req)
	}
	return *req, nil
}
