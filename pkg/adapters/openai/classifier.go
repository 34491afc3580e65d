package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/domain"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// SystemPrompt instructs the model to answer with a JSON classification.
const SystemPrompt = "Classify intent as support, sales, or triage and return JSON with keys intent and confidence."

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = errors.New("completion has no choices")

// ChatClient is the subset of *openai.Client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Classifier implements ports.IntentClassifier with a chat completion model.
type Classifier struct {
	client ChatClient
	model  string
	logger *slog.Logger
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(c *Classifier) {
		if model != "" {
			c.model = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger
	}
}

// New creates a classifier over an existing client.
func New(client ChatClient, opts ...Option) *Classifier {
	c := &Classifier{
		client: client,
		model:  DefaultModel,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromAPIKey creates a classifier talking to the OpenAI API, or to any
// compatible endpoint when baseURL is set.
func NewFromAPIKey(apiKey, baseURL string, opts ...Option) *Classifier {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return New(openai.NewClientWithConfig(cfg), opts...)
}

// Classify implements ports.IntentClassifier.
func (c *Classifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Classification{}, ErrEmptyCompletion
	}

	c.logger.Debug("Intent classified",
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens,
	)
	return parse(resp.Choices[0].Message.Content)
}

// parse decodes the model answer, tolerating a markdown code fence around it.
func parse(content string) (domain.Classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out domain.Classification
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return domain.Classification{}, fmt.Errorf("invalid classifier output %q: %w", content, err)
	}
	return out, nil
}
