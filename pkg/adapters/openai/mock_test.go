package openai_test

import (
	"context"
	"sync"

	openai "github.com/sashabaranov/go-openai"
)

// mockChatClient replays canned responses and records requests.
type mockChatClient struct {
	mu        sync.Mutex
	responses []openai.ChatCompletionResponse
	errors    []error
	calls     []openai.ChatCompletionRequest
}

func (m *mockChatClient) AddResponse(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, openai.ChatCompletionResponse{
		Model: "mock",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
		},
	})
	m.errors = append(m.errors, nil)
}

func (m *mockChatClient) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, openai.ChatCompletionResponse{})
	m.errors = append(m.errors, err)
}

func (m *mockChatClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := len(m.calls)
	m.calls = append(m.calls, req)
	if i >= len(m.responses) {
		return openai.ChatCompletionResponse{}, nil
	}
	return m.responses[i], m.errors[i]
}

func (m *mockChatClient) Calls() []openai.ChatCompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]openai.ChatCompletionRequest(nil), m.calls...)
}
