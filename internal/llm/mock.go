package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient implements Client with a scripted sequence of responses for
// tests. Each Complete call consumes the next step and records the request
// it received.
type MockClient struct {
	mu       sync.Mutex
	steps    []mockStep
	index    int
	Requests []CompletionRequest
}

type mockStep struct {
	resp *CompletionResponse
	err  error
}

// NewMockClient returns an empty mock; queue steps with Respond/Fail.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Respond queues a successful response.
func (m *MockClient) Respond(resp CompletionResponse) *MockClient {
	m.steps = append(m.steps, mockStep{resp: &resp})
	return m
}

// RespondContent queues a plain-text assistant reply.
func (m *MockClient) RespondContent(content string) *MockClient {
	return m.Respond(CompletionResponse{Content: content})
}

// RespondToolCall queues a reply carrying a single tool invocation.
func (m *MockClient) RespondToolCall(name, arguments string) *MockClient {
	return m.Respond(CompletionResponse{
		ToolCalls: []ToolCall{{
			ID:       fmt.Sprintf("call_%d", len(m.steps)+1),
			Type:     "function",
			Function: FunctionCall{Name: name, Arguments: arguments},
		}},
	})
}

// Fail queues an error, simulating an unreachable endpoint.
func (m *MockClient) Fail(err error) *MockClient {
	m.steps = append(m.steps, mockStep{err: err})
	return m
}

// Complete returns the next scripted step.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.index >= len(m.steps) {
		return nil, fmt.Errorf("mock client exhausted after %d calls", len(m.steps))
	}
	step := m.steps[m.index]
	m.index++
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}

// Model identifies the mock in logs.
func (m *MockClient) Model() string {
	return "mock"
}
