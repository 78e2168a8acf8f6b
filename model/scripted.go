package model

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedModel replays a fixed sequence of responses. Useful for tests and
// offline demo runs where no provider credentials exist.
type ScriptedModel struct {
	mu        sync.Mutex
	responses []Response
	requests  []Request
}

// NewScriptedModel constructs a model that answers with the given responses
// in order.
func NewScriptedModel(responses ...Response) *ScriptedModel {
	return &ScriptedModel{responses: responses}
}

// Complete pops the next scripted response. Running past the script fails.
func (m *ScriptedModel) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("scripted model exhausted after %d requests", len(m.requests))
	}
	next := m.responses[0]
	m.responses = m.responses[1:]
	return &next, nil
}

// Requests returns every request seen so far, in order.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Info implements Model.
func (m *ScriptedModel) Info() Info {
	return Info{Name: "scripted", Provider: "test", SupportsTools: true}
}
