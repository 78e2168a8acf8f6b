// Package model defines the provider-agnostic boundary to language models.
// Providers (OpenAI, Anthropic) implement the Model interface so the
// conversational loop stays decoupled from vendor SDKs. Tool calls are
// normalized into one shape regardless of vendor.
package model

import "context"

// ToolCall is a function invocation requested by the model. Arguments is the
// raw JSON object string exactly as the provider returned it.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolDefinition exposes a callable function to the model. Parameters is a
// minimal JSON Schema object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Message is one conversational turn in provider-neutral form. Role is one of
// system, user, assistant or tool. ToolCalls is set on assistant turns that
// requested function invocations; ToolCallID ties a tool turn back to the
// call it answers.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Request is the normalized model input for one completion.
type Request struct {
	Messages []Message        `json:"messages"`
	Tools    []ToolDefinition `json:"tools,omitempty"`
}

// Usage captures token accounting for a response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is one complete model turn: spoken text, requested tool calls,
// or both.
type Response struct {
	Text         string     `json:"text"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason"`
	Usage        *Usage     `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"`
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the minimal interface the conversational loop needs to drive
// generation.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}
