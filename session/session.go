// Package session drives one live interaction from connect to disconnect.
// A Session owns the turn loop: it feeds the active agent's context to the
// model, dispatches requested tool calls, applies transfers through the
// handoff coordinator and returns the spoken reply. LoggingSession wraps a
// session to record transcripts and response-time metrics around each turn.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/voicelane/frontdesk/agent"
	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/handoff"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/metrics"
	"github.com/voicelane/frontdesk/model"
	"github.com/voicelane/frontdesk/state"
	"github.com/voicelane/frontdesk/tool"
)

// DefaultMaxToolSteps bounds how many model/tool round trips one user turn
// may take before the turn is abandoned.
const DefaultMaxToolSteps = 8

// Replier produces one spoken reply per user utterance. Session implements
// it; LoggingSession decorates it.
type Replier interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// Config wires a session's collaborators.
type Config struct {
	Model       model.Model
	Registry    *agent.Registry
	Coordinator *handoff.Coordinator
	State       *state.CallerState
	Collector   *metrics.Collector
	Logger      logging.Logger
	Clock       func() time.Time

	// InitialAgent names the agent that answers the call. Defaults to the
	// greeter.
	InitialAgent string

	// MaxToolSteps bounds tool round trips per turn. Zero means
	// DefaultMaxToolSteps.
	MaxToolSteps int
}

// Session is the live conversational loop for one interaction.
type Session struct {
	model        model.Model
	registry     *agent.Registry
	coordinator  *handoff.Coordinator
	state        *state.CallerState
	collector    *metrics.Collector
	logger       logging.Logger
	clock        func() time.Time
	maxToolSteps int

	active    *agent.Agent
	startedAt time.Time
	usage     model.Usage
	ended     bool
}

// New builds a session. Start must be called before the first Reply.
func New(cfg Config) (*Session, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("session: model is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("session: agent registry is required")
	}
	if cfg.Coordinator == nil {
		return nil, fmt.Errorf("session: handoff coordinator is required")
	}
	if cfg.State == nil {
		return nil, fmt.Errorf("session: caller state is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NoOpLogger{}
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.InitialAgent == "" {
		cfg.InitialAgent = agent.KindGreeter.String()
	}
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = DefaultMaxToolSteps
	}

	first, err := cfg.Registry.Get(cfg.InitialAgent)
	if err != nil {
		return nil, err
	}

	return &Session{
		model:        cfg.Model,
		registry:     cfg.Registry,
		coordinator:  cfg.Coordinator,
		state:        cfg.State,
		collector:    cfg.Collector,
		logger:       cfg.Logger,
		clock:        cfg.Clock,
		maxToolSteps: cfg.MaxToolSteps,
		active:       first,
	}, nil
}

// Start activates the initial agent and marks the interaction begun.
func (s *Session) Start(ctx context.Context) error {
	s.startedAt = s.clock()
	s.coordinator.Enter(s.active)
	s.logger.Info("session.started",
		"session_id", s.state.SessionID(),
		"agent", s.active.Name(),
		"model", s.model.Info().Name)
	return ctx.Err()
}

// ID returns the durable session identifier.
func (s *Session) ID() string { return s.state.SessionID() }

// ActiveAgent returns the agent currently holding conversational authority.
func (s *Session) ActiveAgent() *agent.Agent { return s.active }

// Usage returns accumulated token usage across all turns so far.
func (s *Session) Usage() model.Usage { return s.usage }

// Reply runs one user turn: the utterance is appended to the active agent's
// context, the model is asked for a completion, requested tool calls are
// dispatched, transfers are applied, and the final spoken text is returned.
// An unknown transfer target is fatal to the turn.
func (s *Session) Reply(ctx context.Context, userText string) (string, error) {
	if s.ended {
		return "", fmt.Errorf("session %s already ended", s.ID())
	}

	s.active.Context().AddMessage(core.RoleUser, userText)

	var spoken string
	var exchange []model.Message

	for step := 0; ; step++ {
		if step >= s.maxToolSteps {
			return "", fmt.Errorf("turn exceeded %d tool steps", s.maxToolSteps)
		}

		resp, err := s.model.Complete(ctx, s.buildRequest(exchange))
		if err != nil {
			s.collectError("model_error")
			return "", fmt.Errorf("completion failed: %w", err)
		}
		s.addUsage(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			text := joinSpoken(spoken, resp.Text)
			s.active.Context().AddMessage(core.RoleAssistant, text)
			return text, nil
		}

		// A transition message produced alongside tool calls is kept and
		// prepended to whatever the next agent says.
		spoken = joinSpoken(spoken, resp.Text)

		exchange = append(exchange, model.Message{
			Role:      "assistant",
			Content:   resp.Text,
			ToolCalls: resp.ToolCalls,
		})

		transferred, transition, results, err := s.dispatch(ctx, resp.ToolCalls)
		if err != nil {
			return "", err
		}
		if transferred {
			// the incoming agent starts from its rebuilt entry context
			spoken = joinSpoken(spoken, transition)
			exchange = nil
			continue
		}
		exchange = append(exchange, results...)
	}
}

// dispatch runs each requested tool call against the active agent's toolset
// and applies at most one transfer request afterwards.
func (s *Session) dispatch(ctx context.Context, calls []model.ToolCall) (bool, string, []model.Message, error) {
	var results []model.Message
	var transferTarget, transferReason string

	for _, call := range calls {
		output := s.callTool(ctx, call, &transferTarget, &transferReason)
		results = append(results, model.Message{
			Role:       "tool",
			Content:    output,
			ToolCallID: call.ID,
		})
	}

	if transferTarget == "" {
		return false, "", results, nil
	}

	next, message, err := s.coordinator.Transfer(transferTarget, transferReason)
	if err != nil {
		s.collectError("unknown_agent")
		return false, "", nil, err
	}
	s.active = next
	if message != "" {
		s.active.Context().AddMessage(core.RoleAssistant, message)
	}
	return true, message, nil, nil
}

func (s *Session) callTool(ctx context.Context, call model.ToolCall, target, reason *string) string {
	t := s.active.FindTool(call.Name)
	if t == nil {
		s.collectError("unknown_tool")
		s.logger.Warn("session.tool.unknown", "tool", call.Name, "agent", s.active.Name())
		return fmt.Sprintf("no tool named %q is available", call.Name)
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			s.collectError("bad_arguments")
			return fmt.Sprintf("invalid arguments for %s: %v", call.Name, err)
		}
	}

	tc := tool.NewContext(ctx, s.state, s.active.Name(), call.ID, s.logger)
	started := s.clock()
	result, err := t.Call(tc, args)
	s.collectLatency("tool_latency", s.clock().Sub(started))

	s.active.Context().Append(core.Item{
		ID:        call.ID,
		Role:      core.RoleFunctionCall,
		Content:   fmt.Sprintf("%s(%s)", call.Name, call.Arguments),
		Timestamp: started,
	})

	if err != nil {
		s.collectError("tool_error")
		s.logger.Error("session.tool.failed", "tool", call.Name, "error", err)
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}

	if tgt, rsn, ok := tc.TransferRequest(); ok {
		*target, *reason = tgt, rsn
	}
	return fmt.Sprintf("%v", result)
}

// buildRequest renders the active agent's context plus the in-flight tool
// exchange into a model request.
func (s *Session) buildRequest(exchange []model.Message) model.Request {
	items := s.active.Context().Items
	messages := make([]model.Message, 0, len(items)+len(exchange))
	for _, item := range items {
		switch item.Role {
		case core.RoleSystem:
			messages = append(messages, model.Message{Role: "system", Content: item.Content})
		case core.RoleUser:
			messages = append(messages, model.Message{Role: "user", Content: item.Content})
		case core.RoleAssistant:
			messages = append(messages, model.Message{Role: "assistant", Content: item.Content})
		case core.RoleFunctionCall:
			messages = append(messages, model.Message{Role: "assistant", Content: "[called] " + item.Content})
		}
	}
	messages = append(messages, exchange...)

	tools := s.active.Tools()
	defs := make([]model.ToolDefinition, len(tools))
	for i, t := range tools {
		defs[i] = model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return model.Request{Messages: messages, Tools: defs}
}

// End closes the interaction: duration is computed and written through the
// session lifecycle path, a usage summary is queued, and the session stops
// accepting turns. The caller remains responsible for draining the store.
func (s *Session) End(ctx context.Context) error {
	if s.ended {
		return nil
	}
	s.ended = true

	duration := int(s.clock().Sub(s.startedAt).Seconds())
	if s.collector != nil {
		s.collector.Collect("session", "session_duration", float64(duration), "seconds", nil)
	}
	if wb := s.state.Store(); wb != nil {
		if s.state.Recording() {
			wb.EnqueueTranscript(core.TranscriptEntry{
				SessionID: s.ID(),
				AgentName: s.active.Name(),
				Role:      core.RoleSystem,
				Content:   fmt.Sprintf("Session ended after %d seconds", duration),
				Metadata: map[string]any{
					"prompt_tokens":     s.usage.PromptTokens,
					"completion_tokens": s.usage.CompletionTokens,
					"total_tokens":      s.usage.TotalTokens,
				},
			})
		}
		if err := wb.EndSession(ctx, s.ID(), duration); err != nil {
			return fmt.Errorf("end session: %w", err)
		}
	}
	s.logger.Info("session.ended", "session_id", s.ID(), "duration_seconds", duration)
	return nil
}

func (s *Session) addUsage(u *model.Usage) {
	if u == nil {
		return
	}
	s.usage.PromptTokens += u.PromptTokens
	s.usage.CompletionTokens += u.CompletionTokens
	s.usage.TotalTokens += u.TotalTokens
}

func (s *Session) collectError(kind string) {
	if s.collector != nil {
		s.collector.Collect("error", "error_rate", 1, "count", map[string]any{"kind": kind})
	}
	if ring := s.state.Ring(); ring != nil {
		ring.Increment("errors")
	}
}

func (s *Session) collectLatency(name string, d time.Duration) {
	if s.collector != nil {
		s.collector.Collect("latency", name, d.Seconds(), "seconds", nil)
	}
}

func joinSpoken(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
