package tool

import (
	"context"

	"github.com/voicelane/frontdesk/core"
	"github.com/voicelane/frontdesk/logging"
	"github.com/voicelane/frontdesk/state"
	"github.com/voicelane/frontdesk/store"
)

// Context provides a constrained, auditable surface for tool implementations.
// It carries the caller state, the write-behind store and the invoking agent's
// identity, and accumulates a transfer request instead of mutating the
// conversational loop directly; the loop applies the request after the tool
// returns.
type Context struct {
	ctx            context.Context
	sessionID      string
	agentName      string
	functionCallID string
	state          *state.CallerState
	store          *store.WriteBehind
	logger         logging.Logger

	transferTarget string
	transferReason string
}

// NewContext constructs a tool context for one function call.
func NewContext(ctx context.Context, st *state.CallerState, agentName, functionCallID string, logger logging.Logger) *Context {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	tc := &Context{
		ctx:            ctx,
		agentName:      agentName,
		functionCallID: functionCallID,
		state:          st,
		logger:         logger,
	}
	if st != nil {
		tc.sessionID = st.SessionID()
		tc.store = st.Store()
	}
	return tc
}

// Context returns the context associated with the tool invocation.
func (tc *Context) Context() context.Context { return tc.ctx }

// SessionID returns the session ID associated with the tool invocation.
func (tc *Context) SessionID() string { return tc.sessionID }

// AgentName returns the invoking agent's display name.
func (tc *Context) AgentName() string { return tc.agentName }

// FunctionCallID returns the correlation ID for this function call.
func (tc *Context) FunctionCallID() string { return tc.functionCallID }

// State returns the caller state for this session.
func (tc *Context) State() *state.CallerState { return tc.state }

// Store returns the write-behind store, nil when recording is disabled.
func (tc *Context) Store() *store.WriteBehind { return tc.store }

// Logger returns the structured logger.
func (tc *Context) Logger() logging.Logger { return tc.logger }

// RequestTransfer signals the conversational loop to hand control to the
// named agent once the current tool call completes.
func (tc *Context) RequestTransfer(target, reason string) {
	tc.transferTarget = target
	tc.transferReason = reason
	tc.logger.Info("tool.transfer.request", "from_agent", tc.agentName, "to_agent", target, "function_call_id", tc.functionCallID)
}

// TransferRequest returns the pending transfer target and reason, if any.
func (tc *Context) TransferRequest() (target, reason string, ok bool) {
	return tc.transferTarget, tc.transferReason, tc.transferTarget != ""
}

// RecordFunctionCall queues a function-call transcript line when recording is
// enabled. Non-blocking.
func (tc *Context) RecordFunctionCall(content string, metadata map[string]any) {
	if tc.state == nil || !tc.state.Recording() || tc.store == nil || tc.sessionID == "" {
		return
	}
	tc.store.EnqueueTranscript(core.TranscriptEntry{
		SessionID: tc.sessionID,
		AgentName: tc.agentName,
		Role:      core.RoleFunctionCall,
		Content:   content,
		Metadata:  metadata,
	})
}
